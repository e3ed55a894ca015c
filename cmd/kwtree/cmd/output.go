package cmd

import (
	"fmt"
	"strings"

	"github.com/corey/kwtree"
)

// formatMatches renders matches as grep-style lines: name:offset:keyword.
// Offsets are rune offsets into the scanned text.
func formatMatches(name string, matches []kwtree.Match) string {
	if len(matches) == 0 {
		return ""
	}
	var b strings.Builder
	for _, m := range matches {
		fmt.Fprintf(&b, "%s:%d:%s\n", name, m.Start, m.Keyword)
	}
	return b.String()
}
