package cmd

import (
	"bufio"
	"fmt"
	"os"

	"github.com/corey/kwtree"
)

// loadKeywords reads a keyword file: one keyword per line, blank lines
// skipped. Lines are taken verbatim — leading/trailing spaces are part of
// the keyword.
func loadKeywords(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var keywords []string
	scanner := bufio.NewScanner(f)
	// A keyword line can exceed bufio's default 64KiB token limit.
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		keywords = append(keywords, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return keywords, nil
}

// buildTree compiles a finalized keyword tree from a keyword file.
func buildTree(path string, caseInsensitive bool) (*kwtree.Tree, error) {
	keywords, err := loadKeywords(path)
	if err != nil {
		return nil, err
	}
	if len(keywords) == 0 {
		return nil, fmt.Errorf("no keywords in %s", path)
	}
	tree := kwtree.New(kwtree.Opts{CaseInsensitive: caseInsensitive})
	for _, kw := range keywords {
		if err := tree.Add(kw); err != nil {
			return nil, err
		}
	}
	if err := tree.Finalize(); err != nil {
		return nil, err
	}
	return tree, nil
}
