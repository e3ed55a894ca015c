// kwtree is a multi-pattern keyword search tool built on an Aho-Corasick
// keyword tree. Compile a keyword set once, then scan files, watch
// directories, or persist the compiled automaton for later runs.
package main

import (
	"os"

	"github.com/corey/kwtree/cmd/kwtree/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
