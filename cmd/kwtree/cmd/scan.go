package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/corey/kwtree"
	"github.com/spf13/cobra"
)

var (
	scanKeywordsFile string
	scanIgnoreCase   bool
	scanFirstOnly    bool
)

var scanCmd = &cobra.Command{
	Use:   "scan [file...]",
	Short: "Scan files (or stdin) for keyword matches",
	Long: "Compile the keyword file into an automaton and scan each input in a single\n" +
		"pass, reporting every occurrence of every keyword, overlaps included.\n" +
		"With no file arguments, text is read from stdin.",
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVarP(&scanKeywordsFile, "keywords", "k", "", "file with one keyword per line (required)")
	scanCmd.Flags().BoolVarP(&scanIgnoreCase, "ignore-case", "i", false, "fold case when matching")
	scanCmd.Flags().BoolVar(&scanFirstOnly, "first", false, "stop after the first match per input")
	scanCmd.MarkFlagRequired("keywords")
}

func runScan(cmd *cobra.Command, args []string) error {
	tree, err := buildTree(scanKeywordsFile, scanIgnoreCase)
	if err != nil {
		return err
	}
	return scanInputs(tree, args, scanFirstOnly)
}

// scanInputs scans each named file (or stdin when none are given), printing
// matches as they are found.
func scanInputs(tree *kwtree.Tree, args []string, firstOnly bool) error {
	if len(args) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		return scanText(tree, "-", string(data), firstOnly)
	}
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if err := scanText(tree, path, string(data), firstOnly); err != nil {
			return err
		}
	}
	return nil
}

func scanText(tree *kwtree.Tree, name, text string, firstOnly bool) error {
	if firstOnly {
		m, err := tree.SearchOne(text)
		if err != nil {
			return err
		}
		if m != nil {
			fmt.Print(formatMatches(name, []kwtree.Match{*m}))
		}
		return nil
	}
	matches, err := tree.SearchAll(text)
	if err != nil {
		return err
	}
	fmt.Print(formatMatches(name, matches))
	return nil
}
