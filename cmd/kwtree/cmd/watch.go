package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/corey/kwtree/internal/adapters/fsnotify"
	"github.com/spf13/cobra"
)

var (
	watchKeywordsFile string
	watchIgnoreCase   bool
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Watch a directory and scan changed files for keywords",
	Long: "Compile the keyword file once, then monitor the directory recursively and\n" +
		"rescan every file that changes, printing matches as they appear. Runs until\n" +
		"interrupted.",
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchKeywordsFile, "keywords", "k", "", "file with one keyword per line (required)")
	watchCmd.Flags().BoolVarP(&watchIgnoreCase, "ignore-case", "i", false, "fold case when matching")
	watchCmd.MarkFlagRequired("keywords")
}

func runWatch(cmd *cobra.Command, args []string) error {
	tree, err := buildTree(watchKeywordsFile, watchIgnoreCase)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Stop()

	// The finalized tree is immutable, so scanning from the watcher
	// goroutine needs no synchronization.
	err = w.Watch(args[0], func(path string) {
		data, err := os.ReadFile(path)
		if err != nil {
			return // removed or unreadable; nothing to scan
		}
		matches, err := tree.SearchAll(string(data))
		if err != nil {
			return
		}
		fmt.Print(formatMatches(path, matches))
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "watching %s — ctrl-c to stop\n", args[0])
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	return nil
}
