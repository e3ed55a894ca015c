package cmd

import (
	"fmt"

	"github.com/corey/kwtree"
	"github.com/corey/kwtree/internal/adapters/snapstore"
	"github.com/corey/kwtree/internal/ports"
	"github.com/spf13/cobra"
)

var (
	snapshotDB           string
	snapSaveKeywordsFile string
	snapSaveIgnoreCase   bool
	snapScanFirstOnly    bool
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage persisted automaton snapshots",
	Long: "Compile a keyword set once and keep the automaton in an embedded database,\n" +
		"so later scans skip compilation entirely.",
}

var snapshotSaveCmd = &cobra.Command{
	Use:   "save <name>",
	Short: "Compile a keyword file and store the automaton",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnapshotSave,
}

var snapshotScanCmd = &cobra.Command{
	Use:   "scan <name> [file...]",
	Short: "Scan files (or stdin) with a stored automaton",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSnapshotScan,
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored snapshot names",
	Args:  cobra.NoArgs,
	RunE:  runSnapshotList,
}

var snapshotRmCmd = &cobra.Command{
	Use:   "rm <name>",
	Short: "Remove a stored snapshot",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnapshotRm,
}

func init() {
	snapshotCmd.PersistentFlags().StringVar(&snapshotDB, "db", "kwtree.db", "snapshot database path")
	snapshotSaveCmd.Flags().StringVarP(&snapSaveKeywordsFile, "keywords", "k", "", "file with one keyword per line (required)")
	snapshotSaveCmd.Flags().BoolVarP(&snapSaveIgnoreCase, "ignore-case", "i", false, "fold case when matching")
	snapshotSaveCmd.MarkFlagRequired("keywords")
	snapshotScanCmd.Flags().BoolVar(&snapScanFirstOnly, "first", false, "stop after the first match per input")

	snapshotCmd.AddCommand(snapshotSaveCmd)
	snapshotCmd.AddCommand(snapshotScanCmd)
	snapshotCmd.AddCommand(snapshotListCmd)
	snapshotCmd.AddCommand(snapshotRmCmd)
}

// openStore opens the snapshot database behind the ports seam.
func openStore() (ports.SnapshotStore, error) {
	return snapstore.NewStore(snapshotDB)
}

func runSnapshotSave(cmd *cobra.Command, args []string) error {
	tree, err := buildTree(snapSaveKeywordsFile, snapSaveIgnoreCase)
	if err != nil {
		return err
	}
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Save(args[0], tree.Export()); err != nil {
		return err
	}
	fmt.Printf("saved %q (%d nodes)\n", args[0], tree.Len())
	return nil
}

func runSnapshotScan(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	snap, err := store.Load(args[0])
	if err != nil {
		return err
	}
	if snap == nil {
		return fmt.Errorf("no snapshot %q in %s", args[0], snapshotDB)
	}
	tree, err := kwtree.FromSnapshot(snap)
	if err != nil {
		return err
	}
	return scanInputs(tree, args[1:], snapScanFirstOnly)
}

func runSnapshotList(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	names, err := store.List()
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}

func runSnapshotRm(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	return store.Delete(args[0])
}
