package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <document-id>",
	Short: "Remove a document from both indices",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := BuildApp(cfg, rootDir)
		if err != nil {
			return err
		}
		defer app.Close()

		removed, err := app.Manager.Delete(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d chunks for document %s\n", removed, args[0])
		return nil
	},
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile <document-id>",
	Short: "Check a document's chunks are in lockstep across both indices",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := BuildApp(cfg, rootDir)
		if err != nil {
			return err
		}
		defer app.Close()

		report, err := app.Manager.Reconcile(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Document %s: %d vector chunks, %d keyword chunks\n",
			report.DocumentID, report.VectorChunks, report.KeywordChunks)
		if len(report.Orphans) == 0 {
			fmt.Println("Indices are in lockstep.")
			return nil
		}
		fmt.Printf("Orphaned chunks: %v\n", report.Orphans)
		if report.Repaired {
			fmt.Println("Document removed from both indices; re-ingest to rebuild.")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(reconcileCmd)
}
