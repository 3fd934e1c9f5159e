// Package cli is the thin cobra front over the pipeline: ingest, query,
// delete, reconcile, health.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ragcore/config"
)

var (
	cfgFile string
	cfg     *config.Config
	rootDir string
)

var rootCmd = &cobra.Command{
	Use:   "ragcore",
	Short: "Content quality and hybrid retrieval pipeline",
	Long: `ragcore normalizes documents, scores their quality, chunks and embeds
them, and serves hybrid vector + keyword retrieval over the result.

Example usage:
  ragcore ingest ./docs              # Ingest a directory of documents
  ragcore query -q "photosynthesis"  # Hybrid search over the index
  ragcore delete my-doc-id           # Remove a document from both indices
  ragcore health                     # Probe all external services`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./ragcore.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "root directory (default is current directory)")
}
