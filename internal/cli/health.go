package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Probe every external service",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := BuildApp(cfg, rootDir)
		if err != nil {
			return err
		}
		defer app.Close()

		report := app.Health.Check(cmd.Context())
		fmt.Printf("Embedding service: %s\n", report.EmbeddingService)
		fmt.Printf("Vector store:      %s\n", report.VectorStore)
		fmt.Printf("Keyword index:     %s\n", report.KeywordIndex)
		fmt.Printf("Rerank service:    %s\n", report.RerankService)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
