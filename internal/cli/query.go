package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"ragcore/internal/usecase"
)

var (
	queryText       string
	queryTopK       int
	queryMinQuality float64
	queryLanguage   string
	queryCourse     string
	queryRerank     bool
	queryJSON       bool
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Search the index with hybrid retrieval",
	Long: `Run a hybrid vector + keyword search with rank fusion.

Examples:
  ragcore query -q "photosynthesis"
  ragcore query -q "orbits" --top-k 5 --min-quality 70 --rerank
  ragcore query -q "orbits" --json`,
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringVarP(&queryText, "query", "q", "", "query text (required)")
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of results (default from config)")
	queryCmd.Flags().Float64Var(&queryMinQuality, "min-quality", 0, "minimum quality score filter")
	queryCmd.Flags().StringVar(&queryLanguage, "language", "", "language filter")
	queryCmd.Flags().StringVar(&queryCourse, "course", "", "course id filter")
	queryCmd.Flags().BoolVar(&queryRerank, "rerank", false, "rerank candidates with the configured reranker")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "print results as JSON")
	queryCmd.MarkFlagRequired("query")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	app, err := BuildApp(cfg, rootDir)
	if err != nil {
		return err
	}
	defer app.Close()

	topK := queryTopK
	if topK <= 0 {
		topK = cfg.Retrieve.TopK
	}
	minQuality := queryMinQuality
	if minQuality <= 0 {
		minQuality = cfg.Retrieve.MinQuality
	}

	resp, err := app.Engine.Retrieve(cmd.Context(), queryText, usecase.RetrieveOptions{
		TopK:         topK,
		MinQuality:   minQuality,
		Language:     queryLanguage,
		CourseID:     queryCourse,
		EnableRerank: queryRerank || cfg.Rerank.Enabled,
	})
	if err != nil {
		return err
	}

	if queryJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	if resp.Partial {
		fmt.Println("Warning: one search path was unavailable; results are partial.")
	}
	if len(resp.Results) == 0 {
		fmt.Println("No results.")
		return nil
	}

	for i, r := range resp.Results {
		fmt.Printf("%d. [%.4f] %s (doc=%s chunk=%d source=%s)\n",
			i+1, r.Score, snippet(r.Text, 120), r.Payload.DocumentID, r.Payload.ChunkIndex, r.Source)
	}
	return nil
}

func snippet(text string, max int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}
