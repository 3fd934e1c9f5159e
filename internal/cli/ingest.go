package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"ragcore/internal/adapter/fs"
	"ragcore/internal/domain"
	"ragcore/internal/usecase"
)

var (
	ingestStrategy   string
	ingestForce      bool
	ingestMinQuality float64
	ingestCourse     string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path]",
	Short: "Ingest documents into the index",
	Long: `Ingest a file or a directory of documents. Each document is normalized,
quality-scored, gated, chunked, embedded, and written to both indices.

Examples:
  ragcore ingest ./docs                    # Ingest a directory
  ragcore ingest notes.md --force          # Index even below the quality gate
  ragcore ingest ./docs --strategy semantic`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestStrategy, "strategy", "", "chunking strategy: fixed, sentence, paragraph, semantic")
	ingestCmd.Flags().BoolVar(&ingestForce, "force", false, "index documents below the quality gate")
	ingestCmd.Flags().Float64Var(&ingestMinQuality, "min-quality", 0, "override the configured quality gate")
	ingestCmd.Flags().StringVar(&ingestCourse, "course", "", "course id attached to every document")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	path, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("path does not exist: %w", err)
	}

	var files []fs.File
	if info.IsDir() {
		walker := fs.NewWalker(cfg.Ingest.Includes, cfg.Ingest.Excludes)
		files, err = walker.Walk(path)
		if err != nil {
			return fmt.Errorf("failed to walk directory: %w", err)
		}
	} else {
		files = []fs.File{{Path: path, RelPath: filepath.Base(path), Size: info.Size(), ModTime: info.ModTime()}}
	}
	if len(files) == 0 {
		fmt.Println("No matching files found.")
		return nil
	}

	app, err := BuildApp(cfg, rootDir)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.Manager.EnsureReady(cmd.Context()); err != nil {
		return err
	}

	strategy := domain.Strategy(ingestStrategy)
	if ingestStrategy == "" {
		strategy = domain.Strategy(cfg.Chunking.Strategy)
	}
	opts := usecase.IngestOptions{
		Strategy:   strategy,
		MinQuality: ingestMinQuality,
		Force:      ingestForce,
	}

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("[cyan]Ingesting[reset]"),
		progressbar.OptionOnCompletion(func() { fmt.Println() }),
	)

	var reports []domain.IngestionReport
	for _, f := range files {
		content, err := fs.ReadFile(f.Path)
		if err != nil {
			reports = append(reports, domain.IngestionReport{
				DocumentID: f.RelPath,
				Status:     domain.StatusRejected,
				Reason:     fmt.Sprintf("read failed: %v", err),
			})
			bar.Add(1)
			continue
		}

		doc := domain.Document{
			ID:         f.RelPath,
			SourceText: content,
			MIMEHint:   fs.MIMEHint(f.Path),
			Title:      filepath.Base(f.Path),
			CourseID:   ingestCourse,
		}
		report, err := app.Ingestor.Ingest(cmd.Context(), doc, opts)
		if err != nil {
			return fmt.Errorf("ingest %s: %w", f.RelPath, err)
		}
		reports = append(reports, report)
		bar.Add(1)
	}

	printIngestSummary(reports)
	return nil
}

func printIngestSummary(reports []domain.IngestionReport) {
	var ingested, rejected, partial, chunks int
	for _, r := range reports {
		switch r.Status {
		case domain.StatusIngested:
			ingested++
		case domain.StatusRejected:
			rejected++
		case domain.StatusPartial:
			partial++
		}
		chunks += r.IndexedCount
	}

	fmt.Printf("\nIngestion complete:\n")
	fmt.Printf("  Ingested:       %d\n", ingested)
	fmt.Printf("  Rejected:       %d\n", rejected)
	fmt.Printf("  Partial:        %d\n", partial)
	fmt.Printf("  Chunks indexed: %d\n", chunks)

	for _, r := range reports {
		if r.Status == domain.StatusIngested {
			continue
		}
		line := fmt.Sprintf("  - %s: %s", r.DocumentID, r.Status)
		if r.Reason != "" {
			line += " (" + r.Reason + ")"
		}
		if r.Quality != nil {
			line += fmt.Sprintf(" score=%.1f", r.Quality.OverallScore)
		}
		fmt.Println(line)
	}
}
