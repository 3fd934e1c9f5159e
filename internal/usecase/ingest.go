package usecase

import (
	"context"

	"golang.org/x/sync/errgroup"

	"ragcore/internal/adapter/chunker"
	"ragcore/internal/adapter/normalizer"
	"ragcore/internal/adapter/quality"
	"ragcore/internal/domain"
)

// IngestOptions shape one ingestion call.
type IngestOptions struct {
	Strategy domain.Strategy

	// MinQuality overrides the configured gate when positive.
	MinQuality float64

	// Force indexes a document even below the quality gate; the report is
	// flagged partial instead of rejected.
	Force bool
}

// Ingestor runs the full pipeline per document: normalize, assess, gate,
// chunk, embed, index.
type Ingestor struct {
	normalizer  *normalizer.Normalizer
	assessor    *quality.Assessor
	chunkOpts   chunker.Options
	embedder    *BatchEmbedder
	index       *IndexManager
	minQuality  float64
	concurrency int
}

// NewIngestor creates an Ingestor. minQuality is the default gate;
// concurrency bounds multi-document fan-out.
func NewIngestor(n *normalizer.Normalizer, a *quality.Assessor, chunkOpts chunker.Options, embedder *BatchEmbedder, index *IndexManager, minQuality float64, concurrency int) *Ingestor {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Ingestor{
		normalizer:  n,
		assessor:    a,
		chunkOpts:   chunkOpts,
		embedder:    embedder,
		index:       index,
		minQuality:  minQuality,
		concurrency: concurrency,
	}
}

// Ingest processes one document and always produces a report. The error is
// non-nil only for structural problems (bad chunking config, cancellation);
// quality rejection and partial chunk failures live in the report.
func (u *Ingestor) Ingest(ctx context.Context, doc domain.Document, opts IngestOptions) (domain.IngestionReport, error) {
	report := domain.IngestionReport{DocumentID: doc.ID, Status: domain.StatusRejected}

	if doc.ID == "" {
		report.Reason = "missing document id"
		return report, nil
	}
	if opts.Strategy == "" {
		opts.Strategy = domain.StrategyParagraph
	}

	// Fail on bad config before any external call.
	split, err := chunker.New(opts.Strategy, u.chunkOpts)
	if err != nil {
		return report, err
	}

	normalized := u.normalizer.Normalize(doc.SourceText, doc.MIMEHint)
	language := normalized.Language
	if doc.Language != "" {
		// Declared language wins over detection.
		language = doc.Language
	}
	report.Language = language
	if normalized.Text == "" {
		report.Reason = "no usable content after normalization"
		return report, nil
	}

	assessment := u.assessor.Assess(normalized.Text)
	report.Quality = &assessment

	gate := u.minQuality
	if opts.MinQuality > 0 {
		gate = opts.MinQuality
	}
	belowGate := assessment.OverallScore < gate
	if belowGate && !opts.Force {
		report.Reason = "quality below minimum"
		return report, nil
	}

	chunks, err := split.Chunk(doc, normalized.Text)
	if err != nil {
		return report, err
	}
	report.ChunkCount = len(chunks)
	if len(chunks) == 0 {
		report.Reason = "no chunks produced"
		return report, nil
	}

	outcome, err := u.embedder.EmbedChunks(ctx, chunks)
	if err != nil {
		report.Status = domain.StatusPartial
		report.FailedChunkIDs = outcome.Failed
		return report, err
	}
	report.FailedChunkIDs = append(report.FailedChunkIDs, outcome.Failed...)

	entries := make([]domain.IndexedEntry, 0, len(outcome.Vectors))
	for _, c := range chunks {
		vector, ok := outcome.Vectors[c.ID]
		if !ok {
			continue
		}
		entries = append(entries, domain.IndexedEntry{
			ChunkID: c.ID,
			Vector:  vector,
			Payload: domain.Payload{
				DocumentID:   doc.ID,
				ChunkIndex:   c.Index,
				Text:         c.Text,
				QualityScore: assessment.OverallScore,
				Language:     language,
				CourseID:     doc.CourseID,
				Title:        doc.Title,
				Metadata:     c.Metadata,
			},
		})
	}

	indexFailed, err := u.index.Index(ctx, entries)
	report.FailedChunkIDs = append(report.FailedChunkIDs, indexFailed...)
	report.IndexedCount = len(entries) - len(indexFailed)

	switch {
	case len(report.FailedChunkIDs) > 0:
		report.Status = domain.StatusPartial
	case belowGate:
		// Forced past the gate: indexed, but flagged.
		report.Status = domain.StatusPartial
		report.Reason = "forced below quality minimum"
	default:
		report.Status = domain.StatusIngested
	}
	return report, err
}

// IngestAll processes documents independently with bounded concurrency. One
// document's failure never blocks the others; reports keep input order.
func (u *Ingestor) IngestAll(ctx context.Context, docs []domain.Document, opts IngestOptions) []domain.IngestionReport {
	reports := make([]domain.IngestionReport, len(docs))

	g := new(errgroup.Group)
	g.SetLimit(u.concurrency)
	for i, doc := range docs {
		g.Go(func() error {
			report, err := u.Ingest(ctx, doc, opts)
			if err != nil && report.Reason == "" {
				report.Reason = err.Error()
			}
			reports[i] = report
			return nil
		})
	}
	g.Wait()
	return reports
}
