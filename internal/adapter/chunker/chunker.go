// Package chunker splits normalized documents into retrievable units using
// one of four strategies: fixed token windows, sentence accumulation,
// paragraph accumulation, or semantic topic-boundary grouping.
package chunker

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"ragcore/internal/adapter/analyzer"
	"ragcore/internal/domain"
)

// chunkNamespace makes chunk IDs deterministic: the same (documentID, index)
// pair always yields the same UUID, so re-ingestion of an unchanged chunk
// overwrites the same vector-store key.
var chunkNamespace = uuid.MustParse("7b1d4a6e-2f3c-45d8-9a0b-6c5e8f1d2a39")

// ChunkID derives the deterministic chunk identifier for (documentID, index).
func ChunkID(documentID string, index int) string {
	return uuid.NewSHA1(chunkNamespace, []byte(fmt.Sprintf("%s:%d", documentID, index))).String()
}

// Options are the chunk sizing knobs, all in approximate tokens.
type Options struct {
	MaxSize int // window/accumulation limit
	MinSize int // tail below this merges into the previous chunk (fixed strategy)
	Overlap int // tokens repeated across fixed-window boundaries
}

// Validate rejects impossible configurations before any chunking begins.
func (o Options) Validate() error {
	if o.MaxSize <= 0 {
		return domain.NewValidationError("maxChunkSize", "must be positive")
	}
	if o.MinSize < 0 {
		return domain.NewValidationError("minChunkSize", "must not be negative")
	}
	if o.Overlap < 0 {
		return domain.NewValidationError("overlapSize", "must not be negative")
	}
	if o.Overlap >= o.MaxSize {
		return domain.NewValidationError("overlapSize", fmt.Sprintf("overlap %d must be smaller than max chunk size %d", o.Overlap, o.MaxSize))
	}
	return nil
}

// Splitter implements port.Chunker for one strategy and option set.
type Splitter struct {
	strategy domain.Strategy
	opts     Options
}

// New creates a Splitter, validating the strategy and options up front.
func New(strategy domain.Strategy, opts Options) (*Splitter, error) {
	if !domain.ValidStrategy(strategy) {
		return nil, domain.NewValidationError("chunkStrategy", fmt.Sprintf("unknown strategy %q", strategy))
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Splitter{strategy: strategy, opts: opts}, nil
}

// span is a half-open byte range into the normalized text.
type span struct {
	start int
	end   int
}

// Chunk splits text into chunks with contiguous 0-based indices. Empty or
// whitespace-only text yields zero chunks and no error.
func (s *Splitter) Chunk(doc domain.Document, text string) ([]domain.Chunk, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	var spans []span
	switch s.strategy {
	case domain.StrategyFixed:
		spans = fixedSpans(text, s.opts)
	case domain.StrategySentence:
		spans = sentenceSpans(text, s.opts.MaxSize)
	case domain.StrategyParagraph:
		spans = paragraphSpans(text, s.opts.MaxSize)
	case domain.StrategySemantic:
		spans = semanticSpans(text, s.opts.MaxSize)
	}

	chunks := make([]domain.Chunk, 0, len(spans))
	for i, sp := range spans {
		chunkText := text[sp.start:sp.end]
		chunks = append(chunks, domain.Chunk{
			ID:          ChunkID(doc.ID, i),
			DocumentID:  doc.ID,
			Index:       i,
			Text:        chunkText,
			TokenCount:  analyzer.CountTokens(chunkText),
			StartOffset: sp.start,
			EndOffset:   sp.end,
			Metadata:    copyMetadata(doc.Metadata),
		})
	}
	return chunks, nil
}

func copyMetadata(m map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// wordBudget converts a token budget to the word count the analyzer spans
// represent. CountTokens applies a 1.3 words-to-tokens factor, so the inverse
// keeps the two units consistent.
func wordBudget(maxTokens int) int {
	budget := int(float64(maxTokens) / 1.3)
	if budget < 1 {
		budget = 1
	}
	return budget
}
