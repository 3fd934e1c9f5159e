// Package usecase wires the adapters into the core operations: ingestion,
// batch embedding, index management, hybrid retrieval, and health checks.
package usecase

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"ragcore/internal/domain"
	"ragcore/internal/port"
	"ragcore/internal/retry"
)

// BatchEmbedder turns chunks into vectors through a port.Embedder, batching
// requests with bounded concurrency. Failed batches are isolated: their chunk
// IDs are reported, sibling batches continue.
type BatchEmbedder struct {
	embedder    port.Embedder
	policy      retry.Policy
	breaker     *retry.Breaker
	batchSize   int
	concurrency int
}

// EmbedOutcome maps chunk IDs to vectors and lists the chunks whose batch
// exhausted its retry budget or was short-circuited by the breaker.
type EmbedOutcome struct {
	Vectors map[string][]float32
	Failed  []string
}

// NewBatchEmbedder creates a BatchEmbedder. Zero batchSize or concurrency
// fall back to 64 and 5.
func NewBatchEmbedder(embedder port.Embedder, policy retry.Policy, breaker *retry.Breaker, batchSize, concurrency int) *BatchEmbedder {
	if batchSize <= 0 {
		batchSize = 64
	}
	if concurrency <= 0 {
		concurrency = 5
	}
	if policy.Retryable == nil {
		policy.Retryable = domain.Retryable
	}
	return &BatchEmbedder{
		embedder:    embedder,
		policy:      policy,
		breaker:     breaker,
		batchSize:   batchSize,
		concurrency: concurrency,
	}
}

// EmbedChunks embeds all chunks and reports per-chunk failures. The returned
// error is non-nil only when the context was cancelled; batches already
// scheduled are allowed to finish, unscheduled ones are reported failed.
func (e *BatchEmbedder) EmbedChunks(ctx context.Context, chunks []domain.Chunk) (EmbedOutcome, error) {
	outcome := EmbedOutcome{Vectors: make(map[string][]float32, len(chunks))}
	if len(chunks) == 0 {
		return outcome, nil
	}

	var mu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(e.concurrency)

	for start := 0; start < len(chunks); start += e.batchSize {
		end := start + e.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		// Stop scheduling once cancellation is observed.
		if ctx.Err() != nil {
			mu.Lock()
			for _, c := range batch {
				outcome.Failed = append(outcome.Failed, c.ID)
			}
			mu.Unlock()
			continue
		}

		g.Go(func() error {
			vectors, err := e.embedBatch(ctx, batch)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				for _, c := range batch {
					outcome.Failed = append(outcome.Failed, c.ID)
				}
				return nil
			}
			for i, c := range batch {
				outcome.Vectors[c.ID] = vectors[i]
			}
			return nil
		})
	}

	g.Wait()
	return outcome, ctx.Err()
}

// embedBatch runs one batch through the breaker and retry policy.
func (e *BatchEmbedder) embedBatch(ctx context.Context, batch []domain.Chunk) ([][]float32, error) {
	texts := make([]string, len(batch))
	for i, c := range batch {
		texts[i] = c.Text
	}

	var vectors [][]float32
	err := retry.Do(ctx, e.policy, func(ctx context.Context) error {
		if e.breaker != nil {
			if err := e.breaker.Allow(); err != nil {
				return err
			}
		}
		result, err := e.embedder.EmbedBatch(ctx, texts)
		if err == nil && len(result) != len(texts) {
			err = fmt.Errorf("embedding count mismatch: sent %d, got %d", len(texts), len(result))
		}
		if err == nil {
			for _, v := range result {
				if len(v) != e.embedder.Dimension() {
					err = domain.NewValidationError("vector", fmt.Sprintf("dimension mismatch: expected %d, got %d", e.embedder.Dimension(), len(v)))
					break
				}
			}
		}
		if e.breaker != nil {
			e.breaker.Record(err)
		}
		if err != nil {
			return err
		}
		vectors = result
		return nil
	})
	if err != nil {
		return nil, err
	}
	return vectors, nil
}

// Dimension exposes the underlying embedder dimension.
func (e *BatchEmbedder) Dimension() int { return e.embedder.Dimension() }

// ModelName exposes the underlying embedding model name.
func (e *BatchEmbedder) ModelName() string { return e.embedder.ModelName() }
