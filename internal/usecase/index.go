package usecase

import (
	"context"
	"fmt"
	"sort"

	"ragcore/internal/domain"
	"ragcore/internal/port"
	"ragcore/internal/retry"
)

// Invalidator is satisfied by the query cache; index writes call it so stale
// retrieval responses never outlive a mutation.
type Invalidator interface {
	Invalidate()
}

// IndexManager owns the vector collection and the keyword index as one
// logical unit: every write and delete goes to both sides.
type IndexManager struct {
	vector    port.VectorStore
	keyword   port.KeywordIndex
	policy    retry.Policy
	dimension int
	distance  string
	batchSize int
	cache     Invalidator
}

// NewIndexManager creates an IndexManager for a collection of the given
// dimension and distance metric. cache may be nil.
func NewIndexManager(vector port.VectorStore, keyword port.KeywordIndex, policy retry.Policy, dimension int, distance string, batchSize int, cache Invalidator) *IndexManager {
	if batchSize <= 0 {
		batchSize = 128
	}
	if policy.Retryable == nil {
		policy.Retryable = domain.Retryable
	}
	return &IndexManager{
		vector:    vector,
		keyword:   keyword,
		policy:    policy,
		dimension: dimension,
		distance:  distance,
		batchSize: batchSize,
		cache:     cache,
	}
}

// EnsureReady creates the vector collection if needed and checks the keyword
// index answers.
func (m *IndexManager) EnsureReady(ctx context.Context) error {
	err := retry.Do(ctx, m.policy, func(ctx context.Context) error {
		return m.vector.EnsureCollection(ctx, m.dimension, m.distance)
	})
	if err != nil {
		return fmt.Errorf("ensure vector collection: %w", err)
	}
	if err := m.keyword.Ping(ctx); err != nil {
		return fmt.Errorf("keyword index unavailable: %w", err)
	}
	return nil
}

// Index writes entries to both sides in batches and returns the chunk IDs of
// batches that could not be fully written. A batch counts as failed unless
// both the vector and the keyword write succeeded.
func (m *IndexManager) Index(ctx context.Context, entries []domain.IndexedEntry) ([]string, error) {
	for _, e := range entries {
		if len(e.Vector) != m.dimension {
			return nil, domain.NewValidationError("vector", fmt.Sprintf("dimension mismatch: expected %d, got %d", m.dimension, len(e.Vector)))
		}
	}

	var failed []string
	wrote := false
	for start := 0; start < len(entries); start += m.batchSize {
		end := start + m.batchSize
		if end > len(entries) {
			end = len(entries)
		}
		batch := entries[start:end]

		if ctx.Err() != nil {
			for _, e := range batch {
				failed = append(failed, e.ChunkID)
			}
			continue
		}

		if err := m.writeBatch(ctx, batch); err != nil {
			for _, e := range batch {
				failed = append(failed, e.ChunkID)
			}
			continue
		}
		wrote = true
	}

	if wrote && m.cache != nil {
		m.cache.Invalidate()
	}
	return failed, ctx.Err()
}

// writeBatch upserts one batch into the vector store, then mirrors it into
// the keyword index. Each side gets its own retry budget so a lagging
// keyword write does not redo the vector write.
func (m *IndexManager) writeBatch(ctx context.Context, batch []domain.IndexedEntry) error {
	err := retry.Do(ctx, m.policy, func(ctx context.Context) error {
		return m.vector.Upsert(ctx, batch)
	})
	if err != nil {
		return fmt.Errorf("vector upsert: %w", err)
	}
	err = retry.Do(ctx, m.policy, func(ctx context.Context) error {
		return m.keyword.Index(ctx, batch)
	})
	if err != nil {
		return fmt.Errorf("keyword index: %w", err)
	}
	return nil
}

// Delete removes every chunk of a document from both sides and returns how
// many chunks were removed. Each side is retried independently until it
// succeeds or the budget runs out, so one side never ends up lagging silently.
func (m *IndexManager) Delete(ctx context.Context, documentID string) (int, error) {
	if documentID == "" {
		return 0, domain.NewValidationError("documentID", "must not be empty")
	}

	var vectorRemoved int
	vectorErr := retry.Do(ctx, m.policy, func(ctx context.Context) error {
		n, err := m.vector.DeleteByDocument(ctx, documentID)
		if err == nil {
			vectorRemoved = n
		}
		return err
	})

	var keywordRemoved int
	keywordErr := retry.Do(ctx, m.policy, func(ctx context.Context) error {
		n, err := m.keyword.DeleteByDocument(ctx, documentID)
		if err == nil {
			keywordRemoved = n
		}
		return err
	})

	if m.cache != nil && (vectorErr == nil || keywordErr == nil) {
		m.cache.Invalidate()
	}

	if vectorErr != nil {
		return keywordRemoved, fmt.Errorf("vector delete: %w", vectorErr)
	}
	if keywordErr != nil {
		return vectorRemoved, fmt.Errorf("keyword delete: %w", keywordErr)
	}

	removed := vectorRemoved
	if keywordRemoved > removed {
		removed = keywordRemoved
	}
	return removed, nil
}

// ReconcileReport describes the lockstep state of one document across both
// indices.
type ReconcileReport struct {
	DocumentID    string   `json:"document_id"`
	VectorChunks  int      `json:"vector_chunks"`
	KeywordChunks int      `json:"keyword_chunks"`
	Orphans       []string `json:"orphans,omitempty"`
	Repaired      bool     `json:"repaired"`
}

// Reconcile compares the chunk sets on both sides. A mismatched pair is
// corrupt: the document is removed from both indices so the next ingestion
// rebuilds it cleanly.
func (m *IndexManager) Reconcile(ctx context.Context, documentID string) (ReconcileReport, error) {
	report := ReconcileReport{DocumentID: documentID}

	vectorIDs, err := m.vector.DocumentChunkIDs(ctx, documentID)
	if err != nil {
		return report, fmt.Errorf("list vector chunks: %w", err)
	}
	keywordIDs, err := m.keyword.DocumentChunkIDs(ctx, documentID)
	if err != nil {
		return report, fmt.Errorf("list keyword chunks: %w", err)
	}

	report.VectorChunks = len(vectorIDs)
	report.KeywordChunks = len(keywordIDs)
	report.Orphans = symmetricDifference(vectorIDs, keywordIDs)
	if len(report.Orphans) == 0 {
		return report, nil
	}

	if _, err := m.Delete(ctx, documentID); err != nil {
		return report, fmt.Errorf("repair document %s: %w", documentID, err)
	}
	report.Repaired = true
	return report, nil
}

// symmetricDifference returns the IDs present on exactly one side, sorted.
func symmetricDifference(a, b []string) []string {
	inA := make(map[string]bool, len(a))
	for _, id := range a {
		inA[id] = true
	}
	inB := make(map[string]bool, len(b))
	for _, id := range b {
		inB[id] = true
	}

	var diff []string
	for id := range inA {
		if !inB[id] {
			diff = append(diff, id)
		}
	}
	for id := range inB {
		if !inA[id] {
			diff = append(diff, id)
		}
	}
	sort.Strings(diff)
	return diff
}

// Dimension returns the collection's vector dimension.
func (m *IndexManager) Dimension() int { return m.dimension }
