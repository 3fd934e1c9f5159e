package vectorstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"ragcore/internal/domain"
)

// MemoryStore is an in-memory VectorStore used by tests and mock wiring.
type MemoryStore struct {
	mu        sync.RWMutex
	dimension int
	metric    string
	entries   map[string]domain.IndexedEntry
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]domain.IndexedEntry)}
}

// EnsureCollection fixes the dimension and metric on first call and validates
// them afterwards.
func (s *MemoryStore) EnsureCollection(_ context.Context, dimension int, distance string) error {
	if dimension <= 0 {
		return domain.NewValidationError("vectorDimension", "must be positive")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dimension == 0 {
		s.dimension = dimension
		s.metric = distance
		return nil
	}
	if s.dimension != dimension {
		return domain.NewValidationError("vectorDimension", fmt.Sprintf("collection has dimension %d, requested %d", s.dimension, dimension))
	}
	return nil
}

// Upsert writes entries keyed by chunk ID, rejecting mismatched dimensions.
func (s *MemoryStore) Upsert(_ context.Context, entries []domain.IndexedEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dimension == 0 {
		return fmt.Errorf("collection not initialized")
	}
	for _, e := range entries {
		if len(e.Vector) != s.dimension {
			return domain.NewValidationError("vector", fmt.Sprintf("dimension mismatch: expected %d, got %d", s.dimension, len(e.Vector)))
		}
	}
	for _, e := range entries {
		s.entries[e.ChunkID] = e
	}
	return nil
}

// Search returns the topK most similar entries passing the filter.
func (s *MemoryStore) Search(_ context.Context, vector []float32, filter domain.Filter, topK int) ([]domain.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make([]domain.IndexedEntry, 0, len(s.entries))
	for _, e := range s.entries {
		all = append(all, e)
	}
	return rankLocal(s.metric, vector, all, filter, topK), nil
}

// DeleteByDocument removes all chunks of a document.
func (s *MemoryStore) DeleteByDocument(_ context.Context, documentID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, e := range s.entries {
		if e.Payload.DocumentID == documentID {
			delete(s.entries, id)
			removed++
		}
	}
	return removed, nil
}

// DocumentChunkIDs lists chunk IDs stored for a document, sorted for
// determinism.
func (s *MemoryStore) DocumentChunkIDs(_ context.Context, documentID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []string
	for id, e := range s.entries {
		if e.Payload.DocumentID == documentID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Ping always succeeds for the in-memory store.
func (s *MemoryStore) Ping(context.Context) error { return nil }

// Count returns the number of stored vectors.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
