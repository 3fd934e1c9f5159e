package usecase

import (
	"context"
	"errors"
	"sync"

	"ragcore/internal/domain"
	"ragcore/internal/port"
)

// stubEmbedder returns deterministic vectors and can be told to fail its
// first N calls, or to fail whenever a batch contains a given text.
type stubEmbedder struct {
	mu        sync.Mutex
	dim       int
	calls     int
	failFirst int
	failText  string
}

func (s *stubEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.calls <= s.failFirst {
		return nil, errors.New("embedding service down")
	}
	for _, t := range texts {
		if s.failText != "" && t == s.failText {
			return nil, errors.New("embedding service down")
		}
	}
	vectors := make([][]float32, len(texts))
	for i, t := range texts {
		v := make([]float32, s.dim)
		v[0] = float32(len(t))
		vectors[i] = v
	}
	return vectors, nil
}

func (s *stubEmbedder) Dimension() int    { return s.dim }
func (s *stubEmbedder) ModelName() string { return "stub" }

func (s *stubEmbedder) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// stubVector is a scriptable port.VectorStore.
type stubVector struct {
	mu          sync.Mutex
	searchOut   []domain.SearchResult
	searchErr   error
	searchCalls int
	upsertFails int
	entries     map[string][]string // documentID -> chunk IDs
	deleteFails int
	deleted     []string
}

func newStubVector() *stubVector {
	return &stubVector{entries: make(map[string][]string)}
}

func (s *stubVector) EnsureCollection(context.Context, int, string) error { return nil }

func (s *stubVector) Upsert(_ context.Context, entries []domain.IndexedEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.upsertFails > 0 {
		s.upsertFails--
		return errors.New("vector store down")
	}
	for _, e := range entries {
		s.entries[e.Payload.DocumentID] = append(s.entries[e.Payload.DocumentID], e.ChunkID)
	}
	return nil
}

func (s *stubVector) Search(context.Context, []float32, domain.Filter, int) ([]domain.SearchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchCalls++
	return s.searchOut, s.searchErr
}

func (s *stubVector) DeleteByDocument(_ context.Context, documentID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteFails > 0 {
		s.deleteFails--
		return 0, errors.New("vector store down")
	}
	n := len(s.entries[documentID])
	delete(s.entries, documentID)
	s.deleted = append(s.deleted, documentID)
	return n, nil
}

func (s *stubVector) DocumentChunkIDs(_ context.Context, documentID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.entries[documentID]...), nil
}

func (s *stubVector) Ping(context.Context) error { return nil }

// stubKeyword is a scriptable port.KeywordIndex.
type stubKeyword struct {
	mu          sync.Mutex
	searchOut   []domain.SearchResult
	searchErr   error
	searchCalls int
	indexFails  int
	entries     map[string][]string
	deleteFails int
	deleted     []string
}

func newStubKeyword() *stubKeyword {
	return &stubKeyword{entries: make(map[string][]string)}
}

func (s *stubKeyword) Index(_ context.Context, entries []domain.IndexedEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexFails > 0 {
		s.indexFails--
		return errors.New("keyword index down")
	}
	for _, e := range entries {
		s.entries[e.Payload.DocumentID] = append(s.entries[e.Payload.DocumentID], e.ChunkID)
	}
	return nil
}

func (s *stubKeyword) Search(context.Context, string, domain.Filter, int) ([]domain.SearchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchCalls++
	return s.searchOut, s.searchErr
}

func (s *stubKeyword) DeleteByDocument(_ context.Context, documentID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteFails > 0 {
		s.deleteFails--
		return 0, errors.New("keyword index down")
	}
	n := len(s.entries[documentID])
	delete(s.entries, documentID)
	s.deleted = append(s.deleted, documentID)
	return n, nil
}

func (s *stubKeyword) DocumentChunkIDs(_ context.Context, documentID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.entries[documentID]...), nil
}

func (s *stubKeyword) Ping(context.Context) error { return nil }

// stubReranker returns scores proportional to a preset order, or fails.
type stubReranker struct {
	order []int // document indices, best first
	err   error
}

func (s *stubReranker) Rerank(_ context.Context, _ string, documents []string) ([]port.RerankedResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	results := make([]port.RerankedResult, 0, len(s.order))
	for rank, idx := range s.order {
		if idx < len(documents) {
			results = append(results, port.RerankedResult{Index: idx, Score: 1.0 - float64(rank)*0.1})
		}
	}
	return results, nil
}

func (s *stubReranker) ModelName() string { return "stub-rerank" }

// countingInvalidator records cache invalidations.
type countingInvalidator struct {
	mu    sync.Mutex
	count int
}

func (c *countingInvalidator) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count++
}

func (c *countingInvalidator) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}
