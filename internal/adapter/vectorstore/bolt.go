package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"go.etcd.io/bbolt"

	"ragcore/internal/domain"
)

var (
	bucketVectors = []byte("vectors")
	bucketMeta    = []byte("vectors_meta")
	keyDimension  = []byte("dimension")
	keyMetric     = []byte("metric")
)

// BoltStore implements VectorStore on BoltDB for local, single-node setups.
// Search is brute force over an in-memory cache of all entries.
type BoltStore struct {
	db        *bbolt.DB
	mu        sync.RWMutex
	dimension int
	metric    string
	entries   map[string]domain.IndexedEntry
}

type storedEntry struct {
	Vector  []float32      `json:"v"`
	Payload domain.Payload `json:"p"`
}

// NewBoltStore creates a BoltDB-backed vector store and loads existing
// entries into memory.
func NewBoltStore(db *bbolt.DB) (*BoltStore, error) {
	store := &BoltStore{
		db:      db,
		entries: make(map[string]domain.IndexedEntry),
	}

	err := db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketVectors); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(bucketMeta)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create vector buckets: %w", err)
	}

	if err := store.load(); err != nil {
		return nil, fmt.Errorf("failed to load vectors: %w", err)
	}
	return store, nil
}

// load reads persisted metadata and entries into the in-memory cache.
func (s *BoltStore) load() error {
	return s.db.View(func(tx *bbolt.Tx) error {
		meta := tx.Bucket(bucketMeta)
		if v := meta.Get(keyDimension); v != nil {
			var dim int
			if err := json.Unmarshal(v, &dim); err == nil {
				s.dimension = dim
			}
		}
		if v := meta.Get(keyMetric); v != nil {
			s.metric = string(v)
		}

		b := tx.Bucket(bucketVectors)
		return b.ForEach(func(k, v []byte) error {
			var stored storedEntry
			if err := json.Unmarshal(v, &stored); err != nil {
				return nil // Skip corrupted entries
			}
			s.entries[string(k)] = domain.IndexedEntry{
				ChunkID: string(k),
				Vector:  stored.Vector,
				Payload: stored.Payload,
			}
			return nil
		})
	})
}

// EnsureCollection persists the dimension and metric on first use and
// validates them on subsequent calls.
func (s *BoltStore) EnsureCollection(_ context.Context, dimension int, distance string) error {
	if dimension <= 0 {
		return domain.NewValidationError("vectorDimension", "must be positive")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dimension != 0 {
		if s.dimension != dimension {
			return domain.NewValidationError("vectorDimension", fmt.Sprintf("store has dimension %d, requested %d", s.dimension, dimension))
		}
		return nil
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		meta := tx.Bucket(bucketMeta)
		dim, err := json.Marshal(dimension)
		if err != nil {
			return err
		}
		if err := meta.Put(keyDimension, dim); err != nil {
			return err
		}
		return meta.Put(keyMetric, []byte(distance))
	})
	if err != nil {
		return fmt.Errorf("failed to persist collection settings: %w", err)
	}
	s.dimension = dimension
	s.metric = distance
	return nil
}

// Upsert writes entries to disk and the in-memory cache.
func (s *BoltStore) Upsert(_ context.Context, entries []domain.IndexedEntry) error {
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

	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketVectors)
		for _, e := range entries {
			data, err := json.Marshal(storedEntry{Vector: e.Vector, Payload: e.Payload})
			if err != nil {
				return err
			}
			if err := b.Put([]byte(e.ChunkID), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to upsert vectors: %w", err)
	}

	for _, e := range entries {
		s.entries[e.ChunkID] = e
	}
	return nil
}

// Search finds the topK most similar entries passing the filter.
func (s *BoltStore) Search(_ context.Context, vector []float32, filter domain.Filter, topK int) ([]domain.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.dimension != 0 && len(vector) != s.dimension {
		return nil, domain.NewValidationError("vector", fmt.Sprintf("query dimension mismatch: expected %d, got %d", s.dimension, len(vector)))
	}

	all := make([]domain.IndexedEntry, 0, len(s.entries))
	for _, e := range s.entries {
		all = append(all, e)
	}
	return rankLocal(s.metric, vector, all, filter, topK), nil
}

// DeleteByDocument removes all entries belonging to a document.
func (s *BoltStore) DeleteByDocument(_ context.Context, documentID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []string
	for id, e := range s.entries {
		if e.Payload.DocumentID == documentID {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return 0, nil
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketVectors)
		for _, id := range ids {
			if err := b.Delete([]byte(id)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete vectors: %w", err)
	}

	for _, id := range ids {
		delete(s.entries, id)
	}
	return len(ids), nil
}

// DocumentChunkIDs lists chunk IDs stored for a document.
func (s *BoltStore) DocumentChunkIDs(_ context.Context, documentID string) ([]string, error) {
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

// Ping verifies the database file is still usable.
func (s *BoltStore) Ping(context.Context) error {
	return s.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket(bucketVectors) == nil {
			return fmt.Errorf("vectors bucket not found")
		}
		return nil
	})
}

// Count returns the number of stored vectors.
func (s *BoltStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
