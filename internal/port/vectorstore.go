package port

import (
	"context"

	"ragcore/internal/domain"
)

// VectorStore stores and searches fixed-dimension embedding vectors with
// payload filtering. Implemented once per provider.
type VectorStore interface {
	// EnsureCollection creates the collection if absent with the given
	// dimension and distance metric, and validates an existing one.
	EnsureCollection(ctx context.Context, dimension int, distance string) error

	// Upsert writes entries keyed by chunk ID. Re-upserting an unchanged
	// chunk overwrites the same key (idempotent ingestion).
	Upsert(ctx context.Context, entries []domain.IndexedEntry) error

	// Search returns the topK nearest entries passing the filter,
	// score-descending.
	Search(ctx context.Context, vector []float32, filter domain.Filter, topK int) ([]domain.SearchResult, error)

	// DeleteByDocument removes every chunk of a document and returns the
	// number removed.
	DeleteByDocument(ctx context.Context, documentID string) (int, error)

	// DocumentChunkIDs lists the chunk IDs stored for a document. Used by
	// index reconciliation.
	DocumentChunkIDs(ctx context.Context, documentID string) ([]string, error)

	// Ping checks reachability.
	Ping(ctx context.Context) error
}
