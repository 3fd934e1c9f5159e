package port

import (
	"context"

	"ragcore/internal/domain"
)

// KeywordIndex is the full-text side of the hybrid index. It mirrors the
// vector collection: any chunk present in one must be present in the other.
type KeywordIndex interface {
	// Index adds or replaces entries keyed by chunk ID.
	Index(ctx context.Context, entries []domain.IndexedEntry) error

	// Search returns the topK most relevant entries for the query text
	// passing the filter, score-descending.
	Search(ctx context.Context, query string, filter domain.Filter, topK int) ([]domain.SearchResult, error)

	// DeleteByDocument removes every chunk of a document and returns the
	// number removed.
	DeleteByDocument(ctx context.Context, documentID string) (int, error)

	// DocumentChunkIDs lists the chunk IDs stored for a document.
	DocumentChunkIDs(ctx context.Context, documentID string) ([]string, error)

	// Ping checks reachability.
	Ping(ctx context.Context) error
}
