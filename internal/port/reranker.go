package port

import "context"

// Reranker scores query-document pairs with a cross-encoder style model.
type Reranker interface {
	// Rerank scores each document against the query and returns results
	// sorted by relevance score, highest first.
	Rerank(ctx context.Context, query string, documents []string) ([]RerankedResult, error)

	// ModelName returns the name of the reranking model.
	ModelName() string
}

// RerankedResult references a document by its index in the input slice.
type RerankedResult struct {
	Index int     // Original index in the input slice
	Score float64 // Relevance score (higher is better)
}
