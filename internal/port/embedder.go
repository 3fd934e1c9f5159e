package port

import "context"

// Embedder generates vector embeddings for text via an external service.
type Embedder interface {
	// EmbedBatch generates one vector per input text, preserving order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the embedding vector dimension.
	Dimension() int

	// ModelName returns the name of the embedding model.
	ModelName() string
}
