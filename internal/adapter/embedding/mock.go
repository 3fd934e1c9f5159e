package embedding

import "context"

// MockEmbedder produces deterministic vectors derived from the input runes.
// Used for tests and for running the pipeline without an API key.
type MockEmbedder struct {
	dimension int
}

// NewMockEmbedder creates a MockEmbedder with the given dimension.
func NewMockEmbedder(dimension int) *MockEmbedder {
	if dimension <= 0 {
		dimension = 32
	}
	return &MockEmbedder{dimension: dimension}
}

// EmbedBatch returns one deterministic vector per text.
func (e *MockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		v := make([]float32, e.dimension)
		for j, r := range text {
			v[j%e.dimension] += float32(r) / 1000.0
		}
		vectors[i] = v
	}
	return vectors, nil
}

// Dimension returns the configured dimension.
func (e *MockEmbedder) Dimension() int { return e.dimension }

// ModelName identifies the mock.
func (e *MockEmbedder) ModelName() string { return "mock" }
