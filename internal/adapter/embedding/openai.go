// Package embedding provides Embedder implementations: an OpenAI-compatible
// client and a deterministic mock for offline use and tests.
package embedding

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"ragcore/internal/domain"
)

// modelDimensions maps known embedding models to their vector dimension.
var modelDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// OpenAIEmbedder calls an OpenAI-compatible embeddings endpoint.
type OpenAIEmbedder struct {
	client    *openai.Client
	model     string
	dimension int
}

// NewOpenAIEmbedder creates an embedder for the given model. baseURL may be
// empty for api.openai.com; dimension 0 uses the model's known dimension.
func NewOpenAIEmbedder(apiKey, model, baseURL string, dimension int) (*OpenAIEmbedder, error) {
	if apiKey == "" {
		return nil, domain.NewValidationError("embedding.apiKey", "missing API key")
	}
	if model == "" {
		model = "text-embedding-3-small"
	}
	if dimension == 0 {
		dimension = modelDimensions[model]
	}
	if dimension <= 0 {
		return nil, domain.NewValidationError("embedding.dimension", fmt.Sprintf("unknown dimension for model %q", model))
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &OpenAIEmbedder{
		client:    openai.NewClientWithConfig(cfg),
		model:     model,
		dimension: dimension,
	}, nil
}

// EmbedBatch generates one vector per text, preserving input order.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: texts,
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, fmt.Errorf("create embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: sent %d texts, got %d vectors", len(texts), len(resp.Data))
	}

	vectors := make([][]float32, len(texts))
	for _, data := range resp.Data {
		if data.Index < 0 || data.Index >= len(vectors) {
			return nil, fmt.Errorf("embedding index %d out of range", data.Index)
		}
		if len(data.Embedding) != e.dimension {
			return nil, fmt.Errorf("embedding dimension mismatch: expected %d, got %d", e.dimension, len(data.Embedding))
		}
		vectors[data.Index] = data.Embedding
	}
	return vectors, nil
}

// Dimension returns the embedding vector dimension.
func (e *OpenAIEmbedder) Dimension() int { return e.dimension }

// ModelName returns the embedding model name.
func (e *OpenAIEmbedder) ModelName() string { return e.model }
