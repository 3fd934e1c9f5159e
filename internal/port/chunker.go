package port

import "ragcore/internal/domain"

// Chunker splits normalized document text into retrievable units.
type Chunker interface {
	Chunk(doc domain.Document, text string) ([]domain.Chunk, error)
}
