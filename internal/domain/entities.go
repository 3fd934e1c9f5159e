package domain

import "time"

// Strategy selects how a document is split into chunks.
type Strategy string

const (
	StrategyFixed     Strategy = "fixed"
	StrategySentence  Strategy = "sentence"
	StrategyParagraph Strategy = "paragraph"
	StrategySemantic  Strategy = "semantic"
)

// ValidStrategy reports whether s names a known chunking strategy.
func ValidStrategy(s Strategy) bool {
	switch s {
	case StrategyFixed, StrategySentence, StrategyParagraph, StrategySemantic:
		return true
	}
	return false
}

// Document is the immutable input to ingestion. The caller owns its storage;
// the core only reads it.
type Document struct {
	ID         string
	SourceText string
	MIMEHint   string
	Title      string
	CourseID   string
	ResourceID string
	Language   string // optional declared language; detection runs when empty
	Metadata   map[string]string
}

// Chunk is a retrievable unit derived from a document. Index is 0-based and
// contiguous per document. ID is derived deterministically from
// (DocumentID, Index) so re-ingestion maps to the same vector-store key.
type Chunk struct {
	ID          string
	DocumentID  string
	Index       int
	Text        string
	TokenCount  int
	StartOffset int
	EndOffset   int
	Metadata    map[string]string
}

// Embedding is one vector per chunk per embedding-model version.
type Embedding struct {
	ChunkID   string
	Vector    []float32
	Model     string
	CreatedAt time.Time
}

// Payload is the metadata stored alongside a chunk in both indices.
type Payload struct {
	DocumentID   string            `json:"document_id"`
	ChunkIndex   int               `json:"chunk_index"`
	Text         string            `json:"text"`
	QualityScore float64           `json:"quality_score"`
	Language     string            `json:"language,omitempty"`
	CourseID     string            `json:"course_id,omitempty"`
	Title        string            `json:"title,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// IndexedEntry is the tuple written to the vector collection and mirrored
// into the keyword index under the same chunk ID.
type IndexedEntry struct {
	ChunkID string
	Vector  []float32
	Payload Payload
}

// ResultSource identifies which search path produced a result.
type ResultSource string

const (
	SourceVector  ResultSource = "vector"
	SourceKeyword ResultSource = "keyword"
	SourceFused   ResultSource = "fused"
)

// SearchResult is a ranked retrieval hit.
type SearchResult struct {
	ChunkID string
	Text    string
	Score   float64
	Source  ResultSource
	Payload Payload
}

// Filter restricts searches by quality floor, language, course and arbitrary
// metadata equality. The zero value matches everything.
type Filter struct {
	MinQuality float64
	Language   string
	CourseID   string
	Equals     map[string]string
}

// IsZero reports whether the filter places no restriction at all.
func (f Filter) IsZero() bool {
	return f.MinQuality <= 0 && f.Language == "" && f.CourseID == "" && len(f.Equals) == 0
}

// Matches reports whether a payload passes the filter. Used as the post-filter
// safety net so index-side filtering bugs can never leak results.
func (f Filter) Matches(p Payload) bool {
	if f.MinQuality > 0 && p.QualityScore < f.MinQuality {
		return false
	}
	if f.Language != "" && p.Language != f.Language {
		return false
	}
	if f.CourseID != "" && p.CourseID != f.CourseID {
		return false
	}
	for k, want := range f.Equals {
		if p.Metadata[k] != want {
			return false
		}
	}
	return true
}
