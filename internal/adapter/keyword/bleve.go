// Package keyword provides a bleve-backed KeywordIndex with BM25 relevance
// scoring and payload filtering.
package keyword

import (
	"context"
	"fmt"

	"github.com/blevesearch/bleve"
	"github.com/blevesearch/bleve/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/mapping"
	"github.com/blevesearch/bleve/search/query"

	"ragcore/internal/domain"
)

// BleveIndex implements KeywordIndex on a bleve full-text index. With an
// empty path the index lives in memory, otherwise it persists on disk.
type BleveIndex struct {
	index bleve.Index
}

// indexMapping maps chunk text through the standard analyzer and identifier
// fields through the keyword analyzer so term filters match exactly.
func indexMapping() *mapping.IndexMappingImpl {
	text := bleve.NewTextFieldMapping()

	exact := bleve.NewTextFieldMapping()
	exact.Analyzer = keyword.Name

	numeric := bleve.NewNumericFieldMapping()

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("text", text)
	doc.AddFieldMappingsAt("title", text)
	doc.AddFieldMappingsAt("document_id", exact)
	doc.AddFieldMappingsAt("language", exact)
	doc.AddFieldMappingsAt("course_id", exact)
	doc.AddFieldMappingsAt("quality_score", numeric)
	doc.AddFieldMappingsAt("chunk_index", numeric)

	m := bleve.NewIndexMapping()
	m.DefaultMapping = doc
	return m
}

// NewBleveIndex opens or creates the index at path. An empty path creates a
// memory-only index.
func NewBleveIndex(path string) (*BleveIndex, error) {
	if path == "" {
		index, err := bleve.NewMemOnly(indexMapping())
		if err != nil {
			return nil, fmt.Errorf("failed to create keyword index: %w", err)
		}
		return &BleveIndex{index: index}, nil
	}

	index, err := bleve.Open(path)
	if err == bleve.ErrorIndexPathDoesNotExist {
		index, err = bleve.New(path, indexMapping())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open keyword index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

// Close releases the underlying index.
func (b *BleveIndex) Close() error { return b.index.Close() }

// indexDoc flattens a payload into the shape the mapping expects. Metadata
// keys become metadata.<key> fields.
func indexDoc(p domain.Payload) map[string]interface{} {
	doc := map[string]interface{}{
		"document_id":   p.DocumentID,
		"chunk_index":   p.ChunkIndex,
		"text":          p.Text,
		"quality_score": p.QualityScore,
		"language":      p.Language,
		"course_id":     p.CourseID,
		"title":         p.Title,
	}
	if len(p.Metadata) > 0 {
		doc["metadata"] = p.Metadata
	}
	return doc
}

// Index writes entries into the keyword index in one batch.
func (b *BleveIndex) Index(_ context.Context, entries []domain.IndexedEntry) error {
	batch := b.index.NewBatch()
	for _, e := range entries {
		if err := batch.Index(e.ChunkID, indexDoc(e.Payload)); err != nil {
			return fmt.Errorf("failed to index chunk %s: %w", e.ChunkID, err)
		}
	}
	if err := b.index.Batch(batch); err != nil {
		return fmt.Errorf("failed to apply keyword batch: %w", err)
	}
	return nil
}

// buildQuery combines the text match with indexed filter conditions.
// Metadata equality is enforced post-hoc on the reconstructed payload.
func buildQuery(q string, filter domain.Filter) query.Query {
	match := bleve.NewMatchQuery(q)
	match.SetField("text")

	conditions := []query.Query{query.Query(match)}
	if filter.MinQuality > 0 {
		minQuality := filter.MinQuality
		rangeQuery := bleve.NewNumericRangeQuery(&minQuality, nil)
		rangeQuery.SetField("quality_score")
		conditions = append(conditions, rangeQuery)
	}
	if filter.Language != "" {
		term := bleve.NewTermQuery(filter.Language)
		term.SetField("language")
		conditions = append(conditions, term)
	}
	if filter.CourseID != "" {
		term := bleve.NewTermQuery(filter.CourseID)
		term.SetField("course_id")
		conditions = append(conditions, term)
	}
	if len(conditions) == 1 {
		return match
	}
	return bleve.NewConjunctionQuery(conditions...)
}

func fieldString(fields map[string]interface{}, name string) string {
	s, _ := fields[name].(string)
	return s
}

func fieldFloat(fields map[string]interface{}, name string) float64 {
	f, _ := fields[name].(float64)
	return f
}

// payloadFromFields rebuilds a payload from the stored fields of a hit.
// Bleve flattens metadata maps into metadata.<key> fields.
func payloadFromFields(fields map[string]interface{}) domain.Payload {
	p := domain.Payload{
		DocumentID:   fieldString(fields, "document_id"),
		ChunkIndex:   int(fieldFloat(fields, "chunk_index")),
		Text:         fieldString(fields, "text"),
		QualityScore: fieldFloat(fields, "quality_score"),
		Language:     fieldString(fields, "language"),
		CourseID:     fieldString(fields, "course_id"),
		Title:        fieldString(fields, "title"),
	}
	for name, value := range fields {
		if len(name) > len("metadata.") && name[:len("metadata.")] == "metadata." {
			if s, ok := value.(string); ok {
				if p.Metadata == nil {
					p.Metadata = make(map[string]string)
				}
				p.Metadata[name[len("metadata."):]] = s
			}
		}
	}
	return p
}

// Search runs a BM25-scored match query and returns the topK hits passing
// the filter.
func (b *BleveIndex) Search(ctx context.Context, q string, filter domain.Filter, topK int) ([]domain.SearchResult, error) {
	if topK <= 0 {
		return nil, nil
	}

	// Over-fetch when metadata equality must be applied after the fact.
	size := topK
	if len(filter.Equals) > 0 {
		size = topK * 3
	}

	req := bleve.NewSearchRequestOptions(buildQuery(q, filter), size, 0, false)
	req.Fields = []string{"*"}

	res, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("keyword search failed: %w", err)
	}

	results := make([]domain.SearchResult, 0, topK)
	for _, hit := range res.Hits {
		payload := payloadFromFields(hit.Fields)
		if !filter.Matches(payload) {
			continue
		}
		results = append(results, domain.SearchResult{
			ChunkID: hit.ID,
			Text:    payload.Text,
			Score:   hit.Score,
			Source:  domain.SourceKeyword,
			Payload: payload,
		})
		if len(results) >= topK {
			break
		}
	}
	return results, nil
}

// documentHits pages through all hits for a document ID.
func (b *BleveIndex) documentHits(ctx context.Context, documentID string) ([]string, error) {
	term := bleve.NewTermQuery(documentID)
	term.SetField("document_id")

	var ids []string
	for from := 0; ; {
		req := bleve.NewSearchRequestOptions(term, 1000, from, false)
		res, err := b.index.SearchInContext(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("document lookup failed: %w", err)
		}
		for _, hit := range res.Hits {
			ids = append(ids, hit.ID)
		}
		from += len(res.Hits)
		if uint64(from) >= res.Total || len(res.Hits) == 0 {
			return ids, nil
		}
	}
}

// DeleteByDocument removes all chunks of a document and returns the count.
func (b *BleveIndex) DeleteByDocument(ctx context.Context, documentID string) (int, error) {
	ids, err := b.documentHits(ctx, documentID)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	batch := b.index.NewBatch()
	for _, id := range ids {
		batch.Delete(id)
	}
	if err := b.index.Batch(batch); err != nil {
		return 0, fmt.Errorf("failed to delete document chunks: %w", err)
	}
	return len(ids), nil
}

// DocumentChunkIDs lists chunk IDs indexed for a document.
func (b *BleveIndex) DocumentChunkIDs(ctx context.Context, documentID string) ([]string, error) {
	return b.documentHits(ctx, documentID)
}

// Ping verifies the index answers queries.
func (b *BleveIndex) Ping(context.Context) error {
	_, err := b.index.DocCount()
	return err
}
