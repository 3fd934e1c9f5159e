package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ragcore/internal/domain"
)

// QdrantStore talks to a Qdrant instance over its REST API.
type QdrantStore struct {
	baseURL    string
	collection string
	apiKey     string
	client     *http.Client
}

// QdrantConfig holds connection settings for a Qdrant instance.
type QdrantConfig struct {
	URL        string `yaml:"url"`
	Collection string `yaml:"collection"`
	APIKey     string `yaml:"apiKey"`
	Timeout    time.Duration
}

// NewQdrantStore creates a store for the given collection.
func NewQdrantStore(cfg QdrantConfig) (*QdrantStore, error) {
	if cfg.URL == "" {
		return nil, domain.NewValidationError("vectorStore.url", "missing Qdrant URL")
	}
	if cfg.Collection == "" {
		return nil, domain.NewValidationError("vectorStore.collection", "missing collection name")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &QdrantStore{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		collection: cfg.Collection,
		apiKey:     cfg.APIKey,
		client:     &http.Client{Timeout: timeout},
	}, nil
}

// qdrantDistance maps our metric names onto Qdrant's.
func qdrantDistance(metric string) string {
	switch metric {
	case DistanceDot:
		return "Dot"
	case DistanceEuclidean:
		return "Euclid"
	default:
		return "Cosine"
	}
}

// EnsureCollection creates the collection if it does not exist. An existing
// collection with a different dimension is an error.
func (s *QdrantStore) EnsureCollection(ctx context.Context, dimension int, distance string) error {
	if dimension <= 0 {
		return domain.NewValidationError("vectorDimension", "must be positive")
	}

	var info struct {
		Result struct {
			Config struct {
				Params struct {
					Vectors struct {
						Size int `json:"size"`
					} `json:"vectors"`
				} `json:"params"`
			} `json:"config"`
		} `json:"result"`
	}
	status, err := s.do(ctx, http.MethodGet, "/collections/"+s.collection, nil, &info)
	if err != nil {
		return err
	}
	if status == http.StatusOK {
		if got := info.Result.Config.Params.Vectors.Size; got != dimension {
			return domain.NewValidationError("vectorDimension", fmt.Sprintf("collection %q has dimension %d, requested %d", s.collection, got, dimension))
		}
		return nil
	}

	body := map[string]interface{}{
		"vectors": map[string]interface{}{
			"size":     dimension,
			"distance": qdrantDistance(distance),
		},
	}
	status, err = s.do(ctx, http.MethodPut, "/collections/"+s.collection, body, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return domain.NewServiceError("qdrant", fmt.Errorf("create collection: status %d", status))
	}
	return nil
}

// Upsert writes entries as points, waiting for the write to apply.
func (s *QdrantStore) Upsert(ctx context.Context, entries []domain.IndexedEntry) error {
	if len(entries) == 0 {
		return nil
	}
	points := make([]map[string]interface{}, len(entries))
	for i, e := range entries {
		points[i] = map[string]interface{}{
			"id":      e.ChunkID,
			"vector":  e.Vector,
			"payload": e.Payload,
		}
	}
	body := map[string]interface{}{"points": points}
	status, err := s.do(ctx, http.MethodPut, "/collections/"+s.collection+"/points?wait=true", body, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return domain.NewServiceError("qdrant", fmt.Errorf("upsert points: status %d", status))
	}
	return nil
}

// qdrantFilter converts a domain.Filter into Qdrant filter JSON.
func qdrantFilter(filter domain.Filter) map[string]interface{} {
	if filter.IsZero() {
		return nil
	}
	var must []map[string]interface{}
	if filter.MinQuality > 0 {
		must = append(must, map[string]interface{}{
			"key":   "quality_score",
			"range": map[string]interface{}{"gte": filter.MinQuality},
		})
	}
	if filter.Language != "" {
		must = append(must, map[string]interface{}{
			"key":   "language",
			"match": map[string]interface{}{"value": filter.Language},
		})
	}
	if filter.CourseID != "" {
		must = append(must, map[string]interface{}{
			"key":   "course_id",
			"match": map[string]interface{}{"value": filter.CourseID},
		})
	}
	for key, value := range filter.Equals {
		must = append(must, map[string]interface{}{
			"key":   "metadata." + key,
			"match": map[string]interface{}{"value": value},
		})
	}
	return map[string]interface{}{"must": must}
}

type qdrantPayload struct {
	DocumentID   string            `json:"document_id"`
	ChunkIndex   int               `json:"chunk_index"`
	Text         string            `json:"text"`
	QualityScore float64           `json:"quality_score"`
	Language     string            `json:"language"`
	CourseID     string            `json:"course_id"`
	Title        string            `json:"title"`
	Metadata     map[string]string `json:"metadata"`
}

func (p qdrantPayload) toDomain() domain.Payload {
	return domain.Payload{
		DocumentID:   p.DocumentID,
		ChunkIndex:   p.ChunkIndex,
		Text:         p.Text,
		QualityScore: p.QualityScore,
		Language:     p.Language,
		CourseID:     p.CourseID,
		Title:        p.Title,
		Metadata:     p.Metadata,
	}
}

// Search runs a similarity search with an optional payload filter.
func (s *QdrantStore) Search(ctx context.Context, vector []float32, filter domain.Filter, topK int) ([]domain.SearchResult, error) {
	body := map[string]interface{}{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}
	if f := qdrantFilter(filter); f != nil {
		body["filter"] = f
	}

	var resp struct {
		Result []struct {
			ID      string        `json:"id"`
			Score   float64       `json:"score"`
			Payload qdrantPayload `json:"payload"`
		} `json:"result"`
	}
	status, err := s.do(ctx, http.MethodPost, "/collections/"+s.collection+"/points/search", body, &resp)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, domain.NewServiceError("qdrant", fmt.Errorf("search points: status %d", status))
	}

	results := make([]domain.SearchResult, len(resp.Result))
	for i, hit := range resp.Result {
		results[i] = domain.SearchResult{
			ChunkID: hit.ID,
			Text:    hit.Payload.Text,
			Score:   hit.Score,
			Source:  domain.SourceVector,
			Payload: hit.Payload.toDomain(),
		}
	}
	return results, nil
}

func documentFilter(documentID string) map[string]interface{} {
	return map[string]interface{}{
		"must": []map[string]interface{}{
			{
				"key":   "document_id",
				"match": map[string]interface{}{"value": documentID},
			},
		},
	}
}

// DeleteByDocument removes all points whose payload references the document
// and returns how many were removed.
func (s *QdrantStore) DeleteByDocument(ctx context.Context, documentID string) (int, error) {
	countBody := map[string]interface{}{
		"filter": documentFilter(documentID),
		"exact":  true,
	}
	var countResp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	status, err := s.do(ctx, http.MethodPost, "/collections/"+s.collection+"/points/count", countBody, &countResp)
	if err != nil {
		return 0, err
	}
	if status != http.StatusOK {
		return 0, domain.NewServiceError("qdrant", fmt.Errorf("count points: status %d", status))
	}
	if countResp.Result.Count == 0 {
		return 0, nil
	}

	deleteBody := map[string]interface{}{"filter": documentFilter(documentID)}
	status, err = s.do(ctx, http.MethodPost, "/collections/"+s.collection+"/points/delete?wait=true", deleteBody, nil)
	if err != nil {
		return 0, err
	}
	if status != http.StatusOK {
		return 0, domain.NewServiceError("qdrant", fmt.Errorf("delete points: status %d", status))
	}
	return countResp.Result.Count, nil
}

// DocumentChunkIDs scrolls the collection for all point IDs belonging to a
// document.
func (s *QdrantStore) DocumentChunkIDs(ctx context.Context, documentID string) ([]string, error) {
	var ids []string
	var offset interface{}
	for {
		body := map[string]interface{}{
			"filter":       documentFilter(documentID),
			"limit":        256,
			"with_payload": false,
			"with_vector":  false,
		}
		if offset != nil {
			body["offset"] = offset
		}
		var resp struct {
			Result struct {
				Points []struct {
					ID string `json:"id"`
				} `json:"points"`
				NextPageOffset interface{} `json:"next_page_offset"`
			} `json:"result"`
		}
		status, err := s.do(ctx, http.MethodPost, "/collections/"+s.collection+"/points/scroll", body, &resp)
		if err != nil {
			return nil, err
		}
		if status != http.StatusOK {
			return nil, domain.NewServiceError("qdrant", fmt.Errorf("scroll points: status %d", status))
		}
		for _, p := range resp.Result.Points {
			ids = append(ids, p.ID)
		}
		if resp.Result.NextPageOffset == nil {
			return ids, nil
		}
		offset = resp.Result.NextPageOffset
	}
}

// Ping checks that the Qdrant instance responds.
func (s *QdrantStore) Ping(ctx context.Context) error {
	status, err := s.do(ctx, http.MethodGet, "/collections", nil, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return domain.NewServiceError("qdrant", fmt.Errorf("ping: status %d", status))
	}
	return nil
}

// do issues a request with an optional JSON body and decodes the response
// into out when provided. A 404 is returned as a status, not an error, so
// callers can treat missing collections as absent.
func (s *QdrantStore) do(ctx context.Context, method, path string, body, out interface{}) (int, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, domain.NewServiceError("qdrant", err)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, domain.NewServiceError("qdrant", fmt.Errorf("decode response: %w", err))
		}
	} else {
		io.Copy(io.Discard, resp.Body)
	}
	return resp.StatusCode, nil
}
