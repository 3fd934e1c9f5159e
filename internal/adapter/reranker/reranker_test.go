package reranker

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"ragcore/internal/domain"
)

func TestLexicalRerankerOrdersByOverlap(t *testing.T) {
	r := NewLexicalReranker()
	docs := []string{
		"the weather today is sunny",
		"photosynthesis uses sunlight and water",
		"plants perform photosynthesis using sunlight chlorophyll and water",
	}

	results, err := r.Rerank(context.Background(), "photosynthesis sunlight water", docs)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Index != 1 && results[0].Index != 2 {
		t.Errorf("expected a photosynthesis document first, got index %d", results[0].Index)
	}
	if results[len(results)-1].Index != 0 {
		t.Errorf("expected unrelated document last, got index %d", results[len(results)-1].Index)
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Errorf("scores not descending at %d", i)
		}
	}
}

func TestLexicalRerankerEmptyQueryKeepsOrder(t *testing.T) {
	r := NewLexicalReranker()
	results, err := r.Rerank(context.Background(), "!!!", []string{"a b c", "d e f"})
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Index != 0 || results[1].Index != 1 {
		t.Errorf("expected original order, got %+v", results)
	}
}

func TestLexicalRerankerCaseInsensitive(t *testing.T) {
	r := NewLexicalReranker()
	results, err := r.Rerank(context.Background(), "Photosynthesis", []string{"unrelated text here", "PHOTOSYNTHESIS explained"})
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Index != 1 {
		t.Errorf("expected case-insensitive match first, got index %d", results[0].Index)
	}
}

func TestCohereRerankerParsesResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer key" {
			t.Errorf("missing auth header")
		}
		var req map[string]interface{}
		json.NewDecoder(r.Body).Decode(&req)
		if req["query"] != "photosynthesis" {
			t.Errorf("unexpected query %v", req["query"])
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"results": []map[string]interface{}{
				{"index": 1, "relevance_score": 0.95},
				{"index": 0, "relevance_score": 0.2},
			},
		})
	}))
	defer server.Close()

	r, err := NewCohereReranker("key", "", server.URL)
	if err != nil {
		t.Fatal(err)
	}
	results, err := r.Rerank(context.Background(), "photosynthesis", []string{"doc a", "doc b"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Index != 1 || results[0].Score != 0.95 {
		t.Errorf("unexpected top result: %+v", results[0])
	}
}

func TestCohereRerankerServiceErrorOnBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	r, err := NewCohereReranker("key", "", server.URL)
	if err != nil {
		t.Fatal(err)
	}
	_, err = r.Rerank(context.Background(), "q", []string{"doc"})
	var svcErr *domain.ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected service error, got %v", err)
	}
}

func TestCohereRerankerRequiresAPIKey(t *testing.T) {
	if _, err := NewCohereReranker("", "", ""); !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCohereRerankerEmptyDocuments(t *testing.T) {
	r, err := NewCohereReranker("key", "", "http://unused.invalid")
	if err != nil {
		t.Fatal(err)
	}
	results, err := r.Rerank(context.Background(), "q", nil)
	if err != nil {
		t.Fatal(err)
	}
	if results != nil {
		t.Errorf("expected nil results, got %+v", results)
	}
}
