// Package reranker provides Reranker implementations: a Cohere cross-encoder
// client and a lexical fallback for offline use.
package reranker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"ragcore/internal/domain"
	"ragcore/internal/port"
)

const defaultCohereURL = "https://api.cohere.ai/v1/rerank"

// CohereReranker scores query/document pairs with Cohere's cross-encoder.
type CohereReranker struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

type cohereRerankRequest struct {
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
	Model     string   `json:"model"`
	TopN      int      `json:"top_n,omitempty"`
}

type cohereRerankResponse struct {
	Results []struct {
		Index          int     `json:"index"`
		RelevanceScore float64 `json:"relevance_score"`
	} `json:"results"`
}

// NewCohereReranker creates a reranker. baseURL may be empty for the public
// API endpoint.
func NewCohereReranker(apiKey, model, baseURL string) (*CohereReranker, error) {
	if apiKey == "" {
		return nil, domain.NewValidationError("rerank.apiKey", "missing API key")
	}
	if model == "" {
		model = "rerank-english-v3.0"
	}
	if baseURL == "" {
		baseURL = defaultCohereURL
	}
	return &CohereReranker{
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Rerank scores documents against the query, best first.
func (r *CohereReranker) Rerank(ctx context.Context, query string, documents []string) ([]port.RerankedResult, error) {
	if len(documents) == 0 {
		return nil, nil
	}

	// Cohere accepts at most 1000 documents per request.
	const maxDocs = 1000
	if len(documents) > maxDocs {
		documents = documents[:maxDocs]
	}

	jsonData, err := json.Marshal(cohereRerankRequest{
		Query:     query,
		Documents: documents,
		Model:     r.model,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.apiKey)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, domain.NewServiceError("cohere", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, domain.NewServiceError("cohere", fmt.Errorf("status %d: %s", resp.StatusCode, string(body)))
	}

	var rerankResp cohereRerankResponse
	if err := json.Unmarshal(body, &rerankResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	results := make([]port.RerankedResult, len(rerankResp.Results))
	for i, res := range rerankResp.Results {
		results[i] = port.RerankedResult{Index: res.Index, Score: res.RelevanceScore}
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results, nil
}

// ModelName returns the rerank model name.
func (r *CohereReranker) ModelName() string { return r.model }

// LexicalReranker scores documents by query term overlap. It serves as the
// fallback when no cross-encoder is configured.
type LexicalReranker struct{}

// NewLexicalReranker creates a LexicalReranker.
func NewLexicalReranker() *LexicalReranker { return &LexicalReranker{} }

// Rerank orders documents by the fraction of query terms they contain.
// Ties keep the original candidate order.
func (r *LexicalReranker) Rerank(_ context.Context, query string, documents []string) ([]port.RerankedResult, error) {
	queryTerms := tokenize(query)

	results := make([]port.RerankedResult, len(documents))
	if len(queryTerms) == 0 {
		for i := range documents {
			results[i] = port.RerankedResult{Index: i, Score: 1.0 - float64(i)*0.01}
		}
		return results, nil
	}

	for i, doc := range documents {
		results[i] = port.RerankedResult{Index: i, Score: termOverlap(queryTerms, doc)}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results, nil
}

// ModelName identifies the fallback.
func (r *LexicalReranker) ModelName() string { return "lexical-overlap" }

func tokenize(text string) map[string]int {
	terms := make(map[string]int)
	var word strings.Builder
	flush := func() {
		if word.Len() >= 2 {
			terms[strings.ToLower(word.String())]++
		}
		word.Reset()
	}
	for _, r := range text {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			word.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return terms
}

func termOverlap(queryTerms map[string]int, doc string) float64 {
	docTerms := tokenize(doc)
	if len(docTerms) == 0 {
		return 0
	}
	matches := 0
	for term := range queryTerms {
		if _, exists := docTerms[term]; exists {
			matches++
		}
	}
	return float64(matches) / float64(len(queryTerms))
}
