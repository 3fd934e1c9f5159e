package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"ragcore/internal/adapter/cache"
	"ragcore/internal/domain"
	"ragcore/internal/port"
)

// rrfK is the reciprocal-rank-fusion constant.
const rrfK = 60

// defaultRerankMultiplier controls how many fused candidates are passed to
// the reranker relative to the requested topK.
const defaultRerankMultiplier = 3

// RetrieveOptions shape one retrieval call.
type RetrieveOptions struct {
	TopK         int
	MinQuality   float64
	Language     string
	CourseID     string
	Filters      map[string]string
	EnableRerank bool
}

func (o RetrieveOptions) filter() domain.Filter {
	return domain.Filter{
		MinQuality: o.MinQuality,
		Language:   o.Language,
		CourseID:   o.CourseID,
		Equals:     o.Filters,
	}
}

// RetrieveEngine answers queries with hybrid vector + keyword search, RRF
// fusion, and optional cross-encoder reranking.
type RetrieveEngine struct {
	embedder *BatchEmbedder
	vector   port.VectorStore
	keyword  port.KeywordIndex
	reranker port.Reranker
	cache    *cache.QueryCache
}

// NewRetrieveEngine creates a RetrieveEngine. reranker and cache may be nil.
func NewRetrieveEngine(embedder *BatchEmbedder, vector port.VectorStore, keyword port.KeywordIndex, reranker port.Reranker, queryCache *cache.QueryCache) *RetrieveEngine {
	return &RetrieveEngine{
		embedder: embedder,
		vector:   vector,
		keyword:  keyword,
		reranker: reranker,
		cache:    queryCache,
	}
}

// Retrieve runs both search paths, fuses, optionally reranks, and returns a
// fully ordered response. When exactly one path fails the response is served
// degraded with Partial set; when both fail it returns ErrRetrievalUnavailable.
func (e *RetrieveEngine) Retrieve(ctx context.Context, query string, opts RetrieveOptions) (domain.RetrievalResponse, error) {
	if query == "" {
		return domain.RetrievalResponse{}, domain.NewValidationError("query", "must not be empty")
	}
	if opts.TopK <= 0 {
		opts.TopK = 10
	}
	filter := opts.filter()
	rerank := opts.EnableRerank && e.reranker != nil

	if e.cache != nil {
		if cached, hit := e.cache.Get(query, opts.TopK, filter, rerank); hit {
			return cached, nil
		}
	}

	// Fetch enough candidates to give the reranker room to reorder.
	candidateK := opts.TopK
	if rerank {
		candidateK = opts.TopK * defaultRerankMultiplier
	}

	vectorResults, keywordResults, vectorErr, keywordErr := e.searchBoth(ctx, query, filter, candidateK)
	if vectorErr != nil && keywordErr != nil {
		return domain.RetrievalResponse{}, fmt.Errorf("%w: vector: %v; keyword: %v", domain.ErrRetrievalUnavailable, vectorErr, keywordErr)
	}

	fused := fuseRRF(vectorResults, keywordResults)

	// Post-filter safety net over whatever the stores returned.
	filtered := fused[:0]
	for _, c := range fused {
		if filter.Matches(c.result.Payload) {
			filtered = append(filtered, c)
		}
	}
	fused = filtered

	response := domain.RetrievalResponse{
		Partial: vectorErr != nil || keywordErr != nil,
	}

	if rerank && len(fused) > 0 {
		if reranked, ok := e.rerank(ctx, query, fused, opts.TopK); ok {
			response.Results = reranked
			response.Reranked = true
		}
	}
	if !response.Reranked {
		limit := opts.TopK
		if limit > len(fused) {
			limit = len(fused)
		}
		response.Results = make([]domain.SearchResult, limit)
		for i := 0; i < limit; i++ {
			response.Results[i] = fused[i].result
		}
	}

	// Degraded responses are not cached: the missing path may recover.
	if e.cache != nil && !response.Partial {
		e.cache.Put(query, opts.TopK, filter, rerank, response)
	}
	return response, nil
}

// searchBoth runs the two search paths in parallel. The vector path embeds
// the query first; an embedding failure fails only that path.
func (e *RetrieveEngine) searchBoth(ctx context.Context, query string, filter domain.Filter, topK int) (vectorResults, keywordResults []domain.SearchResult, vectorErr, keywordErr error) {
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		outcome, err := e.embedder.EmbedChunks(ctx, []domain.Chunk{{ID: "query", Text: query}})
		if err != nil {
			vectorErr = err
			return
		}
		vector, ok := outcome.Vectors["query"]
		if !ok {
			vectorErr = fmt.Errorf("query embedding failed")
			return
		}
		vectorResults, vectorErr = e.vector.Search(ctx, vector, filter, topK)
	}()

	go func() {
		defer wg.Done()
		keywordResults, keywordErr = e.keyword.Search(ctx, query, filter, topK)
	}()

	wg.Wait()
	return vectorResults, keywordResults, vectorErr, keywordErr
}

// candidate carries a fused result with the ranks that produced it.
type candidate struct {
	result      domain.SearchResult
	fused       float64
	vectorRank  int // 0 when absent from the vector list
	keywordRank int
}

// fuseRRF merges the two ranked lists with reciprocal rank fusion using
// 1-based ranks, deduplicating by chunk ID. Within one list only the first
// (best) occurrence of an ID contributes. Ordering is fused score descending,
// then vector rank ascending (absent last), then chunk index ascending.
func fuseRRF(vectorResults, keywordResults []domain.SearchResult) []candidate {
	byID := make(map[string]*candidate)

	for i, r := range vectorResults {
		if _, ok := byID[r.ChunkID]; ok {
			continue
		}
		rank := i + 1
		byID[r.ChunkID] = &candidate{
			result:     r,
			fused:      1.0 / float64(rrfK+rank),
			vectorRank: rank,
		}
	}
	for i, r := range keywordResults {
		rank := i + 1
		if c, ok := byID[r.ChunkID]; ok {
			// keywordRank set means a duplicate within the keyword list.
			if c.keywordRank != 0 {
				continue
			}
			c.fused += 1.0 / float64(rrfK+rank)
			c.keywordRank = rank
			c.result.Source = domain.SourceFused
			continue
		}
		byID[r.ChunkID] = &candidate{
			result:      r,
			fused:       1.0 / float64(rrfK+rank),
			keywordRank: rank,
		}
	}

	fused := make([]candidate, 0, len(byID))
	for _, c := range byID {
		c.result.Score = c.fused
		fused = append(fused, *c)
	}

	sort.Slice(fused, func(i, j int) bool {
		if fused[i].fused != fused[j].fused {
			return fused[i].fused > fused[j].fused
		}
		ri, rj := fused[i].vectorRank, fused[j].vectorRank
		if ri == 0 {
			ri = int(^uint(0) >> 1)
		}
		if rj == 0 {
			rj = int(^uint(0) >> 1)
		}
		if ri != rj {
			return ri < rj
		}
		return fused[i].result.Payload.ChunkIndex < fused[j].result.Payload.ChunkIndex
	})
	return fused
}

// rerank passes the fused candidates through the cross-encoder. On any
// reranker failure it reports ok=false and the caller keeps the fused order.
func (e *RetrieveEngine) rerank(ctx context.Context, query string, fused []candidate, topK int) ([]domain.SearchResult, bool) {
	texts := make([]string, len(fused))
	for i, c := range fused {
		texts[i] = c.result.Text
	}

	scored, err := e.reranker.Rerank(ctx, query, texts)
	if err != nil {
		return nil, false
	}

	results := make([]domain.SearchResult, 0, topK)
	for _, s := range scored {
		if s.Index < 0 || s.Index >= len(fused) {
			continue
		}
		r := fused[s.Index].result
		r.Score = s.Score
		results = append(results, r)
		if len(results) >= topK {
			break
		}
	}
	return results, true
}
