package cache

import (
	"testing"
	"time"

	"ragcore/internal/domain"
)

func response(chunkID string) domain.RetrievalResponse {
	return domain.RetrievalResponse{
		Results: []domain.SearchResult{{ChunkID: chunkID, Score: 1}},
	}
}

func TestCacheHitAndMiss(t *testing.T) {
	c := NewQueryCache(10, time.Minute)

	if _, hit := c.Get("query", 5, domain.Filter{}, false); hit {
		t.Fatal("unexpected hit on empty cache")
	}

	c.Put("query", 5, domain.Filter{}, false, response("c1"))
	got, hit := c.Get("query", 5, domain.Filter{}, false)
	if !hit {
		t.Fatal("expected hit")
	}
	if got.Results[0].ChunkID != "c1" {
		t.Errorf("wrong response: %+v", got)
	}
}

func TestCacheKeyIncludesOptionsAndFilter(t *testing.T) {
	c := NewQueryCache(10, time.Minute)
	c.Put("query", 5, domain.Filter{}, false, response("c1"))

	if _, hit := c.Get("query", 10, domain.Filter{}, false); hit {
		t.Error("different topK must miss")
	}
	if _, hit := c.Get("query", 5, domain.Filter{Language: "en"}, false); hit {
		t.Error("different filter must miss")
	}
	if _, hit := c.Get("other", 5, domain.Filter{}, false); hit {
		t.Error("different query must miss")
	}
}

func TestCacheKeySeparatesRerankModes(t *testing.T) {
	c := NewQueryCache(10, time.Minute)
	c.Put("query", 5, domain.Filter{}, false, response("fused"))
	c.Put("query", 5, domain.Filter{}, true, domain.RetrievalResponse{
		Results:  []domain.SearchResult{{ChunkID: "reranked", Score: 1}},
		Reranked: true,
	})

	fused, hit := c.Get("query", 5, domain.Filter{}, false)
	if !hit || fused.Results[0].ChunkID != "fused" {
		t.Errorf("fused entry lost: hit=%v %+v", hit, fused)
	}
	reranked, hit := c.Get("query", 5, domain.Filter{}, true)
	if !hit || !reranked.Reranked || reranked.Results[0].ChunkID != "reranked" {
		t.Errorf("reranked entry lost: hit=%v %+v", hit, reranked)
	}
}

func TestCacheExpiry(t *testing.T) {
	c := NewQueryCache(10, time.Millisecond)
	c.Put("query", 5, domain.Filter{}, false, response("c1"))

	time.Sleep(5 * time.Millisecond)
	if _, hit := c.Get("query", 5, domain.Filter{}, false); hit {
		t.Error("expired entry returned")
	}
	if c.Size() != 0 {
		t.Errorf("expired entry not removed, size %d", c.Size())
	}
}

func TestCacheInvalidateDropsEverything(t *testing.T) {
	c := NewQueryCache(10, time.Minute)
	c.Put("a", 5, domain.Filter{}, false, response("c1"))
	c.Put("b", 5, domain.Filter{}, false, response("c2"))

	c.Invalidate()
	if c.Size() != 0 {
		t.Errorf("expected empty cache, size %d", c.Size())
	}
	if _, hit := c.Get("a", 5, domain.Filter{}, false); hit {
		t.Error("invalidated entry returned")
	}
}

func TestCacheLRUEviction(t *testing.T) {
	c := NewQueryCache(2, time.Minute)
	c.Put("a", 5, domain.Filter{}, false, response("c1"))
	c.Put("b", 5, domain.Filter{}, false, response("c2"))

	// Touch a so b becomes the eviction candidate.
	if _, hit := c.Get("a", 5, domain.Filter{}, false); !hit {
		t.Fatal("expected hit for a")
	}
	c.Put("c", 5, domain.Filter{}, false, response("c3"))

	if _, hit := c.Get("b", 5, domain.Filter{}, false); hit {
		t.Error("least recently used entry survived eviction")
	}
	if _, hit := c.Get("a", 5, domain.Filter{}, false); !hit {
		t.Error("recently used entry evicted")
	}
	if _, hit := c.Get("c", 5, domain.Filter{}, false); !hit {
		t.Error("new entry missing")
	}
}
