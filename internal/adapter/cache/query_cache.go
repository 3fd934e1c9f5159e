// Package cache provides an LRU query cache for retrieval responses.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"

	"ragcore/internal/domain"
)

// QueryCache caches retrieval responses with TTL and LRU eviction. Index
// writes bump a generation counter so stale entries never survive an
// ingestion or deletion.
type QueryCache struct {
	mu       sync.RWMutex
	entries  map[string]*cacheEntry
	order    []string
	maxSize  int
	ttl      time.Duration
	indexGen uint64
}

type cacheEntry struct {
	response  domain.RetrievalResponse
	timestamp time.Time
	indexGen  uint64
}

// NewQueryCache creates a cache holding at most maxSize entries for ttl.
func NewQueryCache(maxSize int, ttl time.Duration) *QueryCache {
	if maxSize <= 0 {
		maxSize = 100
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &QueryCache{
		entries: make(map[string]*cacheEntry),
		order:   make([]string, 0, maxSize),
		maxSize: maxSize,
		ttl:     ttl,
	}
}

// cacheKey derives a stable key from the query and its options. Filter maps
// marshal with sorted keys, so the encoding is deterministic. The rerank flag
// is part of the key: reranked and fused-order responses for the same query
// are different answers.
func cacheKey(query string, topK int, filter domain.Filter, rerank bool) string {
	data := []byte(query)
	data = append(data, byte(topK>>8), byte(topK))
	if rerank {
		data = append(data, 1)
	} else {
		data = append(data, 0)
	}
	if encoded, err := json.Marshal(filter); err == nil {
		data = append(data, encoded...)
	}
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:16])
}

// Get returns a cached response if present, fresh, and from the current
// index generation.
func (c *QueryCache) Get(query string, topK int, filter domain.Filter, rerank bool) (domain.RetrievalResponse, bool) {
	key := cacheKey(query, topK, filter, rerank)

	c.mu.RLock()
	entry, exists := c.entries[key]
	currentGen := c.indexGen
	c.mu.RUnlock()

	if !exists {
		return domain.RetrievalResponse{}, false
	}

	if time.Since(entry.timestamp) > c.ttl || entry.indexGen != currentGen {
		c.mu.Lock()
		delete(c.entries, key)
		c.removeFromOrder(key)
		c.mu.Unlock()
		return domain.RetrievalResponse{}, false
	}

	c.mu.Lock()
	c.moveToEnd(key)
	c.mu.Unlock()

	return entry.response, true
}

// Put stores a response, evicting the least recently used entry when full.
func (c *QueryCache) Put(query string, topK int, filter domain.Filter, rerank bool, response domain.RetrievalResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(query, topK, filter, rerank)

	if _, exists := c.entries[key]; exists {
		c.entries[key] = &cacheEntry{
			response:  response,
			timestamp: time.Now(),
			indexGen:  c.indexGen,
		}
		c.moveToEnd(key)
		return
	}

	if len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	c.entries[key] = &cacheEntry{
		response:  response,
		timestamp: time.Now(),
		indexGen:  c.indexGen,
	}
	c.order = append(c.order, key)
}

// Invalidate drops all entries and advances the index generation.
func (c *QueryCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*cacheEntry)
	c.order = c.order[:0]
	c.indexGen++
}

// Size returns the number of cached entries.
func (c *QueryCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *QueryCache) evictOldest() {
	if len(c.order) == 0 {
		return
	}
	oldest := c.order[0]
	c.order = c.order[1:]
	delete(c.entries, oldest)
}

func (c *QueryCache) moveToEnd(key string) {
	c.removeFromOrder(key)
	c.order = append(c.order, key)
}

func (c *QueryCache) removeFromOrder(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}
