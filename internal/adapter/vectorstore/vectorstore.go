// Package vectorstore provides VectorStore implementations: a Qdrant REST
// adapter for production, a bbolt-backed local store, and an in-memory store
// for tests.
package vectorstore

import (
	"math"
	"sort"

	"ragcore/internal/domain"
)

// Distance metric names accepted by EnsureCollection.
const (
	DistanceCosine    = "cosine"
	DistanceDot       = "dot"
	DistanceEuclidean = "euclidean"
)

// score computes the similarity between two equal-length vectors under the
// named metric. Higher is always better: euclidean distance is negated.
func score(metric string, a, b []float32) float64 {
	switch metric {
	case DistanceDot:
		return dot(a, b)
	case DistanceEuclidean:
		return -euclidean(a, b)
	default:
		return cosine(a, b)
	}
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func euclidean(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

func cosine(a, b []float32) float64 {
	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// rankLocal scores every candidate entry against the query vector, applies
// the filter, and returns the topK best. Shared by the bolt and memory
// stores, which both search brute-force.
func rankLocal(metric string, query []float32, entries []domain.IndexedEntry, filter domain.Filter, topK int) []domain.SearchResult {
	results := make([]domain.SearchResult, 0, len(entries))
	for _, e := range entries {
		if len(e.Vector) != len(query) {
			continue
		}
		if !filter.Matches(e.Payload) {
			continue
		}
		results = append(results, domain.SearchResult{
			ChunkID: e.ChunkID,
			Text:    e.Payload.Text,
			Score:   score(metric, query, e.Vector),
			Source:  domain.SourceVector,
			Payload: e.Payload,
		})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ChunkID < results[j].ChunkID
	})
	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results
}
