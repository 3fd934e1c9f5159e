package quality

import (
	"sort"

	"ragcore/internal/adapter/analyzer"
)

// coherenceFloor is the fixed score for degenerate single-sentence documents,
// where adjacent-overlap statistics would divide by zero.
const coherenceFloor = 50

// computeCoherence scores topic flow from two embedding-free signals:
// adjacent-sentence lexical overlap (Jaccard over content words) and the
// fraction of sentences that touch the document's dominant vocabulary.
func computeCoherence(text string) float64 {
	sentences := analyzer.Sentences(text)
	if len(sentences) < 2 {
		return coherenceFloor
	}

	sets := make([]map[string]struct{}, len(sentences))
	freq := make(map[string]int)
	for i, s := range sentences {
		set := make(map[string]struct{})
		for _, w := range analyzer.ContentWords(s.Text) {
			set[w] = struct{}{}
			freq[w]++
		}
		sets[i] = set
	}

	overlapSum := 0.0
	for i := 1; i < len(sets); i++ {
		overlapSum += jaccard(sets[i-1], sets[i])
	}
	adjacentOverlap := overlapSum / float64(len(sets)-1)

	topicHits := 0
	top := topVocabulary(freq, 10)
	for _, set := range sets {
		for w := range top {
			if _, ok := set[w]; ok {
				topicHits++
				break
			}
		}
	}
	topicConsistency := float64(topicHits) / float64(len(sets))

	return clamp(60*topicConsistency+250*adjacentOverlap, 0, 100)
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for w := range a {
		if _, ok := b[w]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// topVocabulary returns the n most frequent content words. Ties are broken
// lexicographically so the result is deterministic.
func topVocabulary(freq map[string]int, n int) map[string]struct{} {
	type wc struct {
		word  string
		count int
	}
	all := make([]wc, 0, len(freq))
	for w, c := range freq {
		all = append(all, wc{w, c})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].count != all[j].count {
			return all[i].count > all[j].count
		}
		return all[i].word < all[j].word
	})
	if len(all) > n {
		all = all[:n]
	}
	top := make(map[string]struct{}, len(all))
	for _, e := range all {
		top[e.word] = struct{}{}
	}
	return top
}
