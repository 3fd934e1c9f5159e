package chunker

import "ragcore/internal/adapter/analyzer"

// semanticWindow is the number of sentences on each side of a candidate
// boundary whose vocabulary is compared.
const semanticWindow = 3

// semanticBoundaryThreshold is the similarity below which a topic shift is
// assumed between consecutive sentence windows.
const semanticBoundaryThreshold = 0.12

// semanticSpans groups sentences at local topic boundaries: a drop in lexical
// similarity between the windows before and after a sentence signals a new
// chunk. When no clear boundaries exist the paragraph strategy is used
// instead.
func semanticSpans(text string, maxTokens int) []span {
	sentences := analyzer.Sentences(text)
	if len(sentences) < semanticWindow*2 {
		return paragraphSpans(text, maxTokens)
	}

	vocab := make([]map[string]struct{}, len(sentences))
	for i, s := range sentences {
		set := make(map[string]struct{})
		for _, w := range analyzer.ContentWords(s.Text) {
			set[w] = struct{}{}
		}
		vocab[i] = set
	}

	var boundaries []int // boundary before sentence i
	for i := semanticWindow; i <= len(sentences)-semanticWindow; i++ {
		before := unionVocab(vocab[i-semanticWindow : i])
		after := unionVocab(vocab[i : i+semanticWindow])
		if similarity(before, after) < semanticBoundaryThreshold {
			boundaries = append(boundaries, i)
		}
	}

	if len(boundaries) == 0 {
		return paragraphSpans(text, maxTokens)
	}

	// Build sentence groups between boundaries, then cap each group by the
	// token budget with the usual accumulation.
	var spans []span
	prev := 0
	for _, b := range append(boundaries, len(sentences)) {
		if b <= prev {
			continue
		}
		group := sentences[prev:b]
		spans = append(spans, accumulate(group, maxTokens)...)
		prev = b
	}
	return spans
}

func unionVocab(sets []map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{})
	for _, set := range sets {
		for w := range set {
			out[w] = struct{}{}
		}
	}
	return out
}

// similarity is the Jaccard coefficient between two vocabularies.
func similarity(a, b map[string]struct{}) float64 {
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
	return float64(inter) / float64(union)
}
