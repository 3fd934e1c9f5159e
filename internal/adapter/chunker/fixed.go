package chunker

import "ragcore/internal/adapter/analyzer"

// fixedSpans windows the text by token count: each window holds up to MaxSize
// tokens and repeats Overlap tokens from the previous window. A tail shorter
// than MinSize merges into the previous chunk instead of standing alone.
func fixedSpans(text string, opts Options) []span {
	words := analyzer.Words(text)
	if len(words) == 0 {
		return nil
	}

	maxWords := wordBudget(opts.MaxSize)
	minWords := wordBudget(opts.MinSize)
	overlapWords := int(float64(opts.Overlap) / 1.3)
	step := maxWords - overlapWords
	if step < 1 {
		step = 1
	}

	var spans []span
	lastStart := 0
	for start := 0; start < len(words); start += step {
		end := start + maxWords
		if end > len(words) {
			end = len(words)
		}
		spans = append(spans, span{words[start].Start, words[end-1].End})
		lastStart = start
		if end == len(words) {
			break
		}
	}

	// Merge an under-size tail into the previous window.
	if len(spans) >= 2 {
		tailWords := len(words) - lastStart
		if tailWords < minWords {
			spans[len(spans)-2].end = spans[len(spans)-1].end
			spans = spans[:len(spans)-1]
		}
	}
	return spans
}
