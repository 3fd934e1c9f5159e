package chunker

import "ragcore/internal/adapter/analyzer"

// paragraphSpans accumulates whole paragraphs under the token budget. A
// paragraph that alone exceeds the budget falls back to sentence-level
// splitting internally.
func paragraphSpans(text string, maxTokens int) []span {
	paragraphs := analyzer.Paragraphs(text)
	if len(paragraphs) == 0 {
		return nil
	}

	// Expand oversized paragraphs into their sentences first, then run the
	// same accumulation as the sentence strategy.
	var parts []analyzer.Span
	for _, p := range paragraphs {
		if analyzer.CountTokens(p.Text) <= maxTokens {
			parts = append(parts, p)
			continue
		}
		for _, s := range analyzer.Sentences(p.Text) {
			parts = append(parts, analyzer.Span{
				Text:  s.Text,
				Start: p.Start + s.Start,
				End:   p.Start + s.End,
			})
		}
	}
	return accumulate(parts, maxTokens)
}
