package chunker

import "ragcore/internal/adapter/analyzer"

// sentenceSpans accumulates whole sentences until adding the next one would
// exceed the token budget. Sentences are never split: one that exceeds the
// budget on its own is emitted as its own oversized chunk.
func sentenceSpans(text string, maxTokens int) []span {
	return accumulate(analyzer.Sentences(text), maxTokens)
}

// accumulate groups consecutive spans under a token budget. Shared by the
// sentence and paragraph strategies.
func accumulate(parts []analyzer.Span, maxTokens int) []span {
	if len(parts) == 0 {
		return nil
	}

	var spans []span
	current := span{start: -1}
	currentTokens := 0

	flush := func() {
		if current.start >= 0 {
			spans = append(spans, current)
		}
		current = span{start: -1}
		currentTokens = 0
	}

	for _, p := range parts {
		tokens := analyzer.CountTokens(p.Text)
		if current.start >= 0 && currentTokens+tokens > maxTokens {
			flush()
		}
		if current.start < 0 {
			current = span{start: p.Start, end: p.End}
			currentTokens = tokens
			// An oversized single part becomes its own chunk.
			if tokens > maxTokens {
				flush()
			}
			continue
		}
		current.end = p.End
		currentTokens += tokens
	}
	flush()
	return spans
}
