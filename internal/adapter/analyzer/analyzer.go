// Package analyzer provides the text segmentation and statistics shared by
// the normalizer, the quality assessor and the chunkers: word and sentence
// boundaries with byte offsets, paragraph splitting, syllable estimation and
// approximate token counting.
package analyzer

import (
	"strings"
	"unicode"
)

// Span is a piece of text located by byte offsets into the source.
type Span struct {
	Text  string
	Start int
	End   int
}

// Words splits text into word spans using unicode letter/digit boundaries.
func Words(text string) []Span {
	var words []Span
	start := -1
	for i, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			words = append(words, Span{Text: text[start:i], Start: start, End: i})
			start = -1
		}
	}
	if start >= 0 {
		words = append(words, Span{Text: text[start:], Start: start, End: len(text)})
	}
	return words
}

// CountWords returns the number of words in text.
func CountWords(text string) int {
	return len(Words(text))
}

// CountTokens returns an approximate LLM token count. Average word is about
// 1.3 tokens; used for chunk sizing, not billing.
func CountTokens(text string) int {
	n := CountWords(text)
	if n == 0 {
		return 0
	}
	return int(float64(n) * 1.3)
}

// ContentWords returns lowercased words with stopwords and single characters
// removed. Used for lexical-overlap scoring.
func ContentWords(text string) []string {
	words := Words(text)
	out := make([]string, 0, len(words))
	for _, w := range words {
		lw := strings.ToLower(w.Text)
		if len(lw) < 2 {
			continue
		}
		if _, stop := englishStopwords[lw]; stop {
			continue
		}
		out = append(out, lw)
	}
	return out
}

// Paragraphs splits text on blank lines, keeping byte offsets. Whitespace-only
// blocks are dropped.
func Paragraphs(text string) []Span {
	var paras []Span
	start := 0
	for start < len(text) {
		end := indexBlankLine(text, start)
		if end < 0 {
			end = len(text)
		}
		block := text[start:end]
		if strings.TrimSpace(block) != "" {
			s, e := trimSpan(text, start, end)
			paras = append(paras, Span{Text: text[s:e], Start: s, End: e})
		}
		start = skipBlankLines(text, end)
	}
	return paras
}

func indexBlankLine(text string, from int) int {
	i := from
	for {
		j := strings.Index(text[i:], "\n")
		if j < 0 {
			return -1
		}
		i += j
		// A newline followed by optional spaces and another newline ends the block.
		k := i + 1
		for k < len(text) && (text[k] == ' ' || text[k] == '\t' || text[k] == '\r') {
			k++
		}
		if k < len(text) && text[k] == '\n' {
			return i
		}
		i++
	}
}

func skipBlankLines(text string, from int) int {
	i := from
	for i < len(text) {
		c := text[i]
		if c != '\n' && c != '\r' && c != ' ' && c != '\t' {
			break
		}
		i++
	}
	return i
}

func trimSpan(text string, start, end int) (int, int) {
	for start < end {
		r := text[start]
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			break
		}
		start++
	}
	for end > start {
		r := text[end-1]
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			break
		}
		end--
	}
	return start, end
}
