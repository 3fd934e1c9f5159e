package analyzer

import "unicode"

// Sentences splits text into sentence spans. A sentence ends at '.', '!' or
// '?' (optionally followed by closing quotes or brackets) when the next
// non-space rune starts a new sentence, and at paragraph breaks. Decimal
// points and common abbreviations do not terminate a sentence.
func Sentences(text string) []Span {
	var sentences []Span
	start := -1
	runes := []rune(text)
	offsets := runeOffsets(text, runes)

	flush := func(endIdx int) {
		if start < 0 {
			return
		}
		s, e := trimSpan(text, offsets[start], endIdx)
		if e > s {
			sentences = append(sentences, Span{Text: text[s:e], Start: s, End: e})
		}
		start = -1
	}

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if start < 0 && !unicode.IsSpace(r) {
			start = i
		}
		if start < 0 {
			continue
		}

		switch r {
		case '.', '!', '?':
			if r == '.' && isDecimalPoint(runes, i) {
				continue
			}
			if r == '.' && isAbbreviation(runes, i) {
				continue
			}
			j := i + 1
			for j < len(runes) && isClosingMark(runes[j]) {
				j++
			}
			if j >= len(runes) || sentenceFollows(runes, j) {
				end := len(text)
				if j < len(runes) {
					end = offsets[j]
				}
				flush(end)
				i = j - 1
			}
		case '\n':
			// Paragraph break always ends the sentence.
			if i+1 < len(runes) && followedByNewline(runes, i+1) {
				flush(offsets[i])
			}
		}
	}
	flush(len(text))
	return sentences
}

func runeOffsets(text string, runes []rune) []int {
	offsets := make([]int, len(runes))
	i := 0
	for pos := range text {
		if i < len(runes) {
			offsets[i] = pos
			i++
		}
	}
	return offsets
}

func isClosingMark(r rune) bool {
	switch r {
	case '"', '\'', ')', ']', '”', '’':
		return true
	}
	return false
}

func sentenceFollows(runes []rune, from int) bool {
	sawSpace := false
	for i := from; i < len(runes); i++ {
		r := runes[i]
		if unicode.IsSpace(r) {
			sawSpace = true
			continue
		}
		if !sawSpace {
			return false
		}
		return unicode.IsUpper(r) || unicode.IsDigit(r) || r == '"' || r == '“'
	}
	return true
}

func isDecimalPoint(runes []rune, i int) bool {
	return i > 0 && i+1 < len(runes) && unicode.IsDigit(runes[i-1]) && unicode.IsDigit(runes[i+1])
}

var abbreviations = map[string]struct{}{
	"mr": {}, "mrs": {}, "ms": {}, "dr": {}, "prof": {}, "sr": {}, "jr": {},
	"st": {}, "vs": {}, "etc": {}, "eg": {}, "ie": {}, "al": {}, "fig": {},
	"vol": {}, "no": {}, "pp": {}, "approx": {},
}

func isAbbreviation(runes []rune, dot int) bool {
	end := dot
	start := end
	for start > 0 && unicode.IsLetter(runes[start-1]) {
		start--
	}
	if start == end || end-start > 6 {
		return false
	}
	word := make([]rune, 0, end-start)
	for _, r := range runes[start:end] {
		word = append(word, unicode.ToLower(r))
	}
	_, ok := abbreviations[string(word)]
	return ok
}

func followedByNewline(runes []rune, from int) bool {
	for i := from; i < len(runes); i++ {
		switch runes[i] {
		case ' ', '\t', '\r':
			continue
		case '\n':
			return true
		default:
			return false
		}
	}
	return false
}
