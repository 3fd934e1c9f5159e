package analyzer

import "strings"

// SyllableCount estimates the number of syllables in an English word by
// counting vowel groups, discounting a trailing silent 'e'. Always at least 1
// for a non-empty word.
func SyllableCount(word string) int {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return 0
	}

	count := 0
	prevVowel := false
	for _, r := range word {
		v := isVowel(r)
		if v && !prevVowel {
			count++
		}
		prevVowel = v
	}

	// Silent trailing 'e' ("make", "side"), but not "le" endings ("table").
	if strings.HasSuffix(word, "e") && !strings.HasSuffix(word, "le") && count > 1 {
		count--
	}

	if count < 1 {
		count = 1
	}
	return count
}

// ComplexWordCount returns the number of words with three or more syllables,
// the "complex word" input to the Gunning Fog index.
func ComplexWordCount(words []Span) int {
	n := 0
	for _, w := range words {
		if SyllableCount(w.Text) >= 3 {
			n++
		}
	}
	return n
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u', 'y':
		return true
	}
	return false
}
