package quality

import "ragcore/internal/adapter/analyzer"

// readability holds the standard indices computed from sentence/word/syllable
// statistics.
type readability struct {
	FleschEase   float64 // 0-100, higher is easier
	KincaidGrade float64 // US grade level
	GunningFog   float64 // years of education
}

// computeReadability derives the classic indices and maps them to a 0-100
// sub-score. Breakpoints for the Flesch Reading Ease term: >=70 easy, 50-69
// fairly difficult, <50 difficult. The Fog term treats 6 as ideal and runs
// out of credit at 18.5.
func computeReadability(text string) (float64, readability) {
	words := analyzer.Words(text)
	if len(words) == 0 {
		return 0, readability{}
	}

	sentences := analyzer.Sentences(text)
	sentenceCount := len(sentences)
	if sentenceCount == 0 {
		sentenceCount = 1
	}

	syllables := 0
	for _, w := range words {
		syllables += analyzer.SyllableCount(w.Text)
	}
	complexWords := analyzer.ComplexWordCount(words)

	wordsPerSentence := float64(len(words)) / float64(sentenceCount)
	syllablesPerWord := float64(syllables) / float64(len(words))

	r := readability{
		FleschEase:   206.835 - 1.015*wordsPerSentence - 84.6*syllablesPerWord,
		KincaidGrade: 0.39*wordsPerSentence + 11.8*syllablesPerWord - 15.59,
		GunningFog:   0.4 * (wordsPerSentence + 100*float64(complexWords)/float64(len(words))),
	}

	easeScore := clamp(r.FleschEase, 0, 100)
	fogScore := clamp(100-(r.GunningFog-6)*8, 0, 100)

	score := 0.6*easeScore + 0.4*fogScore
	return clamp(score, 0, 100), r
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
