package normalizer

import (
	"strings"
	"unicode"
)

// LanguageUnknown is returned when detection confidence is too low to commit
// to a language. It never blocks ingestion.
const LanguageUnknown = "unknown"

// minimum fraction of words that must be marker words before a language is
// reported; below this the detector fails soft to "unknown".
const confidenceFloor = 0.12

const minDetectionWords = 5

// languageDetector is a frequency model over high-frequency marker words.
// Scores are the fraction of document words found in a language's marker set,
// which makes results deterministic and comparable across documents.
type languageDetector struct {
	markers map[string]map[string]struct{}
}

func newLanguageDetector() *languageDetector {
	markers := make(map[string]map[string]struct{}, len(markerWords))
	for lang, words := range markerWords {
		set := make(map[string]struct{}, len(words))
		for _, w := range words {
			set[w] = struct{}{}
		}
		markers[lang] = set
	}
	return &languageDetector{markers: markers}
}

// Detect returns the most likely language code and a confidence in [0,1].
func (d *languageDetector) Detect(text string) (string, float64) {
	words := lowercaseWords(text)
	if len(words) < minDetectionWords {
		return LanguageUnknown, 0
	}

	best := LanguageUnknown
	bestScore := 0.0
	for lang, set := range d.markers {
		hits := 0
		for _, w := range words {
			if _, ok := set[w]; ok {
				hits++
			}
		}
		score := float64(hits) / float64(len(words))
		if score > bestScore || (score == bestScore && best != LanguageUnknown && lang < best) {
			best = lang
			bestScore = score
		}
	}

	if bestScore < confidenceFloor {
		return LanguageUnknown, bestScore
	}
	return best, bestScore
}

func lowercaseWords(text string) []string {
	var words []string
	var current strings.Builder
	for _, r := range text {
		if unicode.IsLetter(r) {
			current.WriteRune(unicode.ToLower(r))
			continue
		}
		if current.Len() > 0 {
			words = append(words, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		words = append(words, current.String())
	}
	return words
}

// markerWords holds high-frequency function words per language. Fourteen
// languages cover the corpus this system ingests; anything else detects as
// "unknown".
var markerWords = map[string][]string{
	"en": {"the", "and", "of", "to", "in", "is", "that", "it", "was", "for", "with", "as", "are", "this", "not", "have", "from", "which"},
	"es": {"el", "la", "de", "que", "y", "en", "los", "del", "las", "por", "con", "una", "para", "como", "está", "pero", "sus", "este"},
	"fr": {"le", "la", "les", "de", "des", "et", "est", "dans", "que", "qui", "pour", "une", "sur", "avec", "pas", "sont", "cette", "aux"},
	"de": {"der", "die", "das", "und", "ist", "von", "den", "mit", "für", "auf", "nicht", "ein", "eine", "als", "auch", "sich", "werden", "dem"},
	"it": {"il", "la", "di", "che", "è", "e", "per", "del", "della", "con", "sono", "una", "gli", "le", "nel", "come", "più", "anche"},
	"pt": {"o", "a", "de", "que", "e", "do", "da", "em", "um", "para", "com", "não", "uma", "dos", "como", "mas", "são", "pelo"},
	"nl": {"de", "het", "een", "van", "en", "is", "dat", "op", "te", "zijn", "voor", "met", "niet", "aan", "ook", "als", "maar", "naar"},
	"sv": {"och", "att", "det", "som", "en", "på", "är", "av", "för", "med", "den", "till", "inte", "har", "de", "om", "ett", "men"},
	"da": {"og", "at", "det", "er", "en", "til", "af", "der", "på", "med", "den", "for", "ikke", "har", "som", "de", "et", "men"},
	"no": {"og", "det", "er", "en", "til", "av", "som", "på", "med", "den", "for", "ikke", "har", "de", "et", "om", "å", "ble"},
	"pl": {"i", "w", "na", "z", "do", "to", "się", "nie", "jest", "że", "o", "jak", "ale", "po", "co", "tak", "za", "od"},
	"tr": {"bir", "ve", "bu", "da", "de", "için", "ile", "olarak", "daha", "çok", "gibi", "en", "olan", "var", "ne", "sonra", "kadar", "ama"},
	"id": {"yang", "dan", "di", "dengan", "untuk", "ini", "dari", "dalam", "pada", "adalah", "itu", "tidak", "akan", "juga", "ke", "atau", "bisa", "telah"},
	"ru": {"и", "в", "не", "на", "что", "он", "как", "это", "по", "но", "из", "его", "она", "так", "же", "от", "для", "был"},
}
