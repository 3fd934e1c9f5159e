// Package normalizer cleans raw extracted text before assessment and
// chunking: markup stripping with paragraph preservation, Unicode and
// whitespace normalization, mojibake repair and language detection.
package normalizer

import (
	"html"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Result is the outcome of normalization. Language is "unknown" rather than
// an error when detection confidence is low; downstream stages are never
// blocked by it.
type Result struct {
	Text       string
	Language   string
	Confidence float64
}

// Normalizer cleans raw document text.
type Normalizer struct {
	detector *languageDetector
}

// New creates a Normalizer.
func New() *Normalizer {
	return &Normalizer{detector: newLanguageDetector()}
}

// Normalize cleans raw text and detects its language. mimeHint is an optional
// declared MIME type; markup is stripped when the hint or the content itself
// looks like HTML/XML.
func (n *Normalizer) Normalize(raw, mimeHint string) Result {
	text := raw

	if looksLikeMarkup(text, mimeHint) {
		text = StripMarkup(text)
	}

	text = norm.NFC.String(text)
	text = repairMojibake(text)
	text = normalizeWhitespace(text)

	lang, conf := n.detector.Detect(text)
	return Result{Text: text, Language: lang, Confidence: conf}
}

// Pre-compiled expressions for markup stripping.
var (
	scriptTag     = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTag      = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	headTag       = regexp.MustCompile(`(?is)<head[^>]*>.*?</head>`)
	htmlComments  = regexp.MustCompile(`(?s)<!--.*?-->`)
	blockElements = regexp.MustCompile(`(?i)</(p|div|h[1-6]|li|tr|blockquote|pre|table|section|article)>`)
	brTags        = regexp.MustCompile(`(?i)<br\s*/?>`)
	allTags       = regexp.MustCompile(`<[^>]+>`)
	tagOpening    = regexp.MustCompile(`(?s)<[a-zA-Z!/][^>]*>`)
)

func looksLikeMarkup(text, mimeHint string) bool {
	hint := strings.ToLower(mimeHint)
	if strings.Contains(hint, "html") || strings.Contains(hint, "xml") {
		return true
	}
	return tagOpening.MatchString(text)
}

// StripMarkup removes HTML/XML tags while preserving paragraph breaks: block
// element closers and <br> become newlines, everything else is dropped, and
// entities are unescaped.
func StripMarkup(text string) string {
	text = scriptTag.ReplaceAllString(text, "")
	text = styleTag.ReplaceAllString(text, "")
	text = headTag.ReplaceAllString(text, "")
	text = htmlComments.ReplaceAllString(text, "")
	text = blockElements.ReplaceAllString(text, "\n\n")
	text = brTags.ReplaceAllString(text, "\n")
	text = allTags.ReplaceAllString(text, " ")
	return html.UnescapeString(text)
}

// mojibakeReplacer fixes the common UTF-8-read-as-Latin-1 sequences. Longer
// patterns are listed before their prefixes so they win.
var mojibakeReplacer = strings.NewReplacer(
	"â€™", "’", // right single quote
	"â€˜", "‘", // left single quote
	"â€œ", "“", // left double quote
	"â€“", "–", // en dash
	"â€”", "—", // em dash
	"â€¦", "…", // ellipsis
	"â€", "”", // right double quote
	"â€", "”",
	"Ã©", "é", // é
	"Ã¨", "è", // è
	"Ãª", "ê", // ê
	"Ã¡", "á", // á
	"Ã ", "à", // à
	"Ã­", "í", // í
	"Ã³", "ó", // ó
	"Ãº", "ú", // ú
	"Ã±", "ñ", // ñ
	"Ã¤", "ä", // ä
	"Ã¶", "ö", // ö
	"Ã¼", "ü", // ü
	"ÃŸ", "ß", // ß
	"Ã§", "ç", // ç
	"Â«", "«", // «
	"Â»", "»", // »
	"Â°", "°", // °
	"Â ", " ",
)

func repairMojibake(text string) string {
	return mojibakeReplacer.Replace(text)
}

var (
	spaceRuns   = regexp.MustCompile(`[ \t]+`)
	lineTrailer = regexp.MustCompile(`[ \t]+\n`)
	blankRuns   = regexp.MustCompile(`\n{3,}`)
)

func normalizeWhitespace(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.ReplaceAll(text, " ", " ")
	text = strings.ReplaceAll(text, "​", "")
	text = spaceRuns.ReplaceAllString(text, " ")
	text = lineTrailer.ReplaceAllString(text, "\n")
	text = blankRuns.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
