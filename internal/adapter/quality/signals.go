package quality

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"ragcore/internal/adapter/analyzer"
	"ragcore/internal/domain"
)

// computeCompleteness scores structural coverage: document length and the
// density of headings/sections. Documents under minWords are capped at a low
// score regardless of structure.
func computeCompleteness(text string, minWords int) float64 {
	words := analyzer.CountWords(text)
	if words == 0 {
		return 0
	}

	lengthScore := clamp(float64(words)/600*60, 0, 60)

	paragraphs := analyzer.Paragraphs(text)
	structureScore := 0.0
	if len(paragraphs) >= 3 {
		structureScore += 20
	} else if len(paragraphs) == 2 {
		structureScore += 10
	}
	if headingCount(paragraphs) > 0 {
		structureScore += 20
	}

	score := clamp(lengthScore+structureScore, 0, 100)

	// Under-length documents cannot be complete whatever their structure.
	if words < minWords {
		capped := 30 * float64(words) / float64(minWords)
		if score > capped {
			score = capped
		}
	}
	return score
}

var markdownHeading = regexp.MustCompile(`(?m)^#{1,6}\s+\S`)

// headingCount counts paragraphs that read like headings: markdown hashes, or
// short lines without terminal punctuation.
func headingCount(paragraphs []analyzer.Span) int {
	n := 0
	for _, p := range paragraphs {
		if markdownHeading.MatchString(p.Text) {
			n++
			continue
		}
		if !strings.Contains(p.Text, "\n") && analyzer.CountWords(p.Text) <= 8 && !endsSentence(p.Text) {
			n++
		}
	}
	return n
}

func endsSentence(text string) bool {
	text = strings.TrimRight(text, " \t")
	if text == "" {
		return false
	}
	switch text[len(text)-1] {
	case '.', '!', '?', ':', ';':
		return true
	}
	return false
}

// Severity penalties subtracted from the formatting component per detection.
const (
	penaltyHigh   = 25
	penaltyMedium = 12
	penaltyLow    = 5
)

// repeatedRuns counts runs of 5 or more identical non-space characters.
func repeatedRuns(text string) int {
	runs := 0
	var prev rune
	length := 0
	for _, r := range text {
		if r == prev && !unicode.IsSpace(r) {
			length++
			if length == 5 {
				runs++
			}
		} else {
			length = 1
		}
		prev = r
	}
	return runs
}

// detectIssues scans for encoding artifacts, repeated-character noise, binary
// residue and broken sentence boundaries. Each finding carries a severity
// that is later applied as a penalty, never as a multiplier.
func detectIssues(text string) []domain.QualityIssue {
	var issues []domain.QualityIssue

	if n := strings.Count(text, "�"); n > 0 {
		issues = append(issues, domain.QualityIssue{
			Type:     "encoding_artifact",
			Severity: domain.SeverityHigh,
			Message:  fmt.Sprintf("%d unicode replacement characters found", n),
		})
	}

	if strings.Contains(text, "â€") || strings.Contains(text, "Ã") {
		issues = append(issues, domain.QualityIssue{
			Type:     "mojibake_residue",
			Severity: domain.SeverityMedium,
			Message:  "text still contains UTF-8/Latin-1 mojibake sequences",
		})
	}

	if runs := repeatedRuns(text); runs > 0 {
		sev := domain.SeverityLow
		if runs > 3 {
			sev = domain.SeverityMedium
		}
		issues = append(issues, domain.QualityIssue{
			Type:     "repeated_characters",
			Severity: sev,
			Message:  fmt.Sprintf("%d runs of 5+ repeated characters", runs),
		})
	}

	if n := controlCharCount(text); n > 0 {
		issues = append(issues, domain.QualityIssue{
			Type:     "binary_residue",
			Severity: domain.SeverityHigh,
			Message:  fmt.Sprintf("%d non-printable control characters found", n),
		})
	}

	if broken := brokenBoundaryRatio(text); broken > 0.4 {
		issues = append(issues, domain.QualityIssue{
			Type:     "broken_sentence_boundaries",
			Severity: domain.SeverityMedium,
			Message:  fmt.Sprintf("%.0f%% of paragraphs end mid-sentence", broken*100),
		})
	}

	return issues
}

func controlCharCount(text string) int {
	n := 0
	for _, r := range text {
		if r == '\n' || r == '\t' || r == '\r' {
			continue
		}
		if unicode.IsControl(r) {
			n++
		}
	}
	return n
}

// brokenBoundaryRatio is the fraction of long paragraphs that do not end with
// terminal punctuation, a signal of mid-sentence truncation in extraction.
func brokenBoundaryRatio(text string) float64 {
	paragraphs := analyzer.Paragraphs(text)
	long, broken := 0, 0
	for _, p := range paragraphs {
		if analyzer.CountWords(p.Text) < 20 {
			continue
		}
		long++
		if !endsSentence(strings.TrimRight(p.Text, `"')]`+"”’ ")) {
			broken++
		}
	}
	if long == 0 {
		return 0
	}
	return float64(broken) / float64(long)
}

// formattingScore converts detections into a 0-100 component score.
func formattingScore(issues []domain.QualityIssue) float64 {
	score := 100.0
	for _, issue := range issues {
		switch issue.Severity {
		case domain.SeverityHigh:
			score -= penaltyHigh
		case domain.SeverityMedium:
			score -= penaltyMedium
		default:
			score -= penaltyLow
		}
	}
	return clamp(score, 0, 100)
}
