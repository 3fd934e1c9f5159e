package quality

import (
	"reflect"
	"strings"
	"testing"

	"ragcore/internal/domain"
)

const sampleText = `Introduction to Databases

A database stores structured data for fast access. The database keeps data in
tables made of rows and columns. Each table holds one kind of record, and each
row in the table is one record.

Queries read data from the tables. A query names the table and the columns it
wants, and the database returns the matching rows. Good queries use indexes so
the database can find rows without scanning the whole table.

Indexes speed up queries at the cost of slower writes. An index is a sorted
copy of one or more columns. When data changes, the database must update the
table and every index on it, so each new index makes writes a little slower.`

func TestAssessDeterministic(t *testing.T) {
	a := NewAssessor()
	first := a.Assess(sampleText)
	second := a.Assess(sampleText)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("assess is not deterministic:\n%+v\n%+v", first, second)
	}
}

func TestAssessScoreBounds(t *testing.T) {
	a := NewAssessor()
	report := a.Assess(sampleText)

	if report.OverallScore < 0 || report.OverallScore > 100 {
		t.Errorf("overall score out of range: %f", report.OverallScore)
	}
	for name, score := range map[string]float64{
		"readability":  report.Components.Readability,
		"coherence":    report.Components.Coherence,
		"completeness": report.Components.Completeness,
		"formatting":   report.Components.Formatting,
	} {
		if score < 0 || score > 100 {
			t.Errorf("%s out of range: %f", name, score)
		}
	}
	if report.Tier != domain.TierFor(report.OverallScore) {
		t.Errorf("tier %q does not match score %f", report.Tier, report.OverallScore)
	}
}

func TestAssessCleanTextHasNoIssues(t *testing.T) {
	a := NewAssessor()
	report := a.Assess(sampleText)
	if len(report.Errors) != 0 {
		t.Errorf("unexpected issues: %+v", report.Errors)
	}
	if report.Components.Formatting != 100 {
		t.Errorf("expected formatting 100 for clean text, got %f", report.Components.Formatting)
	}
}

func TestAssessDetectsEncodingArtifacts(t *testing.T) {
	a := NewAssessor()
	report := a.Assess("Broken � text � with replacement characters everywhere in it.")

	found := false
	for _, issue := range report.Errors {
		if issue.Type == "encoding_artifact" && issue.Severity == domain.SeverityHigh {
			found = true
		}
	}
	if !found {
		t.Fatalf("encoding artifact not detected: %+v", report.Errors)
	}
	if report.Components.Formatting > 75 {
		t.Errorf("expected formatting penalty, got %f", report.Components.Formatting)
	}
}

func TestAssessDetectsRepeatedCharacters(t *testing.T) {
	a := NewAssessor()
	report := a.Assess("Heading!!!!!!! And then some ======== separator noise.")
	found := false
	for _, issue := range report.Errors {
		if issue.Type == "repeated_characters" {
			found = true
		}
	}
	if !found {
		t.Fatalf("repeated characters not detected: %+v", report.Errors)
	}
}

func TestAssessSingleSentenceCoherenceFloor(t *testing.T) {
	a := NewAssessor()
	report := a.Assess("Just one sentence here.")
	if report.Components.Coherence != coherenceFloor {
		t.Errorf("expected coherence floor %d, got %f", coherenceFloor, report.Components.Coherence)
	}
}

func TestAssessShortDocumentCompletenessCap(t *testing.T) {
	a := NewAssessor(WithMinWordCount(100))
	report := a.Assess("A short note. It has very few words. Nothing more to say.")
	if report.Components.Completeness > 30 {
		t.Errorf("short document completeness should be capped at 30, got %f", report.Components.Completeness)
	}
}

func TestAssessEmptyText(t *testing.T) {
	a := NewAssessor()
	report := a.Assess("")
	if report.OverallScore >= 50 {
		t.Errorf("empty text should score below the acceptable gate, got %f", report.OverallScore)
	}
	if report.Tier != domain.TierBelow {
		t.Errorf("expected below tier, got %q", report.Tier)
	}
}

func TestAssessRecommendations(t *testing.T) {
	a := NewAssessor()
	report := a.Assess("Short. Bad. Text.")

	if len(report.Recommendations) == 0 {
		t.Fatal("expected recommendations for weak text")
	}
	for _, rec := range report.Recommendations {
		if rec.Area == "" || rec.Priority == "" || rec.Suggestion == "" {
			t.Errorf("incomplete recommendation: %+v", rec)
		}
		if rec.Priority != "high" && rec.Priority != "medium" && rec.Priority != "low" {
			t.Errorf("unexpected priority %q", rec.Priority)
		}
	}
}

func TestAssessWeightsShiftComposite(t *testing.T) {
	all := NewAssessor()
	onlyFormatting := NewAssessor(WithWeights(Weights{Formatting: 1}))

	report := onlyFormatting.Assess(sampleText)
	if report.OverallScore != report.Components.Formatting {
		t.Errorf("formatting-only weights: overall %f != formatting %f",
			report.OverallScore, report.Components.Formatting)
	}

	base := all.Assess(sampleText)
	if base.OverallScore == 0 {
		t.Error("expected nonzero composite for sample text")
	}
}

func TestTierThresholds(t *testing.T) {
	cases := []struct {
		score float64
		want  domain.Tier
	}{
		{90, domain.TierPremium},
		{85, domain.TierPremium},
		{75, domain.TierRecommended},
		{70, domain.TierRecommended},
		{55, domain.TierAcceptable},
		{50, domain.TierAcceptable},
		{49.9, domain.TierBelow},
		{0, domain.TierBelow},
	}
	for _, tc := range cases {
		if got := domain.TierFor(tc.score); got != tc.want {
			t.Errorf("TierFor(%v) = %q, want %q", tc.score, got, tc.want)
		}
	}
}

func TestAssessMojibakeResidue(t *testing.T) {
	a := NewAssessor()
	text := strings.Repeat("The report said itâ€™s fine. ", 10)
	report := a.Assess(text)
	found := false
	for _, issue := range report.Errors {
		if issue.Type == "mojibake_residue" {
			found = true
		}
	}
	if !found {
		t.Fatalf("mojibake residue not detected: %+v", report.Errors)
	}
}
