// Package quality scores normalized text on readability, coherence,
// completeness and formatting signals, producing a composite 0-100 score with
// tier, detected issues and improvement recommendations. Scoring is pure: the
// same text always yields a byte-identical report.
package quality

import (
	"fmt"

	"ragcore/internal/domain"
)

// Weights control how the four component scores combine into the composite.
type Weights struct {
	Readability  float64 `yaml:"readability"`
	Coherence    float64 `yaml:"coherence"`
	Completeness float64 `yaml:"completeness"`
	Formatting   float64 `yaml:"formatting"`
}

// DefaultWeights favor readability and coherence slightly, the long-form
// defaults. Treat them as tunable, not normative.
func DefaultWeights() Weights {
	return Weights{Readability: 0.3, Coherence: 0.3, Completeness: 0.2, Formatting: 0.2}
}

// Assessor computes QualityReports.
type Assessor struct {
	weights      Weights
	minWordCount int
	recommended  float64
}

// Option configures an Assessor.
type Option func(*Assessor)

// WithWeights overrides the component weights.
func WithWeights(w Weights) Option {
	return func(a *Assessor) { a.weights = w }
}

// WithMinWordCount sets the completeness word-count floor.
func WithMinWordCount(n int) Option {
	return func(a *Assessor) { a.minWordCount = n }
}

// WithRecommendedThreshold sets the score below which a component earns a
// recommendation.
func WithRecommendedThreshold(t float64) Option {
	return func(a *Assessor) { a.recommended = t }
}

// NewAssessor creates an Assessor with the given options.
func NewAssessor(opts ...Option) *Assessor {
	a := &Assessor{
		weights:      DefaultWeights(),
		minWordCount: 100,
		recommended:  70,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assess scores normalized text. No randomness, no external calls.
func (a *Assessor) Assess(text string) domain.QualityReport {
	readabilityScore, _ := computeReadability(text)
	coherenceScore := computeCoherence(text)
	completenessScore := computeCompleteness(text, a.minWordCount)
	issues := detectIssues(text)
	formatting := formattingScore(issues)

	components := domain.ComponentScores{
		Readability:  round1(readabilityScore),
		Coherence:    round1(coherenceScore),
		Completeness: round1(completenessScore),
		Formatting:   round1(formatting),
	}

	totalWeight := a.weights.Readability + a.weights.Coherence + a.weights.Completeness + a.weights.Formatting
	if totalWeight <= 0 {
		totalWeight = 1
	}
	overall := (components.Readability*a.weights.Readability +
		components.Coherence*a.weights.Coherence +
		components.Completeness*a.weights.Completeness +
		components.Formatting*a.weights.Formatting) / totalWeight
	overall = round1(clamp(overall, 0, 100))

	return domain.QualityReport{
		OverallScore:    overall,
		Tier:            domain.TierFor(overall),
		Components:      components,
		Errors:          issues,
		Recommendations: a.recommend(components),
	}
}

// recommend emits one entry per component below the recommended threshold,
// with priority derived from how far below it falls. Fixed component order
// keeps reports deterministic.
func (a *Assessor) recommend(c domain.ComponentScores) []domain.Recommendation {
	type component struct {
		area       string
		score      float64
		suggestion string
	}
	ordered := []component{
		{"readability", c.Readability, "shorten sentences and prefer simpler vocabulary"},
		{"coherence", c.Coherence, "keep adjacent sentences on a shared topic and add transitions"},
		{"completeness", c.Completeness, "expand the document and add headings to cover the topic fully"},
		{"formatting", c.Formatting, "fix encoding artifacts and broken sentence boundaries"},
	}

	var recs []domain.Recommendation
	for _, comp := range ordered {
		if comp.score >= a.recommended {
			continue
		}
		delta := a.recommended - comp.score
		priority := "low"
		switch {
		case delta >= 30:
			priority = "high"
		case delta >= 15:
			priority = "medium"
		}
		recs = append(recs, domain.Recommendation{
			Area:       comp.area,
			Priority:   priority,
			Suggestion: fmt.Sprintf("%s (component at %.1f, target %.0f)", comp.suggestion, comp.score, a.recommended),
		})
	}
	return recs
}

func round1(v float64) float64 {
	if v >= 0 {
		return float64(int(v*10+0.5)) / 10
	}
	return float64(int(v*10-0.5)) / 10
}
