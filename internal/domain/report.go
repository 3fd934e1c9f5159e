package domain

// Tier classifies a composite quality score.
type Tier string

const (
	TierPremium     Tier = "premium"     // >= 85
	TierRecommended Tier = "recommended" // >= 70
	TierAcceptable  Tier = "acceptable"  // >= 50
	TierBelow       Tier = "below"       // < 50
)

// TierFor maps a composite score to its tier using the fixed 85/70/50 thresholds.
func TierFor(score float64) Tier {
	switch {
	case score >= 85:
		return TierPremium
	case score >= 70:
		return TierRecommended
	case score >= 50:
		return TierAcceptable
	default:
		return TierBelow
	}
}

// Severity grades a detected content issue.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// QualityIssue is a single structural or formatting defect found in a document.
type QualityIssue struct {
	Type     string   `json:"type"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// Recommendation suggests how to improve a component that scored below the
// recommended threshold.
type Recommendation struct {
	Area       string `json:"area"`
	Priority   string `json:"priority"` // high, medium, low
	Suggestion string `json:"suggestion"`
}

// ComponentScores holds the four quality sub-scores, each in [0,100].
type ComponentScores struct {
	Readability  float64 `json:"readability"`
	Coherence    float64 `json:"coherence"`
	Completeness float64 `json:"completeness"`
	Formatting   float64 `json:"formatting"`
}

// QualityReport is the deterministic assessment of one document version.
// Identical normalized text always yields an identical report.
type QualityReport struct {
	OverallScore    float64          `json:"overall_score"` // 0-100
	Tier            Tier             `json:"tier"`
	Components      ComponentScores  `json:"components"`
	Errors          []QualityIssue   `json:"errors,omitempty"`
	Recommendations []Recommendation `json:"recommendations,omitempty"`
}

// IngestStatus is the per-document outcome of an ingestion call.
type IngestStatus string

const (
	StatusIngested IngestStatus = "ingested"
	StatusRejected IngestStatus = "rejected"
	StatusPartial  IngestStatus = "partial"
)

// IngestionReport is returned for every ingested document. Quality gating and
// partial chunk failures are reported here, never raised as errors.
type IngestionReport struct {
	DocumentID     string         `json:"document_id"`
	Status         IngestStatus   `json:"status"`
	Quality        *QualityReport `json:"quality,omitempty"`
	Language       string         `json:"language,omitempty"`
	ChunkCount     int            `json:"chunk_count"`
	IndexedCount   int            `json:"indexed_count"`
	FailedChunkIDs []string       `json:"failed_chunk_ids,omitempty"`
	Reason         string         `json:"reason,omitempty"`
}

// RetrievalResponse carries fully ordered results. Partial is set when one of
// the two search paths failed and retrieval proceeded degraded on the other.
type RetrievalResponse struct {
	Results  []SearchResult `json:"results"`
	Partial  bool           `json:"partial"`
	Reranked bool           `json:"reranked"`
}

// ServiceState reports the reachability of one external dependency.
type ServiceState string

const (
	StateOK            ServiceState = "ok"
	StateUnavailable   ServiceState = "unavailable"
	StateNotConfigured ServiceState = "not_configured"
)

// HealthReport summarizes the state of every external service the core talks to.
type HealthReport struct {
	EmbeddingService ServiceState `json:"embedding_service"`
	VectorStore      ServiceState `json:"vector_store"`
	KeywordIndex     ServiceState `json:"keyword_index"`
	RerankService    ServiceState `json:"rerank_service"`
}
