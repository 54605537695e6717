package model

// Decision is the terminal state of the Stage 1 pre-filter
type Decision string

const (
	DecisionPass  Decision = "PASS"
	DecisionBlock Decision = "BLOCK"
)

// Stage1Decision is produced once per submitted article and never mutated.
// Optional scores are pointers so that a BLOCK can report only what was
// computed before the blocking gate.
type Stage1Decision struct {
	Decision                 Decision    `json:"decision"`
	Reason                   string      `json:"reason"`
	DomainScore              *float64    `json:"domainScore,omitempty"`
	DomainStatus             TrustStatus `json:"domainStatus,omitempty"`
	DomainReason             string      `json:"domainReason,omitempty"`
	ContentScore             *float64    `json:"contentScore,omitempty"`
	OverallAuthenticityScore *float64    `json:"overallAuthenticityScore,omitempty"`
	WordCount                *int        `json:"wordCount,omitempty"`
	ReadyForStage2           bool        `json:"readyForStage2"`
	Assessment               *Assessment `json:"assessment,omitempty"`
}

// Passed reports whether the article may proceed to Stage 2
func (d *Stage1Decision) Passed() bool {
	return d != nil && d.Decision == DecisionPass && d.ReadyForStage2
}

// Assessment is the optional editorial read of an article returned by the
// LLM gateway alongside the Stage 1 decision. It never affects PASS/BLOCK.
type Assessment struct {
	IsViralWorthy bool    `json:"isViralWorthy"`
	Reason        string  `json:"reason"`
	Confidence    float64 `json:"confidence"`
	Category      string  `json:"category,omitempty"`
	Sentiment     string  `json:"sentiment,omitempty"`
	Fallback      bool    `json:"fallback,omitempty"` // LLM text could not be parsed
}

// FallbackAssessment is returned when the gateway answers with text that is
// not a JSON object
func FallbackAssessment() Assessment {
	return Assessment{
		IsViralWorthy: false,
		Reason:        "Analysis completed but response format was unexpected. Please try again.",
		Confidence:    0.5,
		Category:      "Other",
		Sentiment:     "Neutral",
		Fallback:      true,
	}
}
