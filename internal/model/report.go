package model

import "time"

// AnalysisReport is the combined output of one submission: the Stage 1
// decision and, when it passed, the Stage 2 result
type AnalysisReport struct {
	Content    string                  `json:"-"`
	SourceURL  string                  `json:"sourceUrl,omitempty"`
	AnalyzedAt time.Time               `json:"analyzedAt"`
	Stage1     *Stage1Decision         `json:"stage1"`
	Stage2     *NewsVerificationResult `json:"stage2,omitempty"`
}

// Verdict returns the final verdict, or "" when Stage 2 did not run
func (r *AnalysisReport) Verdict() Verdict {
	if r == nil || r.Stage2 == nil {
		return ""
	}
	return r.Stage2.OverallVerdict
}
