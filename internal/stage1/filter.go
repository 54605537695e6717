// Package stage1 implements the cheap authenticity pre-filter that decides
// whether an article is worth a full Stage 2 verification.
package stage1

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/newsgate/internal/heuristics"
	"github.com/ppiankov/newsgate/internal/llm"
	"github.com/ppiankov/newsgate/internal/model"
	"github.com/ppiankov/newsgate/internal/trust"
)

const (
	domainWeight  = 0.6
	contentWeight = 0.4

	baseContentScore  = 0.5
	shoutingPenalty   = 0.2
	shortPenalty      = 0.3
	shoutingThreshold = 0.5

	minAuthenticity = 0.3
	minWords        = 20
	shortWords      = 50
	maxWords        = 10000
)

// Filter runs the three Stage 1 gates against the domain trust table
type Filter struct {
	table    *trust.Table
	assessor llm.Provider // optional
	assess   bool
}

// NewFilter creates a pre-filter. When assess is true a PASS is annotated
// with an editorial assessment: from the LLM when provider is non-nil,
// otherwise from a local heuristic.
func NewFilter(table *trust.Table, provider llm.Provider, assess bool) *Filter {
	if table == nil {
		table = trust.Default()
	}
	return &Filter{
		table:    table,
		assessor: provider,
		assess:   assess,
	}
}

// Evaluate applies the gates in order and returns on the first BLOCK. It is
// pure: the same input always yields the same decision.
func (f *Filter) Evaluate(content, sourceURL string) (*model.Stage1Decision, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("news content is required: %w", model.ErrValidation)
	}

	entry := model.UnknownDomain("")
	if strings.TrimSpace(sourceURL) != "" {
		entry = f.table.LookupURL(sourceURL)
	}

	words := heuristics.WordCount(content)
	headline := heuristics.FirstLine(content)
	contentScore := ContentScore(headline, words)
	auth := Authenticity(entry.TrustScore, contentScore)

	d := &model.Stage1Decision{
		DomainScore:              ptr(entry.TrustScore),
		DomainStatus:             entry.Status,
		DomainReason:             entry.Reason,
		ContentScore:             ptr(contentScore),
		OverallAuthenticityScore: ptr(auth),
		WordCount:                ptr(words),
	}

	// Gate 1: authenticity
	if auth < minAuthenticity {
		return block(d, fmt.Sprintf("Low authenticity score (%.2f). Domain: %s", auth, entry.Reason)), nil
	}

	// Gate 2: minimum length
	if words < minWords {
		return block(d, fmt.Sprintf("Insufficient word count (%d words, minimum %d)", words, minWords)), nil
	}

	// Gate 3: preprocessing
	switch {
	case words < shortWords:
		return block(d, fmt.Sprintf("Content too short for analysis (%d words, minimum %d)", words, shortWords)), nil
	case words > maxWords:
		return block(d, fmt.Sprintf("Content too long for analysis (%d words, maximum %d)", words, maxWords)), nil
	case headline == "":
		return block(d, "Missing headline: the first line of the content is empty"), nil
	}

	d.Decision = model.DecisionPass
	d.Reason = "Content passed authenticity and preprocessing checks"
	d.ReadyForStage2 = true
	return d, nil
}

// Run evaluates the content and, for a PASS with assessment enabled, attaches
// the editorial assessment. Assessment failures are returned as errors; the
// decision itself is never changed by the assessment.
func (f *Filter) Run(ctx context.Context, content, sourceURL string) (*model.Stage1Decision, error) {
	d, err := f.Evaluate(content, sourceURL)
	if err != nil || !d.Passed() || !f.assess {
		return d, err
	}

	headline := heuristics.FirstLine(content)
	if f.assessor == nil {
		a := HeuristicAssessment(headline, content)
		d.Assessment = &a
		return d, nil
	}

	a, err := llm.Assess(ctx, f.assessor, headline, content)
	if err != nil {
		return nil, fmt.Errorf("assessment: %w", err)
	}
	d.Assessment = &a
	return d, nil
}

// ContentScore starts at 0.5 and is penalised for a shouting headline and
// for short content, floored at 0
func ContentScore(headline string, words int) float64 {
	score := baseContentScore
	if heuristics.UppercaseRatio(headline) > shoutingThreshold {
		score -= shoutingPenalty
	}
	if words < shortWords {
		score -= shortPenalty
	}
	return max(0, score)
}

// Authenticity is 0.6 x domain trust + 0.4 x content score
func Authenticity(domainScore, contentScore float64) float64 {
	return domainWeight*domainScore + contentWeight*contentScore
}

func block(d *model.Stage1Decision, reason string) *model.Stage1Decision {
	d.Decision = model.DecisionBlock
	d.Reason = reason
	d.ReadyForStage2 = false
	return d
}

func ptr[T any](v T) *T {
	return &v
}
