// Package score builds the three Stage 2 compartments and the overall verdict.
// Every overall score is computed here from its sub-scores; nothing else
// constructs a compartment.
package score

import (
	"fmt"
	"math"

	"github.com/ppiankov/newsgate/internal/heuristics"
	"github.com/ppiankov/newsgate/internal/model"
)

// Compartment weights of the overall score
const (
	RelatabilityWeight    = 0.35
	LegitimacyWeight      = 0.50
	TrustworthinessWeight = 0.15
)

// Verdict thresholds
const (
	VerifiedThreshold    = 75
	SuspiciousThreshold  = 50
	NeedsReviewThreshold = 25
)

// Inputs is everything the aggregator reads for one article
type Inputs struct {
	Content   string
	SourceURL string

	// Outlets holds the cross-reference outcome per reference outlet. Outlets
	// missing from the slice count as not found.
	Outlets []model.OutletVerification

	// FeedMatches are wire feed items resembling the article
	FeedMatches []model.FeedMatch

	// Extra facts reported by the LLM, merged with the heuristic ones
	Locations []string
	Dates     []string
	RedFlags  []string

	Topics     []string
	Assessment string
}

// Aggregator combines the compartments into a NewsVerificationResult
type Aggregator struct{}

// NewAggregator creates a new aggregator
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Aggregate builds a fresh result from the inputs
func (a *Aggregator) Aggregate(in Inputs) model.NewsVerificationResult {
	relatability := NewRelatability(in.Content, in.FeedMatches, in.Locations, in.Dates, in.RedFlags)
	legitimacy := NewLegitimacy(in.Outlets, model.IsOutletURL(in.SourceURL))
	trustworthiness := NewTrustworthiness(in.Content, in.SourceURL, in.RedFlags)

	overall := Overall(relatability.OverallScore, legitimacy.OverallScore, trustworthiness.OverallScore)

	return model.NewsVerificationResult{
		Relatability:    relatability,
		Legitimacy:      legitimacy,
		Trustworthiness: trustworthiness,
		OverallScore:    overall,
		OverallVerdict:  VerdictFor(overall),
		Assessment:      in.Assessment,
		Topics:          in.Topics,
	}
}

// Overall is the weighted sum of the compartment scores, rounded
func Overall(relatability, legitimacy, trustworthiness int) int {
	return round(RelatabilityWeight*float64(relatability) +
		LegitimacyWeight*float64(legitimacy) +
		TrustworthinessWeight*float64(trustworthiness))
}

// VerdictFor maps an overall score to a verdict
func VerdictFor(score int) model.Verdict {
	switch {
	case score >= VerifiedThreshold:
		return model.VerdictVerified
	case score >= SuspiciousThreshold:
		return model.VerdictSuspicious
	case score >= NeedsReviewThreshold:
		return model.VerdictNeedsReview
	default:
		return model.VerdictFake
	}
}

// NewRelatability scores how much the article reads like a real, placeable
// event: the mean of the RSS, location, timestamp and event sub-scores
func NewRelatability(content string, feeds []model.FeedMatch, llmLocations, llmDates, redFlags []string) model.RelatabilityCheck {
	rss := heuristics.MatchRSSPattern(content)
	if feeds == nil {
		feeds = []model.FeedMatch{}
	}

	locations := heuristics.Merge(heuristics.ExtractLocations(content), llmLocations)
	dates := heuristics.Merge(heuristics.ExtractDates(content), llmDates)

	location := model.LocationCheck{
		Score:              heuristics.LocationScore(locations),
		ExtractedLocations: locations,
	}
	if len(locations) > 0 {
		location.Details = fmt.Sprintf("Located %d geographical references that appear consistent with known locations.", len(locations))
	} else {
		location.Details = "Limited geographical context found. Location verification challenging."
	}

	timestamp := model.TimestampCheck{
		Score:          heuristics.TimestampScore(dates),
		ExtractedDates: dates,
		Consistency:    len(dates) > 0,
	}
	if timestamp.Consistency {
		timestamp.Details = "Temporal references are consistent and plausible with current timeframe."
	} else {
		timestamp.Details = "Limited or inconsistent temporal context found."
	}

	event := model.EventCheck{
		Score:        70,
		Details:      "Event context appears plausible and consistent with known patterns.",
		EventContext: heuristics.EventContext(content),
		Plausibility: 75,
	}
	if heuristics.IsControversial(content) || len(redFlags) > 0 {
		event.Score = 45
		event.Details = "Event contains sensational claims that require additional verification."
		event.Plausibility = 45
	}

	return model.RelatabilityCheck{
		RSSVerification: model.RSSCheck{
			Found:         rss.Found,
			MatchCount:    rss.MatchCount,
			Score:         rss.Score,
			MatchingFeeds: feeds,
		},
		Location:     location,
		Timestamp:    timestamp,
		Event:        event,
		OverallScore: mean(rss.Score, location.Score, timestamp.Score, event.Score),
	}
}

// NewTrustworthiness scores the language and source of the article: the
// mean of (100 - bias), factual consistency and source credibility
func NewTrustworthiness(content, sourceURL string, redFlags []string) model.TrustworthinessCheck {
	bias := heuristics.Bias(content)

	inconsistencies := append(heuristics.FindInconsistencies(content), redFlags...)
	if inconsistencies == nil {
		inconsistencies = []string{}
	}
	factual := max(20, 85-15*len(inconsistencies))

	sourceScore, reputation := heuristics.SourceCredibility(sourceURL)

	return model.TrustworthinessCheck{
		LanguageAnalysis: model.LanguageAnalysis{
			Bias:             bias,
			EmotionalTone:    heuristics.EmotionalTone(content),
			CredibilityScore: heuristics.Credibility(bias),
		},
		FactualConsistency: model.FactualConsistency{
			Score:           factual,
			Inconsistencies: inconsistencies,
		},
		SourceCredibility: model.SourceCredibility{
			Score:      sourceScore,
			Reputation: reputation,
		},
		OverallScore: mean(100-bias, factual, sourceScore),
	}
}

func mean(scores ...int) int {
	sum := 0
	for _, s := range scores {
		sum += s
	}
	return round(float64(sum) / float64(len(scores)))
}

func round(f float64) int {
	return int(math.Round(f))
}
