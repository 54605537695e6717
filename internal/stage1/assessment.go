package stage1

import (
	"regexp"
	"strings"

	"github.com/ppiankov/newsgate/internal/model"
)

var (
	digitPattern     = regexp.MustCompile(`\d`)
	highImpactPhrase = regexp.MustCompile(`(?i)breaking|shocking|amazing|incredible|devastating`)
)

// HeuristicAssessment is the offline editorial read used when no LLM is
// configured. Length, figures, exclamation and high-impact wording each add
// to a base of 50; above 70 is considered viral-worthy.
func HeuristicAssessment(headline, content string) model.Assessment {
	score := 50
	if len(content) > 200 {
		score += 10
	}
	if digitPattern.MatchString(headline) || digitPattern.MatchString(content) {
		score += 15
	}
	if strings.Contains(headline, "!") {
		score += 10
	}
	highImpact := highImpactPhrase.MatchString(headline + " " + content)
	if highImpact {
		score += 20
	}

	a := model.Assessment{
		IsViralWorthy: score > 70,
		Confidence:    min(float64(score)/100, 0.95),
		Category:      "Other",
		Sentiment:     "Neutral",
	}
	if highImpact {
		a.Sentiment = "High Impact"
	}
	if a.IsViralWorthy {
		a.Reason = "This content shows strong indicators of viral potential based on emotional appeal and structure."
	} else {
		a.Reason = "This content may benefit from more engaging elements to increase viral potential."
	}
	return a
}
