package heuristics

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ppiankov/newsgate/internal/model"
)

var (
	positiveWords    = []string{"great", "excellent", "amazing", "wonderful", "success"}
	negativeWords    = []string{"terrible", "awful", "disaster", "crisis", "failure"}
	sensationalWords = []string{"shocking", "unbelievable", "incredible", "stunning"}

	absolutistMarkers = []string{"always", "never", "everyone knows", "obviously", "clearly", "definitely"}

	controversialPhrases = []string{"shocking", "unbelievable", "exclusive", "breaking", "you won't believe", "doctors hate"}
)

const (
	biasPerMarker = 15
	biasMax       = 80
)

// EmotionalTone classifies the tone of text. Sensational wording wins over
// everything else; otherwise the larger of positive and negative hits wins
// and ties are neutral.
func EmotionalTone(text string) model.EmotionalTone {
	lower := strings.ToLower(text)

	if countPresent(lower, sensationalWords) > 0 {
		return model.ToneSensational
	}

	pos := countPresent(lower, positiveWords)
	neg := countPresent(lower, negativeWords)
	switch {
	case pos > neg:
		return model.TonePositive
	case neg > pos:
		return model.ToneNegative
	default:
		return model.ToneNeutral
	}
}

// Bias estimates slant from absolutist language: min(80, 15 x markers)
func Bias(text string) int {
	hits := countPresent(strings.ToLower(text), absolutistMarkers)
	return min(biasMax, biasPerMarker*hits)
}

// Credibility is the complement of Bias
func Credibility(bias int) int {
	return 100 - bias
}

// IsControversial reports clickbait or sensational phrasing
func IsControversial(text string) bool {
	return countPresent(strings.ToLower(text), controversialPhrases) > 0
}

var numberPattern = regexp.MustCompile(`\d+`)

const implausibleNumber = 1_000_000

// FindInconsistencies returns human-readable descriptions of internal
// contradictions and implausible figures
func FindInconsistencies(text string) []string {
	var found []string
	lower := strings.ToLower(text)

	if strings.Contains(lower, "said") && strings.Contains(lower, "denied") {
		found = append(found, "Contradictory statements detected in the same article.")
	}

	for _, num := range numberPattern.FindAllString(text, -1) {
		n, err := strconv.ParseInt(num, 10, 64)
		if err != nil || n > implausibleNumber {
			// parse errors here mean the digit run overflowed int64
			found = append(found, "Unusually large numbers that may require verification.")
			break
		}
	}

	return found
}

// EventContext describes how much detail the article gives
func EventContext(text string) string {
	words := WordCount(text)
	switch {
	case words < 50:
		return "Limited context provided. Event details are sparse."
	case words < 150:
		return "Moderate context provided. Some event details available for verification."
	default:
		return "Comprehensive context provided. Sufficient detail for thorough event verification."
	}
}
