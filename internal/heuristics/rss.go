package heuristics

import "strings"

// newsStructureKeywords are words typical of wire copy
var newsStructureKeywords = []string{
	"news", "report", "announced", "according", "sources", "officials",
	"government", "president", "minister", "statement", "says", "said",
	"world", "country", "national", "international", "breaking", "update",
}

const (
	rssMinWords   = 30
	rssMinMatches = 2
	rssBaseScore  = 50
	rssPerMatch   = 5
	rssMaxScore   = 90
	rssMissScore  = 30
)

// RSSPattern is the result of the news-structure keyword matcher
type RSSPattern struct {
	Found      bool
	MatchCount int
	WordCount  int
	Score      int
}

// MatchRSSPattern checks whether text reads like syndicated news copy.
// It needs at least 30 words and 2 distinct keywords.
func MatchRSSPattern(text string) RSSPattern {
	lower := strings.ToLower(text)
	matches := countPresent(lower, newsStructureKeywords)
	words := WordCount(text)

	found := words >= rssMinWords && matches >= rssMinMatches
	score := rssMissScore
	if found {
		score = min(rssMaxScore, rssBaseScore+rssPerMatch*matches)
	}

	return RSSPattern{
		Found:      found,
		MatchCount: matches,
		WordCount:  words,
		Score:      score,
	}
}
