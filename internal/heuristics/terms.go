package heuristics

import (
	"regexp"
	"strings"
)

// SearchTerms are the queries derived from article text for the news-search
// collaborator
type SearchTerms struct {
	Headline   string
	Keywords   string
	Entities   string
	BroadQuery string
}

var properNounPattern = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+){0,2}\b`)

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
	"with": true, "by": true, "from": true, "as": true, "is": true, "was": true,
	"are": true, "were": true, "been": true, "be": true, "have": true, "has": true,
	"had": true, "that": true, "this": true, "it": true, "their": true, "said": true,
	"would": true, "could": true, "should": true, "will": true, "can": true,
	"may": true, "might": true, "must": true, "shall": true,
}

const (
	headlineMaxLen = 100
	maxEntities    = 5
	maxKeywords    = 5
	broadTerms     = 3
)

// ExtractSearchTerms builds search queries from article text: the headline,
// up to five distinct capitalised phrases, and up to five longer keywords
func ExtractSearchTerms(text string) SearchTerms {
	headline := FirstLine(text)
	headline = strings.TrimSpace(strings.Trim(headline, `'"`))
	if r := []rune(headline); len(r) > headlineMaxLen {
		headline = strings.TrimSpace(string(r[:headlineMaxLen]))
	}

	var entities []string
	seen := make(map[string]bool)
	for _, noun := range properNounPattern.FindAllString(text, -1) {
		if seen[noun] {
			continue
		}
		seen[noun] = true
		entities = append(entities, noun)
		if len(entities) == maxEntities {
			break
		}
	}

	var meaningful []string
	for _, w := range strings.Fields(strings.ToLower(text)) {
		if len(w) > 4 && !stopWords[w] {
			meaningful = append(meaningful, w)
		}
	}

	return SearchTerms{
		Headline:   headline,
		Keywords:   strings.Join(meaningful[:min(maxKeywords, len(meaningful))], " "),
		Entities:   strings.Join(entities, " "),
		BroadQuery: strings.Join(meaningful[:min(broadTerms, len(meaningful))], " OR "),
	}
}

// Queries returns the search queries to try in order: entities when they
// are specific enough, then keywords. Queries of three characters or fewer
// are dropped.
func (s SearchTerms) Queries() []string {
	var queries []string
	if len(s.Entities) > 10 {
		queries = append(queries, s.Entities)
	}
	queries = append(queries, s.Keywords)

	out := queries[:0]
	for _, q := range queries {
		if len(q) > 3 {
			out = append(out, q)
		}
	}
	return out
}

// Tokens lower-cases text and splits it into words of at least four letters
// with punctuation trimmed. Used for keyword-overlap similarity.
func Tokens(text string) map[string]bool {
	tokens := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, `.,;:!?"'()[]{}`)
		if len(w) >= 4 && !stopWords[w] {
			tokens[w] = true
		}
	}
	return tokens
}

// Overlap returns the percentage (0-100) of b's tokens that also occur in a
func Overlap(a, b map[string]bool) int {
	if len(b) == 0 {
		return 0
	}
	shared := 0
	for w := range b {
		if a[w] {
			shared++
		}
	}
	return shared * 100 / len(b)
}
