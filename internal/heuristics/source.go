package heuristics

import "strings"

var (
	credibleDomains   = []string{"bbc.com", "cnn.com", "reuters.com", "ap.org", "npr.org", "abcnews.go.com", "theguardian.com"}
	distrustedDomains = []string{"fake-news.com", "clickbait.net", "unverified.info"}
)

const (
	credibleSourceScore   = 90
	distrustedSourceScore = 10
	neutralSourceScore    = 50
)

// SourceCredibility scores the source URL by domain substring and returns a
// reputation sentence for display
func SourceCredibility(sourceURL string) (int, string) {
	if strings.TrimSpace(sourceURL) == "" {
		return neutralSourceScore, "Source URL not provided. Credibility assessment limited."
	}

	lower := strings.ToLower(sourceURL)
	for _, d := range credibleDomains {
		if strings.Contains(lower, d) {
			return credibleSourceScore, "Source is from a well-established, reputable news organization with strong editorial standards."
		}
	}
	for _, d := range distrustedDomains {
		if strings.Contains(lower, d) {
			return distrustedSourceScore, "Source domain is known for publishing unreliable or fabricated content."
		}
	}
	return neutralSourceScore, "Source credibility requires further investigation. Domain not recognized as major news outlet."
}
