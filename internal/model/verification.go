package model

// Verdict is the overall classification of a verified article
type Verdict string

const (
	VerdictVerified    Verdict = "VERIFIED"
	VerdictSuspicious  Verdict = "SUSPICIOUS"
	VerdictNeedsReview Verdict = "NEEDS_REVIEW"
	VerdictFake        Verdict = "FAKE"
)

// EmotionalTone is the result of the tone classifier
type EmotionalTone string

const (
	ToneNeutral     EmotionalTone = "neutral"
	TonePositive    EmotionalTone = "positive"
	ToneNegative    EmotionalTone = "negative"
	ToneSensational EmotionalTone = "sensational"
)

// NewsVerificationResult is the Stage 2 output. It is built exactly once per
// analysis request by score.Aggregator and is read-only afterwards.
type NewsVerificationResult struct {
	Relatability    RelatabilityCheck    `json:"relatability"`
	Legitimacy      LegitimacyCheck      `json:"legitimacy"`
	Trustworthiness TrustworthinessCheck `json:"trustworthiness"`
	OverallScore    int                  `json:"overallScore"` // 0-100
	OverallVerdict  Verdict              `json:"overallVerdict"`
	Assessment      string               `json:"overallAssessment,omitempty"`
	Topics          []string             `json:"topics,omitempty"`
}

// RelatabilityCheck is compartment 1
type RelatabilityCheck struct {
	RSSVerification RSSCheck       `json:"rssVerification"`
	Location        LocationCheck  `json:"location"`
	Timestamp       TimestampCheck `json:"timestamp"`
	Event           EventCheck     `json:"event"`
	OverallScore    int            `json:"overallScore"`
}

// RSSCheck reports the news-structure keyword match and any wire feed items
// that look like the same story
type RSSCheck struct {
	Found         bool        `json:"found"`
	MatchCount    int         `json:"matchCount"`
	Score         int         `json:"score"`
	MatchingFeeds []FeedMatch `json:"matchingFeeds"`
}

// FeedMatch is a wire feed item that shares keywords with the article
type FeedMatch struct {
	Source      string `json:"source"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	PublishDate string `json:"publishDate,omitempty"`
	Similarity  int    `json:"similarity"`
}

// LocationCheck is the location sub-check
type LocationCheck struct {
	Score              int      `json:"score"`
	Details            string   `json:"details"`
	ExtractedLocations []string `json:"extractedLocations"`
}

// TimestampCheck is the temporal sub-check
type TimestampCheck struct {
	Score          int      `json:"score"`
	Details        string   `json:"details"`
	ExtractedDates []string `json:"extractedDates"`
	Consistency    bool     `json:"consistency"`
}

// EventCheck is the event plausibility sub-check
type EventCheck struct {
	Score        int    `json:"score"`
	Details      string `json:"details"`
	EventContext string `json:"eventContext"`
	Plausibility int    `json:"plausibility"`
}

// LegitimacyCheck is compartment 2
type LegitimacyCheck struct {
	BBC            OutletVerification `json:"bbcVerification"`
	CNN            OutletVerification `json:"cnnVerification"`
	ABC            OutletVerification `json:"abcVerification"`
	Guardian       OutletVerification `json:"guardianVerification"`
	CrossReference CrossReference     `json:"crossReference"`
	OverallScore   int                `json:"overallScore"`
}

// Outlets returns the four outlet verifications in reference order
func (l LegitimacyCheck) Outlets() []OutletVerification {
	return []OutletVerification{l.BBC, l.CNN, l.ABC, l.Guardian}
}

// OutletVerification is what the search collaborator found for one outlet
type OutletVerification struct {
	Outlet           Outlet          `json:"outlet"`
	Found            bool            `json:"found"`
	Similarity       int             `json:"similarity"`
	MatchingArticles []MatchedSource `json:"matchingArticles"`
}

// MatchedSource is an outlet article the LLM judged to be the same story
type MatchedSource struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	PublishDate string `json:"publishDate,omitempty"`
	Similarity  int    `json:"similarity"`
	Excerpt     string `json:"excerpt,omitempty"`
}

// CrossReference is the tiered corroboration score
type CrossReference struct {
	Score   int    `json:"score"`
	Details string `json:"details"`
}

// TrustworthinessCheck is compartment 3
type TrustworthinessCheck struct {
	LanguageAnalysis   LanguageAnalysis   `json:"languageAnalysis"`
	FactualConsistency FactualConsistency `json:"factualConsistency"`
	SourceCredibility  SourceCredibility  `json:"sourceCredibility"`
	OverallScore       int                `json:"overallScore"`
}

// LanguageAnalysis holds the bias estimate and tone
type LanguageAnalysis struct {
	Bias             int           `json:"bias"`
	EmotionalTone    EmotionalTone `json:"emotionalTone"`
	CredibilityScore int           `json:"credibilityScore"`
}

// FactualConsistency holds detected inconsistencies
type FactualConsistency struct {
	Score           int      `json:"score"`
	Inconsistencies []string `json:"inconsistencies"`
}

// SourceCredibility is the source-domain reputation
type SourceCredibility struct {
	Score      int    `json:"score"`
	Reputation string `json:"reputation"`
}
