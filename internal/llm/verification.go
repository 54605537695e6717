package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/newsgate/internal/model"
)

// OutletFinding is the model's judgement for one reference outlet
type OutletFinding struct {
	Verified   bool
	Similarity int
	Articles   []model.MatchedSource
}

// Verification is the decoded cross-reference record. Missing or malformed
// fields hold zero values.
type Verification struct {
	Outlets               map[model.Outlet]OutletFinding
	LegitimacyScore       int
	Topics                []string
	Locations             []string
	Dates                 []string
	CredibilityIndicators []string
	RedFlags              []string
	OverallAssessment     string
}

// Finding returns the judgement for an outlet, not-found when absent
func (v *Verification) Finding(o model.Outlet) OutletFinding {
	if v == nil {
		return OutletFinding{}
	}
	return v.Outlets[o]
}

const verificationRules = `**CRITICAL VERIFICATION RULES - FOLLOW EXACTLY:**

STEP 1: Check if articles were found
- If 0 articles found from a source -> verified=FALSE, similarity=0
- If 1+ articles found -> Continue to STEP 2

STEP 2: Check for topical match (DO NOT require exact wording)
Check if user's content and found articles share ANY of these:
- Same main subject/person
- Same location
- Same type of event (e.g., peace talks, protests, election)
- Same timeframe

If YES to ANY of the above -> verified=TRUE with similarity 60-95 (higher if more overlap)
If NO to ALL -> verified=FALSE

News outlets report the SAME STORY with different headlines and wording. Focus on WHAT the story is about, NOT how it's written.

Respond in JSON format only:
{
  "bbcVerified": boolean, "bbcSimilarity": number (0-100), "bbcArticles": [{"title": string, "similarity": number, "url": string}],
  "cnnVerified": boolean, "cnnSimilarity": number (0-100), "cnnArticles": [{"title": string, "similarity": number, "url": string}],
  "abcVerified": boolean, "abcSimilarity": number (0-100), "abcArticles": [{"title": string, "similarity": number, "url": string}],
  "guardianVerified": boolean, "guardianSimilarity": number (0-100), "guardianArticles": [{"title": string, "similarity": number, "url": string}],
  "legitimacyScore": number (0-100, higher if content matches real articles),
  "topics": string[],
  "locations": string[],
  "dates": string[],
  "credibilityIndicators": string[],
  "redFlags": string[],
  "overallAssessment": string
}`

// BuildVerificationPrompt lays out the user's article, the per-outlet hit
// counts and every retrieved article for the cross-reference judgement
func BuildVerificationPrompt(content, sourceURL string, results []model.OutletResult) string {
	var b strings.Builder

	total := 0
	for _, r := range results {
		total += len(r.Articles)
	}

	b.WriteString("You are a news verification assistant. Compare the user's news content against real articles from BBC, CNN, ABC News, and The Guardian retrieved from a news search API.\n\n")
	fmt.Fprintf(&b, "User's News Content:\n%s\n\n", content)
	if sourceURL != "" {
		fmt.Fprintf(&b, "User's Source URL: %s\n\n", sourceURL)
	}

	fmt.Fprintf(&b, "Found Articles (%d total):\n", total)
	for _, r := range results {
		fmt.Fprintf(&b, "- %s Articles Found: %d\n", r.Outlet.Name(), len(r.Articles))
	}
	b.WriteString("\n")

	if total == 0 {
		b.WriteString("No matching articles found.\n")
	} else {
		n := 0
		for _, r := range results {
			for _, a := range r.Articles {
				n++
				if n > 1 {
					b.WriteString("\n---\n")
				}
				fmt.Fprintf(&b, "Article %d [%s]:\nTitle: %s\nDescription: %s\nContent: %s\nPublished: %s\nURL: %s\n",
					n, orNA(a.Source), a.Title, orNA(a.Description), orNA(a.Content), a.PublishedAt, a.URL)
			}
		}
	}

	b.WriteString("\n")
	b.WriteString(verificationRules)
	return b.String()
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

// ParseVerification decodes the model's cross-reference record. Only text
// with no JSON object in it is an error.
func ParseVerification(text string) (*Verification, error) {
	r, err := parseRecord(text)
	if err != nil {
		return nil, fmt.Errorf("invalid JSON response from LLM: %w", err)
	}

	v := &Verification{
		Outlets:               make(map[model.Outlet]OutletFinding, len(model.ReferenceOutlets)),
		LegitimacyScore:       r.percent("legitimacyScore"),
		Topics:                r.list("topics"),
		Locations:             r.list("locations"),
		Dates:                 r.list("dates"),
		CredibilityIndicators: r.list("credibilityIndicators"),
		RedFlags:              r.list("redFlags"),
		OverallAssessment:     r.text("overallAssessment"),
	}

	for _, o := range model.ReferenceOutlets {
		key := string(o)
		finding := OutletFinding{
			Verified:   r.boolean(key + "Verified"),
			Similarity: r.percent(key + "Similarity"),
			Articles:   []model.MatchedSource{},
		}
		for _, a := range r.objects(key + "Articles") {
			finding.Articles = append(finding.Articles, model.MatchedSource{
				Title:       a.text("title"),
				URL:         a.text("url"),
				PublishDate: a.text("publishedAt"),
				Similarity:  a.percent("similarity"),
				Excerpt:     a.text("description"),
			})
		}
		v.Outlets[o] = finding
	}

	return v, nil
}

// Verify asks the provider to judge which outlets carried the same story
func Verify(ctx context.Context, p Provider, content, sourceURL string, results []model.OutletResult) (*Verification, error) {
	resp, err := p.Complete(ctx, CompletionRequest{
		Prompt: BuildVerificationPrompt(content, sourceURL, results),
	})
	if err != nil {
		return nil, err
	}
	v, err := ParseVerification(resp.Text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", err, model.ErrUpstream)
	}
	return v, nil
}
