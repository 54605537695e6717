package llm

import (
	"context"
	"fmt"

	"github.com/ppiankov/newsgate/internal/model"
)

// AssessmentSystemPrompt instructs the model to produce the Stage 1
// editorial read
const AssessmentSystemPrompt = `You are an expert news analyst specializing in viral content prediction.
Analyze the given news headline and content to determine its viral potential.

Evaluate based on:
1. Emotional impact and engagement potential
2. Newsworthiness and timeliness
3. Shareability and discussion-worthiness
4. Credibility indicators
5. Target audience appeal

Respond with a JSON object containing:
- isViralWorthy: boolean (true if high viral potential)
- reason: string (detailed explanation)
- confidence: number (0.0 to 1.0)
- category: string (Politics, Technology, Health, Entertainment, Sports, Business, Science, Other)
- sentiment: string (Positive, Negative, Neutral, Mixed, High Impact)

Be analytical but concise in your reasoning.`

// BuildAssessmentPrompt builds the user message for the Stage 1 assessment
func BuildAssessmentPrompt(headline, content string) string {
	return fmt.Sprintf("Headline: %s\n\nContent: %s\n\nAnalyze this news article and determine its viral potential.", headline, content)
}

// ParseAssessment decodes the assessment object. Text that holds no JSON
// object yields the fallback record rather than an error.
func ParseAssessment(text string) model.Assessment {
	r, err := parseRecord(text)
	if err != nil {
		return model.FallbackAssessment()
	}

	a := model.Assessment{
		IsViralWorthy: r.boolean("isViralWorthy"),
		Reason:        r.text("reason"),
		Confidence:    r.number("confidence"),
		Category:      r.text("category"),
		Sentiment:     r.text("sentiment"),
	}
	a.Confidence = max(0, min(1, a.Confidence))
	if a.Category == "" {
		a.Category = "Other"
	}
	if a.Sentiment == "" {
		a.Sentiment = "Neutral"
	}
	return a
}

// Assess asks the provider for the Stage 1 editorial read of an article
func Assess(ctx context.Context, p Provider, headline, content string) (model.Assessment, error) {
	resp, err := p.Complete(ctx, CompletionRequest{
		System: AssessmentSystemPrompt,
		Prompt: BuildAssessmentPrompt(headline, content),
		JSON:   true,
	})
	if err != nil {
		return model.Assessment{}, err
	}
	return ParseAssessment(resp.Text), nil
}
