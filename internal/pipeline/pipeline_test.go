package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/ppiankov/newsgate/internal/heuristics"
	"github.com/ppiankov/newsgate/internal/llm"
	"github.com/ppiankov/newsgate/internal/model"
)

type stubProvider struct {
	text  string
	err   error
	calls int
}

func (s *stubProvider) Name() string                       { return "stub" }
func (s *stubProvider) IsAvailable(_ context.Context) bool { return true }

func (s *stubProvider) Complete(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &llm.CompletionResponse{Text: s.text}, nil
}

type stubSearcher struct {
	results []model.OutletResult
	err     error
	terms   heuristics.SearchTerms
}

func (s *stubSearcher) SearchOutlets(_ context.Context, terms heuristics.SearchTerms) ([]model.OutletResult, error) {
	s.terms = terms
	return s.results, s.err
}

type stubFeeds struct {
	matches []model.FeedMatch
	err     error
}

func (s *stubFeeds) Match(context.Context, string) ([]model.FeedMatch, error) {
	return s.matches, s.err
}

type recordingPublisher struct {
	mu      sync.Mutex
	reports []*model.AnalysisReport
	err     error
}

func (r *recordingPublisher) Publish(_ context.Context, report *model.AnalysisReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, report)
	return r.err
}

func (r *recordingPublisher) Close() {}

var story = "Council approves flood defences for London riverside\n" +
	strings.TrimSpace(strings.Repeat("The council approved flood defences along the London riverside after officials reviewed the plans. ", 8))

// searchResults has one BBC article about the story and nothing elsewhere
func searchResults() []model.OutletResult {
	var out []model.OutletResult
	for _, o := range model.ReferenceOutlets {
		res := model.OutletResult{Outlet: o, Articles: []model.NewsArticle{}}
		if o == model.OutletBBC {
			res.Articles = append(res.Articles, model.NewsArticle{
				Title:       "Flood defences approved for London riverside",
				URL:         "https://www.bbc.com/news/uk-1",
				PublishedAt: "2024-03-01T10:00:00Z",
				Source:      "BBC News",
			})
		}
		out = append(out, res)
	}
	return out
}

func testConfig() *model.Config {
	return model.DefaultConfig()
}

func TestAnalyze_BlockedSkipsStage2(t *testing.T) {
	search := &stubSearcher{results: searchResults()}
	pub := &recordingPublisher{}
	p := New(testConfig(), Deps{Search: search, Publisher: pub})

	content := "one two three four five six seven eight nine ten eleven twelve thirteen fourteen fifteen"
	report, err := p.Analyze(context.Background(), content, "")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if report.Stage1.Decision != model.DecisionBlock {
		t.Errorf("Expected BLOCK, got %s", report.Stage1.Decision)
	}
	if report.Stage2 != nil {
		t.Error("Expected no Stage 2 result for a blocked article")
	}
	if report.Verdict() != "" {
		t.Errorf("Expected empty verdict, got %s", report.Verdict())
	}
	if len(pub.reports) != 1 {
		t.Errorf("Expected the blocked report to be published, got %d", len(pub.reports))
	}
}

func TestAnalyze_OverlapFallback(t *testing.T) {
	search := &stubSearcher{results: searchResults()}
	feeds := &stubFeeds{matches: []model.FeedMatch{{Source: "BBC RSS", Title: "Flood defences approved", URL: "https://bbc.co.uk/1", Similarity: 80}}}
	p := New(testConfig(), Deps{Search: search, Feeds: feeds})

	report, err := p.Analyze(context.Background(), story, "")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if !report.Stage1.Passed() {
		t.Fatalf("Expected PASS, got %s (%s)", report.Stage1.Decision, report.Stage1.Reason)
	}
	if report.Stage2 == nil {
		t.Fatal("Expected Stage 2 result")
	}

	bbc := report.Stage2.Legitimacy.BBC
	if !bbc.Found || bbc.Similarity != 100 {
		t.Errorf("Expected BBC found with similarity 100, got %+v", bbc)
	}
	if len(bbc.MatchingArticles) != 1 || bbc.MatchingArticles[0].URL != "https://www.bbc.com/news/uk-1" {
		t.Errorf("Unexpected BBC matches %+v", bbc.MatchingArticles)
	}
	if report.Stage2.Legitimacy.CNN.Found {
		t.Error("Expected CNN not found")
	}
	// one match: round(100*0.6 + 85*0.4)
	if report.Stage2.Legitimacy.OverallScore != 94 {
		t.Errorf("Expected legitimacy 94, got %d", report.Stage2.Legitimacy.OverallScore)
	}
	if got := report.Stage2.Relatability.RSSVerification.MatchingFeeds; len(got) != 1 {
		t.Errorf("Expected feed match to be attached, got %+v", got)
	}
	if search.terms.Headline != "Council approves flood defences for London riverside" {
		t.Errorf("Expected search terms from the content, got %+v", search.terms)
	}
}

func TestRunStage2_LLMVerification(t *testing.T) {
	provider := &stubProvider{text: "```json\n" + `{
		"bbcVerified": true, "bbcSimilarity": 80,
		"bbcArticles": [{"title": "Flood defences approved", "url": "https://www.bbc.com/news/uk-1", "similarity": 80}],
		"cnnVerified": true, "cnnSimilarity": 90,
		"locations": ["Thames Barrier"],
		"redFlags": [],
		"topics": ["infrastructure"],
		"overallAssessment": "Consistent with BBC reporting."
	}` + "\n```"}
	p := New(testConfig(), Deps{Provider: provider, Search: &stubSearcher{results: searchResults()}})

	result, err := p.RunStage2(context.Background(), story, "")
	if err != nil {
		t.Fatalf("RunStage2 failed: %v", err)
	}

	l := result.Legitimacy
	if !l.BBC.Found || l.BBC.Similarity != 80 {
		t.Errorf("Expected BBC found at 80, got %+v", l.BBC)
	}
	if l.CNN.Found || l.CNN.Similarity != 0 {
		t.Errorf("Expected CNN forced to not found without search hits, got %+v", l.CNN)
	}
	if l.OverallScore != 82 {
		t.Errorf("Expected legitimacy 82, got %d", l.OverallScore)
	}
	if result.Assessment != "Consistent with BBC reporting." || len(result.Topics) != 1 {
		t.Errorf("Expected LLM assessment and topics, got %q %v", result.Assessment, result.Topics)
	}

	found := false
	for _, loc := range result.Relatability.Location.ExtractedLocations {
		if loc == "Thames Barrier" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected LLM location to be merged, got %v", result.Relatability.Location.ExtractedLocations)
	}
}

func TestRunStage2_Errors(t *testing.T) {
	tests := []struct {
		name string
		deps Deps
		text string
		want error
	}{
		{
			name: "search not configured",
			deps: Deps{},
			text: story,
			want: model.ErrUpstream,
		},
		{
			name: "search rate limited",
			deps: Deps{Search: &stubSearcher{err: model.ErrRateLimited}},
			text: story,
			want: model.ErrRateLimited,
		},
		{
			name: "gateway payment required",
			deps: Deps{Search: &stubSearcher{results: searchResults()}, Provider: &stubProvider{err: model.ErrPaymentRequired}},
			text: story,
			want: model.ErrPaymentRequired,
		},
		{
			name: "gateway unparseable",
			deps: Deps{Search: &stubSearcher{results: searchResults()}, Provider: &stubProvider{text: "I cannot help with that"}},
			text: story,
			want: model.ErrUpstream,
		},
		{
			name: "empty content",
			deps: Deps{Search: &stubSearcher{results: searchResults()}},
			text: "   ",
			want: model.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(testConfig(), tt.deps)
			result, err := p.RunStage2(context.Background(), tt.text, "")
			if result != nil {
				t.Error("Expected no partial result")
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("Expected %v, got %v", tt.want, err)
			}
			var se *model.StageError
			if !errors.As(err, &se) || se.Stage != "stage2" {
				t.Errorf("Expected a stage2 StageError, got %T %v", err, err)
			}
		})
	}
}

func TestRunStage2_FeedFailureTolerated(t *testing.T) {
	p := New(testConfig(), Deps{
		Search: &stubSearcher{results: searchResults()},
		Feeds:  &stubFeeds{err: errors.New("all feeds failed")},
	})

	result, err := p.RunStage2(context.Background(), story, "")
	if err != nil {
		t.Fatalf("Expected feed failure to be tolerated, got %v", err)
	}
	if result.Relatability.RSSVerification.MatchingFeeds == nil {
		t.Error("Expected non-nil matching feeds")
	}
}

func TestRunStage1_Validation(t *testing.T) {
	p := New(testConfig(), Deps{})

	_, err := p.RunStage1(context.Background(), "", "")
	if !errors.Is(err, model.ErrValidation) {
		t.Fatalf("Expected ErrValidation, got %v", err)
	}
	if model.UserMessage(err) != "News content is required" {
		t.Errorf("Unexpected user message %q", model.UserMessage(err))
	}

	_, err = p.Analyze(context.Background(), "", "")
	if !errors.Is(err, model.ErrValidation) {
		t.Errorf("Expected Analyze to surface ErrValidation, got %v", err)
	}
}

func TestRunStage1_AssessmentRateLimited(t *testing.T) {
	cfg := testConfig()
	cfg.Stage1.Assessment = true
	p := New(cfg, Deps{Provider: &stubProvider{err: model.ErrRateLimited}})

	_, err := p.RunStage1(context.Background(), story, "")
	if !errors.Is(err, model.ErrRateLimited) {
		t.Errorf("Expected ErrRateLimited, got %v", err)
	}
}

func TestAnalyze_PublishFailureIgnored(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("nats down")}
	p := New(testConfig(), Deps{Search: &stubSearcher{results: searchResults()}, Publisher: pub})

	report, err := p.Analyze(context.Background(), story, "https://www.bbc.com/news/uk-1")
	if err != nil {
		t.Fatalf("Expected publish failure to be ignored, got %v", err)
	}
	if report.Stage2 == nil {
		t.Error("Expected Stage 2 result")
	}
}

func TestFetchArticle_NotConfigured(t *testing.T) {
	p := New(testConfig(), Deps{})
	_, err := p.FetchArticle(context.Background(), "https://example.com")
	if !errors.Is(err, model.ErrUpstream) {
		t.Errorf("Expected ErrUpstream, got %v", err)
	}
}

func TestNewPipeline_DegradesWithoutKeys(t *testing.T) {
	cfg := testConfig()
	cfg.LLM.APIKey = ""
	cfg.Search.APIKey = ""
	cfg.Feeds.Enabled = false

	p, err := NewPipeline(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}
	defer p.Close()

	if p.LLMEnabled() || p.SearchEnabled() {
		t.Errorf("Expected LLM and search disabled, got %v %v", p.LLMEnabled(), p.SearchEnabled())
	}
	if p.FeedStore() != nil {
		t.Error("Expected no feed store when feeds are disabled")
	}

	d, err := p.RunStage1(context.Background(), story, "")
	if err != nil || !d.Passed() {
		t.Errorf("Expected Stage 1 to work without collaborators, got %v %v", d, err)
	}
}

func TestCheckLLM(t *testing.T) {
	p := New(model.DefaultConfig(), Deps{})
	if name, ok := p.CheckLLM(context.Background()); name != "" || ok {
		t.Errorf("Expected no provider, got %q %v", name, ok)
	}

	p = New(model.DefaultConfig(), Deps{Provider: &stubProvider{}})
	if name, ok := p.CheckLLM(context.Background()); name != "stub" || !ok {
		t.Errorf("Expected stub provider available, got %q %v", name, ok)
	}
}
