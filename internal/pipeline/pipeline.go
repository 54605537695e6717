// Package pipeline runs the two verification stages: the Stage 1
// pre-filter and, for articles that pass it, the Stage 2 cross-reference
// and scoring.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ppiankov/newsgate/internal/events"
	"github.com/ppiankov/newsgate/internal/feeds"
	"github.com/ppiankov/newsgate/internal/heuristics"
	"github.com/ppiankov/newsgate/internal/llm"
	"github.com/ppiankov/newsgate/internal/metrics"
	"github.com/ppiankov/newsgate/internal/model"
	"github.com/ppiankov/newsgate/internal/newsapi"
	"github.com/ppiankov/newsgate/internal/score"
	"github.com/ppiankov/newsgate/internal/stage1"
	"github.com/ppiankov/newsgate/internal/trust"
	"github.com/ppiankov/newsgate/internal/util"
	"github.com/ppiankov/newsgate/internal/worker"
)

// Searcher finds articles about a story at the reference outlets
type Searcher interface {
	SearchOutlets(ctx context.Context, terms heuristics.SearchTerms) ([]model.OutletResult, error)
}

// FeedMatcher finds wire feed items resembling an article
type FeedMatcher interface {
	Match(ctx context.Context, content string) ([]model.FeedMatch, error)
}

// Deps are the collaborators of a pipeline. Any of them may be nil.
type Deps struct {
	Provider  llm.Provider
	Search    Searcher
	Feeds     FeedMatcher
	Publisher events.Publisher
	Fetcher   *Fetcher
}

// Pipeline orchestrates one analysis per call. It holds no per-request
// state and is safe for concurrent use.
type Pipeline struct {
	config     *model.Config
	filter     *stage1.Filter
	aggregator *score.Aggregator
	provider   llm.Provider
	search     Searcher
	feeds      FeedMatcher
	feedStore  *feeds.Store
	publisher  events.Publisher
	fetcher    *Fetcher
}

// New creates a pipeline from explicit collaborators
func New(cfg *model.Config, deps Deps) *Pipeline {
	table := trust.New(cfg.Trust.Domains)
	return &Pipeline{
		config:     cfg,
		filter:     stage1.NewFilter(table, deps.Provider, cfg.Stage1.Assessment),
		aggregator: score.NewAggregator(),
		provider:   deps.Provider,
		search:     deps.Search,
		feeds:      deps.Feeds,
		publisher:  deps.Publisher,
		fetcher:    deps.Fetcher,
	}
}

// NewPipeline wires every collaborator from configuration. Collaborators
// that are not configured are left out and the stages degrade as
// documented on each operation.
func NewPipeline(ctx context.Context, cfg *model.Config) (*Pipeline, error) {
	logger := zerolog.Ctx(ctx)
	var deps Deps

	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM, cfg.HTTP))
	if err != nil {
		logger.Warn().Err(err).Msg("LLM gateway disabled")
	} else if provider != nil {
		deps.Provider = provider
	}

	searchLimiter := worker.NewLimiter(cfg.Search.RequestsPerSecond, cfg.Search.Burst)
	search, err := newsapi.NewClient(cfg.Search, searchLimiter)
	switch {
	case errors.Is(err, newsapi.ErrNotConfigured):
		logger.Warn().Msg("news search API key not set; Stage 2 is unavailable")
	case err != nil:
		return nil, fmt.Errorf("news search client: %w", err)
	default:
		deps.Search = search
	}

	fetchLimiter := worker.NewLimiter(1, 2)
	var store *feeds.Store
	if cfg.Feeds.Enabled && len(cfg.Feeds.URLs) > 0 {
		store = feeds.NewStore(cfg.Feeds, util.NewHTTPClient(cfg.HTTP), fetchLimiter)
		deps.Feeds = store
	}

	publisher, err := events.New(cfg.Events)
	if err != nil {
		return nil, fmt.Errorf("events: %w", err)
	}
	deps.Publisher = publisher

	deps.Fetcher = NewFetcher(cfg.HTTP, fetchLimiter)

	p := New(cfg, deps)
	p.feedStore = store
	return p, nil
}

// Config returns the configuration the pipeline was built with
func (p *Pipeline) Config() *model.Config {
	return p.config
}

// FeedStore returns the feed store built by NewPipeline, or nil
func (p *Pipeline) FeedStore() *feeds.Store {
	return p.feedStore
}

// LLMEnabled reports whether an LLM gateway is configured
func (p *Pipeline) LLMEnabled() bool {
	return p.provider != nil
}

// CheckLLM asks the configured LLM gateway for a trivial completion. It
// returns the provider name, or "" when none is configured.
func (p *Pipeline) CheckLLM(ctx context.Context) (string, bool) {
	if p.provider == nil {
		return "", false
	}
	return p.provider.Name(), p.provider.IsAvailable(ctx)
}

// SearchEnabled reports whether the news-search collaborator is configured
func (p *Pipeline) SearchEnabled() bool {
	return p.search != nil
}

// Close releases the event publisher
func (p *Pipeline) Close() {
	if p.publisher != nil {
		p.publisher.Close()
	}
}

// RunStage1 runs the pre-filter. BLOCK is a result, not an error; empty
// content is a validation error.
func (p *Pipeline) RunStage1(ctx context.Context, content, sourceURL string) (*model.Stage1Decision, error) {
	start := time.Now()
	d, err := p.filter.Run(ctx, content, sourceURL)
	if err != nil {
		if !errors.Is(err, model.ErrValidation) {
			metrics.ObserveCall("llm", start, err)
		}
		return nil, stageError("stage1", err)
	}
	metrics.ObserveStage1(d)

	zerolog.Ctx(ctx).Debug().
		Str("decision", string(d.Decision)).
		Str("reason", d.Reason).
		Msg("stage 1 decided")
	return d, nil
}

// RunStage2 cross-references the article with the reference outlets and
// scores the three compartments. Callers run it only after a PASS. Without
// an LLM gateway the outlet judgement falls back to keyword overlap.
func (p *Pipeline) RunStage2(ctx context.Context, content, sourceURL string) (*model.NewsVerificationResult, error) {
	logger := zerolog.Ctx(ctx)

	if strings.TrimSpace(content) == "" {
		return nil, stageError("stage2", fmt.Errorf("empty content: %w", model.ErrValidation))
	}
	if p.search == nil {
		return nil, &model.StageError{
			Stage:   "stage2",
			Kind:    model.ErrUpstream,
			Message: "news search is not configured",
		}
	}

	terms := heuristics.ExtractSearchTerms(content)
	start := time.Now()
	results, err := p.search.SearchOutlets(ctx, terms)
	metrics.ObserveCall("newsapi", start, err)
	if err != nil {
		return nil, stageError("stage2", fmt.Errorf("news search: %w", err))
	}

	in := score.Inputs{
		Content:     content,
		SourceURL:   sourceURL,
		FeedMatches: p.matchFeeds(ctx, content),
	}

	if p.provider != nil {
		start = time.Now()
		v, err := llm.Verify(ctx, p.provider, content, sourceURL, results)
		metrics.ObserveCall("llm", start, err)
		if err != nil {
			return nil, stageError("stage2", fmt.Errorf("verification: %w", err))
		}
		in.Outlets = fromVerification(results, v)
		in.Locations = v.Locations
		in.Dates = v.Dates
		in.RedFlags = v.RedFlags
		in.Topics = v.Topics
		in.Assessment = v.OverallAssessment
	} else {
		in.Outlets = fromOverlap(content, results, p.minSimilarity())
	}

	result := p.aggregator.Aggregate(in)
	metrics.ObserveVerdict(&result)

	logger.Debug().
		Int("overall", result.OverallScore).
		Str("verdict", string(result.OverallVerdict)).
		Msg("stage 2 scored")
	return &result, nil
}

// Analyze runs Stage 1 and, when it passes, Stage 2. The finished report is
// published; publication failures are logged and never fail the analysis.
func (p *Pipeline) Analyze(ctx context.Context, content, sourceURL string) (*model.AnalysisReport, error) {
	d, err := p.RunStage1(ctx, content, sourceURL)
	if err != nil {
		return nil, err
	}

	report := &model.AnalysisReport{
		Content:    content,
		SourceURL:  sourceURL,
		AnalyzedAt: time.Now().UTC(),
		Stage1:     d,
	}

	if d.Passed() {
		result, err := p.RunStage2(ctx, content, sourceURL)
		if err != nil {
			return nil, err
		}
		report.Stage2 = result
	}

	if p.publisher != nil {
		if err := p.publisher.Publish(ctx, report); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("verdict publish failed")
		}
	}
	return report, nil
}

// FetchArticle downloads a page and returns its article text
func (p *Pipeline) FetchArticle(ctx context.Context, rawURL string) (*FetchResult, error) {
	if p.fetcher == nil {
		return nil, &model.StageError{Stage: "fetch", Kind: model.ErrUpstream, Message: "article fetching is not configured"}
	}
	start := time.Now()
	res, err := p.fetcher.Fetch(ctx, rawURL)
	metrics.ObserveCall("fetch", start, err)
	if err != nil {
		return nil, stageError("fetch", err)
	}
	return res, nil
}

// matchFeeds returns wire matches; feed failures only cost the matches
func (p *Pipeline) matchFeeds(ctx context.Context, content string) []model.FeedMatch {
	if p.feeds == nil {
		return nil
	}
	start := time.Now()
	matches, err := p.feeds.Match(ctx, content)
	metrics.ObserveCall("feeds", start, err)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("feed matching failed")
		return nil
	}
	return matches
}

func (p *Pipeline) minSimilarity() int {
	if p.config.Feeds.MinSimilarity > 0 {
		return p.config.Feeds.MinSimilarity
	}
	return 40
}

// fromVerification applies the LLM judgement per outlet. An outlet whose
// search returned nothing is not found, whatever the model says.
func fromVerification(results []model.OutletResult, v *llm.Verification) []model.OutletVerification {
	out := make([]model.OutletVerification, 0, len(results))
	for _, res := range results {
		ov := model.OutletVerification{Outlet: res.Outlet, MatchingArticles: []model.MatchedSource{}}
		if len(res.Articles) > 0 {
			f := v.Finding(res.Outlet)
			ov.Found = f.Verified
			ov.Similarity = f.Similarity
			if f.Articles != nil {
				ov.MatchingArticles = f.Articles
			}
		}
		out = append(out, ov)
	}
	return out
}

// fromOverlap judges outlets by keyword overlap between the article and
// each retrieved title and description
func fromOverlap(content string, results []model.OutletResult, minSimilarity int) []model.OutletVerification {
	article := heuristics.Tokens(content)

	out := make([]model.OutletVerification, 0, len(results))
	for _, res := range results {
		ov := model.OutletVerification{Outlet: res.Outlet, MatchingArticles: []model.MatchedSource{}}
		for _, a := range res.Articles {
			sim := heuristics.Overlap(article, heuristics.Tokens(a.Title+" "+a.Description))
			if sim < minSimilarity {
				continue
			}
			ov.Found = true
			ov.Similarity = max(ov.Similarity, sim)
			ov.MatchingArticles = append(ov.MatchingArticles, model.MatchedSource{
				Title:       a.Title,
				URL:         a.URL,
				PublishDate: a.PublishedAt,
				Similarity:  sim,
				Excerpt:     a.Description,
			})
		}
		out = append(out, ov)
	}
	return out
}

// stageError converts a collaborator failure into the stage's error type
func stageError(stage string, err error) error {
	var se *model.StageError
	if errors.As(err, &se) {
		return err
	}
	kind := model.KindOf(err)
	return &model.StageError{
		Stage:   stage,
		Kind:    kind,
		Message: model.UserMessage(kind),
		Err:     err,
	}
}
