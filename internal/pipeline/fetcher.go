package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/netip"
	"net/url"

	"github.com/ppiankov/newsgate/internal/extract"
	"github.com/ppiankov/newsgate/internal/model"
	"github.com/ppiankov/newsgate/internal/util"
	"github.com/ppiankov/newsgate/internal/worker"
)

// ErrDisallowed is returned when robots.txt forbids fetching a page
var ErrDisallowed = errors.New("fetching disallowed by robots.txt")

// Fetcher downloads a news page and extracts its article text
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	robots     *util.RobotsChecker // nil when robots.txt is ignored
	limiter    *worker.Limiter
	extractor  *extract.Extractor
	allowLocal bool
}

// NewFetcher creates a fetcher from the outbound HTTP settings
func NewFetcher(cfg model.HTTPConfig, limiter *worker.Limiter) *Fetcher {
	client := util.NewPublicHTTPClient(cfg)

	maxBytes := cfg.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = 2_000_000
	}

	f := &Fetcher{
		httpClient: client,
		userAgent:  cfg.UserAgent,
		maxBytes:   maxBytes,
		limiter:    limiter,
		extractor:  extract.NewExtractor(),
		allowLocal: cfg.AllowPrivateHosts,
	}
	if cfg.RespectRobots {
		f.robots = util.NewRobotsChecker(client, cfg.UserAgent)
	}
	return f
}

// FetchResult is a fetched page reduced to its article
type FetchResult struct {
	Article     *extract.Article
	FinalURL    string
	StatusCode  int
	ContentType string
}

// Fetch retrieves rawURL and extracts the article. Bad URLs, non-public
// destinations, robots.txt refusals and pages without text are validation
// errors; transport
// failures and non-2xx answers are upstream errors.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*FetchResult, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, fmt.Errorf("invalid article URL %q: %w", rawURL, model.ErrValidation)
	}
	if addr, err := netip.ParseAddr(parsed.Hostname()); err == nil && !f.allowLocal && !util.IsPublicAddr(addr) {
		return nil, fmt.Errorf("%s: %w: %w", rawURL, util.ErrPrivateAddress, model.ErrValidation)
	}

	if f.robots != nil {
		allowed, err := f.robots.Allowed(ctx, rawURL)
		if err != nil {
			return nil, fmt.Errorf("robots check: %w: %w", err, model.ErrValidation)
		}
		if !allowed {
			return nil, fmt.Errorf("%s: %w: %w", rawURL, ErrDisallowed, model.ErrValidation)
		}
	}

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx, rawURL); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.httpClient.Do(req)
	if errors.Is(err, util.ErrPrivateAddress) {
		return nil, fmt.Errorf("fetch: %w: %w", err, model.ErrValidation)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch: %w: %w", err, model.ErrUpstream)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %s: %w", resp.Status, model.ErrUpstream)
	}

	finalURL := resp.Request.URL.String()
	article, err := f.extractor.Extract(io.LimitReader(resp.Body, f.maxBytes), finalURL)
	if err != nil {
		if errors.Is(err, extract.ErrNoContent) {
			return nil, fmt.Errorf("%s: %w: %w", finalURL, err, model.ErrValidation)
		}
		return nil, fmt.Errorf("extract: %w: %w", err, model.ErrUpstream)
	}

	return &FetchResult{
		Article:     article,
		FinalURL:    finalURL,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}
