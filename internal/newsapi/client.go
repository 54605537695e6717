// Package newsapi is the news-search collaborator: a client for the NewsAPI
// /v2/everything endpoint and the per-outlet cross-reference search built on it.
package newsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ppiankov/newsgate/internal/cache"
	"github.com/ppiankov/newsgate/internal/model"
	"github.com/ppiankov/newsgate/internal/worker"
)

// ErrNotConfigured is returned when no API key is available
var ErrNotConfigured = errors.New("news search API key not configured")

// Client queries the NewsAPI everything endpoint
type Client struct {
	baseURL  string
	apiKey   string
	pageSize int
	language string
	http     *http.Client
	limiter  *worker.Limiter
	cache    cache.Cache // nil disables caching
	cacheTTL time.Duration
}

// NewClient creates a search client. limiter paces requests per host; when
// cfg.CacheTTL is positive responses are cached for that long.
func NewClient(cfg model.SearchConfig, limiter *worker.Limiter) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNotConfigured
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://newsapi.org"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	c := &Client{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		apiKey:   cfg.APIKey,
		pageSize: pageSize,
		language: cfg.Language,
		http:     &http.Client{Timeout: timeout},
		limiter:  limiter,
		cacheTTL: cfg.CacheTTL,
	}
	if cfg.CacheTTL > 0 {
		c.cache = cache.NewMemoryCache(cfg.CacheTTL, 2*cfg.CacheTTL)
	}
	return c, nil
}

type everythingResponse struct {
	Status       string       `json:"status"`
	TotalResults int          `json:"totalResults"`
	Articles     []apiArticle `json:"articles"`
	Code         string       `json:"code"`
	Message      string       `json:"message"`
}

type apiArticle struct {
	Source struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"source"`
	Author      string `json:"author"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
	Content     string `json:"content"`
}

// Query joins free text with a domain constraint: "<text> AND (<d1> OR <d2>)"
func Query(text string, domains []string) string {
	switch len(domains) {
	case 0:
		return text
	case 1:
		return text + " AND " + domains[0]
	default:
		return text + " AND (" + strings.Join(domains, " OR ") + ")"
	}
}

// Everything searches for text published under any of domains, newest
// first. An empty result is not an error.
func (c *Client) Everything(ctx context.Context, text string, domains []string) ([]model.NewsArticle, error) {
	params := url.Values{}
	params.Set("q", Query(text, domains))
	params.Set("sortBy", "publishedAt")
	params.Set("pageSize", strconv.Itoa(c.pageSize))
	if c.language != "" {
		params.Set("language", c.language)
	}
	endpoint := c.baseURL + "/v2/everything?" + params.Encode()

	key := cache.Key("everything", endpoint)
	if c.cache != nil {
		var cached []model.NewsArticle
		if cache.GetJSON(c.cache, key, &cached) {
			return cached, nil
		}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, endpoint); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("news search: %w: %w", err, model.ErrUpstream)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w: %w", err, model.ErrUpstream)
	}

	var data everythingResponse
	decodeErr := json.Unmarshal(body, &data)

	if resp.StatusCode == http.StatusTooManyRequests || data.Code == "rateLimited" {
		return nil, fmt.Errorf("news search rate limit exceeded: %w", model.ErrRateLimited)
	}
	if resp.StatusCode != http.StatusOK || data.Status == "error" {
		msg := data.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, fmt.Errorf("news search HTTP %d: %s: %w", resp.StatusCode, msg, model.ErrUpstream)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode response: %w: %w", decodeErr, model.ErrUpstream)
	}

	articles := make([]model.NewsArticle, 0, len(data.Articles))
	for _, a := range data.Articles {
		articles = append(articles, model.NewsArticle{
			Title:       a.Title,
			Description: a.Description,
			Content:     a.Content,
			URL:         a.URL,
			PublishedAt: a.PublishedAt,
			Source:      a.Source.Name,
		})
	}

	if c.cache != nil {
		_ = cache.SetJSON(c.cache, key, articles, c.cacheTTL)
	}
	return articles, nil
}
