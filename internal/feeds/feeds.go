// Package feeds corroborates articles against wire RSS feeds. Feed items are
// cached per source and matched by keyword overlap with the article.
package feeds

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"

	"github.com/ppiankov/newsgate/internal/cache"
	"github.com/ppiankov/newsgate/internal/heuristics"
	"github.com/ppiankov/newsgate/internal/model"
	"github.com/ppiankov/newsgate/internal/worker"
)

// Item is one cached feed entry
type Item struct {
	Source      string `json:"source"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Link        string `json:"link"`
	Published   string `json:"published,omitempty"`
}

// Store loads feeds on demand and keeps them for the cache TTL
type Store struct {
	sources       []model.FeedSource
	parser        *gofeed.Parser
	cache         cache.Cache
	ttl           time.Duration
	limiter       *worker.Limiter
	minSimilarity int
	maxMatches    int
}

// NewStore creates a feed store. Items live in memory, and also on disk
// when cfg.CacheDir is set.
func NewStore(cfg model.FeedsConfig, client *http.Client, limiter *worker.Limiter) *Store {
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	minSimilarity := cfg.MinSimilarity
	if minSimilarity <= 0 {
		minSimilarity = 40
	}
	maxMatches := cfg.MaxMatches
	if maxMatches <= 0 {
		maxMatches = 3
	}

	parser := gofeed.NewParser()
	if client != nil {
		parser.Client = client
	}

	return &Store{
		sources:       cfg.URLs,
		parser:        parser,
		cache:         cache.New(ttl, cfg.CacheDir),
		ttl:           ttl,
		limiter:       limiter,
		minSimilarity: minSimilarity,
		maxMatches:    maxMatches,
	}
}

// Items returns the items of every source, loading stale sources. A source
// that fails is skipped; the error is returned only when all of them fail.
func (s *Store) Items(ctx context.Context) ([]Item, error) {
	return s.collect(ctx, false)
}

// Refresh reloads every source regardless of cache state
func (s *Store) Refresh(ctx context.Context) error {
	_, err := s.collect(ctx, true)
	return err
}

func (s *Store) collect(ctx context.Context, force bool) ([]Item, error) {
	logger := zerolog.Ctx(ctx)

	var items []Item
	var errs []error
	for _, src := range s.sources {
		got, err := s.source(ctx, src, force)
		if err != nil {
			logger.Warn().Err(err).Str("feed", src.Name).Msg("feed load failed")
			errs = append(errs, err)
			continue
		}
		items = append(items, got...)
	}

	if len(errs) > 0 && len(errs) == len(s.sources) {
		return nil, fmt.Errorf("all feeds failed: %w", errors.Join(errs...))
	}
	return items, nil
}

func (s *Store) source(ctx context.Context, src model.FeedSource, force bool) ([]Item, error) {
	key := cache.Key("feed", src.URL)

	var items []Item
	if !force && cache.GetJSON(s.cache, key, &items) {
		return items, nil
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx, src.URL); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	feed, err := s.parser.ParseURLWithContext(src.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", src.URL, err)
	}

	items = make([]Item, 0, len(feed.Items))
	for _, it := range feed.Items {
		if it == nil || strings.TrimSpace(it.Title) == "" {
			continue
		}
		item := Item{
			Source:      src.Name,
			Title:       strings.TrimSpace(it.Title),
			Description: it.Description,
			Link:        it.Link,
		}
		if it.PublishedParsed != nil {
			item.Published = it.PublishedParsed.UTC().Format(time.RFC3339)
		} else {
			item.Published = it.Published
		}
		items = append(items, item)
	}

	if err := cache.SetJSON(s.cache, key, items, s.ttl); err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Str("feed", src.Name).Msg("feed cache write failed")
	}
	return items, nil
}

// Match returns the feed items whose title overlaps the article by at least
// the configured similarity, best first
func (s *Store) Match(ctx context.Context, content string) ([]model.FeedMatch, error) {
	items, err := s.Items(ctx)
	if err != nil {
		return nil, err
	}
	return Match(content, items, s.minSimilarity, s.maxMatches), nil
}

// Match scores items against content. Similarity is the share of an item's
// title words found in the article.
func Match(content string, items []Item, minSimilarity, maxMatches int) []model.FeedMatch {
	article := heuristics.Tokens(content)

	matches := []model.FeedMatch{}
	for _, it := range items {
		title := heuristics.Tokens(it.Title)
		if len(title) < 2 {
			continue
		}
		sim := heuristics.Overlap(article, title)
		if sim < minSimilarity {
			continue
		}
		matches = append(matches, model.FeedMatch{
			Source:      it.Source,
			Title:       it.Title,
			URL:         it.Link,
			PublishDate: it.Published,
			Similarity:  sim,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	if len(matches) > maxMatches {
		matches = matches[:maxMatches]
	}
	return matches
}
