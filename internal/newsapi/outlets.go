package newsapi

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/newsgate/internal/heuristics"
	"github.com/ppiankov/newsgate/internal/model"
)

// SearchOutlets looks the article up at every reference outlet concurrently.
// For each outlet the queries are tried in order and the first non-empty
// answer wins; articles not published by the outlet are dropped. A rate
// limit aborts the whole search. Other failures only skip that query, unless
// every outlet failed.
func (c *Client) SearchOutlets(ctx context.Context, terms heuristics.SearchTerms) ([]model.OutletResult, error) {
	logger := zerolog.Ctx(ctx)
	queries := terms.Queries()

	results := make([]model.OutletResult, len(model.ReferenceOutlets))
	failures := make([]error, len(model.ReferenceOutlets))

	g, gctx := errgroup.WithContext(ctx)
	for i, outlet := range model.ReferenceOutlets {
		g.Go(func() error {
			res, err := c.searchOutlet(gctx, outlet, queries)
			if errors.Is(err, model.ErrRateLimited) {
				return err
			}
			if err != nil {
				logger.Warn().Err(err).Str("outlet", string(outlet)).Msg("outlet search failed")
				failures[i] = err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(queries) > 0 {
		if err := errors.Join(failures...); err != nil && allFailed(failures) {
			return nil, fmt.Errorf("news search unavailable: %w", err)
		}
	}

	return results, nil
}

func (c *Client) searchOutlet(ctx context.Context, outlet model.Outlet, queries []string) (model.OutletResult, error) {
	res := model.OutletResult{Outlet: outlet, Articles: []model.NewsArticle{}}

	var lastErr error
	succeeded := false
	for _, q := range queries {
		articles, err := c.Everything(ctx, q, outlet.Domains())
		if err != nil {
			if errors.Is(err, model.ErrRateLimited) {
				return res, err
			}
			lastErr = err
			continue
		}
		succeeded = true

		owned := articles[:0]
		for _, a := range articles {
			if outlet.Owns(a.URL, a.Source) {
				owned = append(owned, a)
			}
		}
		if len(owned) > 0 {
			res.Query = q
			res.Articles = owned
			return res, nil
		}
	}

	if !succeeded && lastErr != nil {
		return res, lastErr
	}
	return res, nil
}

func allFailed(errs []error) bool {
	for _, err := range errs {
		if err == nil {
			return false
		}
	}
	return true
}
