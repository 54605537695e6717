package feeds

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Scheduler refreshes a store on a cron schedule
type Scheduler struct {
	cron  *cron.Cron
	store *Store
}

// NewScheduler registers a refresh of store on the standard five-field cron
// spec. The returned scheduler is not started.
func NewScheduler(ctx context.Context, store *Store, spec string) (*Scheduler, error) {
	logger := zerolog.Ctx(ctx)

	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		if err := store.Refresh(ctx); err != nil {
			logger.Warn().Err(err).Msg("feed refresh failed")
			return
		}
		logger.Debug().Msg("feeds refreshed")
	})
	if err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", spec, err)
	}

	return &Scheduler{cron: c, store: store}, nil
}

// Start warms the cache in the background and starts the schedule
func (s *Scheduler) Start(ctx context.Context) {
	go func() {
		if err := s.store.Refresh(ctx); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("initial feed load failed")
		}
	}()
	s.cron.Start()
}

// Stop stops the schedule and waits for a running refresh to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
