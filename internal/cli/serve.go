package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ppiankov/newsgate/internal/feeds"
	"github.com/ppiankov/newsgate/internal/pipeline"
	"github.com/ppiankov/newsgate/internal/server"
)

var serveAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the verification HTTP API",
	Long: `Serve exposes the analysis over HTTP:

  POST /api/stage1    Stage 1 pre-filter
  POST /api/verify    Stage 2 verification
  POST /api/analyze   both stages
  GET  /health
  GET  /metrics       Prometheus metrics

Wire feeds are refreshed in the background on the configured schedule.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p, logger, err := buildPipeline(ctx)
	if err != nil {
		return err
	}
	defer p.Close()
	ctx = logger.WithContext(ctx)

	cfg := p.Config()
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	if store := p.FeedStore(); store != nil && cfg.Feeds.RefreshSchedule != "" {
		scheduler, err := feeds.NewScheduler(ctx, store, cfg.Feeds.RefreshSchedule)
		if err != nil {
			return fmt.Errorf("feed scheduler: %w", err)
		}
		scheduler.Start(ctx)
		defer scheduler.Stop()
	}

	logger.Info().
		Bool("llm", p.LLMEnabled()).
		Bool("search", p.SearchEnabled()).
		Bool("feeds", p.FeedStore() != nil).
		Msg("newsgate ready")

	return server.New(cfg.Server, p, logger).Run(ctx)
}

// buildPipeline loads configuration and wires the pipeline with a logger
// attached to ctx
func buildPipeline(ctx context.Context) (*pipeline.Pipeline, zerolog.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	logger := newLogger(cfg)

	p, err := pipeline.NewPipeline(logger.WithContext(ctx), cfg)
	if err != nil {
		return nil, logger, fmt.Errorf("build pipeline: %w", err)
	}
	return p, logger, nil
}
