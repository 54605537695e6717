// Package server is the HTTP surface: JSON endpoints for Stage 1, Stage 2
// and the combined analysis, plus health and metrics.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/ppiankov/newsgate/internal/metrics"
	"github.com/ppiankov/newsgate/internal/model"
	"github.com/ppiankov/newsgate/internal/pipeline"
	"github.com/ppiankov/newsgate/internal/worker"
)

// Analyzer is the part of the pipeline the server calls
type Analyzer interface {
	RunStage1(ctx context.Context, content, sourceURL string) (*model.Stage1Decision, error)
	RunStage2(ctx context.Context, content, sourceURL string) (*model.NewsVerificationResult, error)
	Analyze(ctx context.Context, content, sourceURL string) (*model.AnalysisReport, error)
	FetchArticle(ctx context.Context, rawURL string) (*pipeline.FetchResult, error)
}

// Server wraps the gin engine
type Server struct {
	cfg      model.ServerConfig
	analyzer Analyzer
	logger   zerolog.Logger
	limiter  *worker.Limiter // nil when client limiting is off
	engine   *gin.Engine
}

// New builds the router
func New(cfg model.ServerConfig, analyzer Analyzer, logger zerolog.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		analyzer: analyzer,
		logger:   logger,
	}
	if cfg.ClientRPS > 0 {
		s.limiter = worker.NewLimiter(cfg.ClientRPS, cfg.ClientBurst)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.requestLogger())
	r.Use(metrics.Middleware())
	r.Use(cors.New(corsConfig(cfg.AllowedOrigins)))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "newsgate"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api")
	api.Use(s.rateLimit())
	{
		api.POST("/stage1", s.handleStage1)
		api.POST("/verify", s.handleVerify)
		api.POST("/analyze", s.handleAnalyze)
	}

	s.engine = r
	return s
}

func corsConfig(origins []string) cors.Config {
	config := cors.DefaultConfig()
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = origins
	}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Client-Info", "Apikey"}
	config.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	return config
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on the configured address until ctx is cancelled, then shuts
// down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.cfg.Addr).Msg("HTTP server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info().Msg("HTTP server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// requestLogger attaches a request-scoped logger to the context and logs
// each request when it completes
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		logger := s.logger.With().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("client", c.ClientIP()).
			Logger()
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context()))

		c.Next()

		event := logger.Info()
		if c.Writer.Status() >= http.StatusInternalServerError {
			event = logger.Warn()
		}
		event.Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

func (s *Server) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.limiter != nil && !s.limiter.Allow(c.ClientIP()) {
			writeError(c, model.ErrRateLimited)
			c.Abort()
			return
		}
		c.Next()
	}
}

// analyzeRequest is the body of every analysis endpoint. With fetch set and
// no content, the article is downloaded from sourceUrl.
type analyzeRequest struct {
	Content   string `json:"content"`
	SourceURL string `json:"sourceUrl"`
	Fetch     bool   `json:"fetch"`
}

// bind decodes the request and resolves its content, writing the error
// response itself when it fails
func (s *Server) bind(c *gin.Context) (context.Context, context.CancelFunc, *analyzeRequest, bool) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return nil, nil, nil, false
	}

	ctx := c.Request.Context()
	cancel := context.CancelFunc(func() {})
	if s.cfg.RequestTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RequestTimeout)
	}

	if req.Fetch && strings.TrimSpace(req.Content) == "" {
		if req.SourceURL == "" {
			cancel()
			writeError(c, fmt.Errorf("fetch requires sourceUrl: %w", model.ErrValidation))
			return nil, nil, nil, false
		}
		res, err := s.analyzer.FetchArticle(ctx, req.SourceURL)
		if err != nil {
			cancel()
			writeError(c, err)
			return nil, nil, nil, false
		}
		req.Content = res.Article.Content()
		req.SourceURL = res.FinalURL
	}

	if strings.TrimSpace(req.Content) == "" {
		cancel()
		writeError(c, model.ErrValidation)
		return nil, nil, nil, false
	}
	return ctx, cancel, &req, true
}

func (s *Server) handleStage1(c *gin.Context) {
	ctx, cancel, req, ok := s.bind(c)
	if !ok {
		return
	}
	defer cancel()

	d, err := s.analyzer.RunStage1(ctx, req.Content, req.SourceURL)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (s *Server) handleVerify(c *gin.Context) {
	ctx, cancel, req, ok := s.bind(c)
	if !ok {
		return
	}
	defer cancel()

	result, err := s.analyzer.RunStage2(ctx, req.Content, req.SourceURL)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleAnalyze(c *gin.Context) {
	ctx, cancel, req, ok := s.bind(c)
	if !ok {
		return
	}
	defer cancel()

	report, err := s.analyzer.Analyze(ctx, req.Content, req.SourceURL)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// StatusFor maps an error kind to an HTTP status
func StatusFor(err error) int {
	switch model.KindOf(err) {
	case model.ErrValidation:
		return http.StatusBadRequest
	case model.ErrRateLimited:
		return http.StatusTooManyRequests
	case model.ErrPaymentRequired:
		return http.StatusPaymentRequired
	default:
		return http.StatusBadGateway
	}
}

func writeError(c *gin.Context, err error) {
	msg := model.UserMessage(err)
	var se *model.StageError
	if errors.As(err, &se) && se.Message != "" {
		msg = se.Message
	}
	if status := StatusFor(err); status >= http.StatusInternalServerError {
		zerolog.Ctx(c.Request.Context()).Warn().Err(err).Msg("analysis failed")
	}
	c.JSON(StatusFor(err), gin.H{"error": msg})
}
