// Package metrics exposes Prometheus collectors for the service
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ppiankov/newsgate/internal/model"
)

const namespace = "newsgate"

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	Stage1Decisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage1_decisions_total",
			Help:      "Stage 1 pre-filter decisions",
		},
		[]string{"decision"},
	)

	Verdicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verdicts_total",
			Help:      "Stage 2 verdicts",
		},
		[]string{"verdict"},
	)

	OverallScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "overall_score",
			Help:      "Distribution of Stage 2 overall scores",
			Buckets:   prometheus.LinearBuckets(10, 10, 10),
		},
	)

	CollaboratorCalls = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "collaborator_call_duration_seconds",
			Help:      "Duration of calls to external collaborators",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"collaborator"},
	)

	CollaboratorFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collaborator_failures_total",
			Help:      "Failed calls to external collaborators by error kind",
		},
		[]string{"collaborator", "kind"},
	)

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Verdict events published",
		},
		[]string{"status"},
	)
)

// ObserveStage1 counts a Stage 1 decision
func ObserveStage1(d *model.Stage1Decision) {
	if d == nil {
		return
	}
	Stage1Decisions.WithLabelValues(string(d.Decision)).Inc()
}

// ObserveVerdict counts a Stage 2 result
func ObserveVerdict(r *model.NewsVerificationResult) {
	if r == nil {
		return
	}
	Verdicts.WithLabelValues(string(r.OverallVerdict)).Inc()
	OverallScores.Observe(float64(r.OverallScore))
}

// ObserveCall records the duration of a collaborator call and, when err is
// non-nil, its failure kind
func ObserveCall(collaborator string, start time.Time, err error) {
	CollaboratorCalls.WithLabelValues(collaborator).Observe(time.Since(start).Seconds())
	if err != nil {
		CollaboratorFailures.WithLabelValues(collaborator, KindLabel(err)).Inc()
	}
}

// KindLabel is the metric label for an error kind
func KindLabel(err error) string {
	switch kind := model.KindOf(err); {
	case kind == nil:
		return "none"
	case errors.Is(kind, model.ErrValidation):
		return "validation"
	case errors.Is(kind, model.ErrRateLimited):
		return "rate_limited"
	case errors.Is(kind, model.ErrPaymentRequired):
		return "payment_required"
	default:
		return "upstream"
	}
}

// Middleware records request counts and durations. The matched route is
// used as the path label to keep cardinality bounded.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method

		HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
