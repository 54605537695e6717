// Package events publishes completed analyses to NATS
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/ppiankov/newsgate/internal/heuristics"
	"github.com/ppiankov/newsgate/internal/metrics"
	"github.com/ppiankov/newsgate/internal/model"
)

// Publisher emits one message per finished analysis
type Publisher interface {
	Publish(ctx context.Context, report *model.AnalysisReport) error
	Close()
}

// VerdictMessage is the JSON payload published for an analysis
type VerdictMessage struct {
	SourceURL    string                `json:"sourceUrl,omitempty"`
	Headline     string                `json:"headline"`
	Decision     model.Decision        `json:"decision"`
	Verdict      model.Verdict         `json:"verdict,omitempty"`
	OverallScore *int                  `json:"overallScore,omitempty"`
	Report       *model.AnalysisReport `json:"report"`
	Timestamp    time.Time             `json:"timestamp"`
	Source       string                `json:"source"`
	Version      string                `json:"version"`
}

// NewMessage builds the published payload for a report
func NewMessage(report *model.AnalysisReport, headline string) VerdictMessage {
	msg := VerdictMessage{
		SourceURL: report.SourceURL,
		Headline:  headline,
		Report:    report,
		Timestamp: time.Now().UTC(),
		Source:    "newsgate",
		Version:   "1.0",
	}
	if report.Stage1 != nil {
		msg.Decision = report.Stage1.Decision
	}
	if report.Stage2 != nil {
		msg.Verdict = report.Stage2.OverallVerdict
		score := report.Stage2.OverallScore
		msg.OverallScore = &score
	}
	return msg
}

// NATSPublisher publishes verdict messages on a subject
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
}

// New connects to NATS. An empty URL yields a publisher that drops
// everything.
func New(cfg model.EventsConfig) (Publisher, error) {
	if cfg.NATSURL == "" {
		return Nop{}, nil
	}

	nc, err := nats.Connect(cfg.NATSURL,
		nats.Name("newsgate"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	subject := cfg.Subject
	if subject == "" {
		subject = "newsgate.verdicts"
	}
	return &NATSPublisher{conn: nc, subject: subject}, nil
}

// Publish sends the report. The headline is the first line of its content.
func (p *NATSPublisher) Publish(ctx context.Context, report *model.AnalysisReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(NewMessage(report, heuristics.FirstLine(report.Content)))
	if err != nil {
		return fmt.Errorf("marshal verdict: %w", err)
	}

	if err := p.conn.Publish(p.subject, data); err != nil {
		metrics.EventsPublished.WithLabelValues("error").Inc()
		return fmt.Errorf("publish verdict: %w", err)
	}
	metrics.EventsPublished.WithLabelValues("ok").Inc()
	return nil
}

// Close drains pending messages and closes the connection
func (p *NATSPublisher) Close() {
	if p.conn != nil {
		_ = p.conn.Drain()
	}
}

// Nop discards every report
type Nop struct{}

func (Nop) Publish(context.Context, *model.AnalysisReport) error { return nil }
func (Nop) Close()                                               {}
