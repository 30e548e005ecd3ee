package serve

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/pressgen/internal/config"
	"git.home.luguber.info/inful/pressgen/internal/manifest"
)

// BuildEvent is published after every build in serve mode so downstream
// consumers (deploy hooks, cache invalidators) can react to site changes.
type BuildEvent struct {
	BuildID     string    `json:"build_id"`
	Finished    time.Time `json:"finished"`
	Pages       int       `json:"pages"`
	Fingerprint string    `json:"fingerprint"`
	Outcome     string    `json:"outcome"`
	Trigger     string    `json:"trigger"`
}

// EventPublisher publishes build events.
type EventPublisher interface {
	PublishBuild(event BuildEvent) error
	Close()
}

// NATSPublisher publishes build events to a NATS subject.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
}

// NewNATSPublisher connects to the configured NATS server.
func NewNATSPublisher(cfg config.EventsConfig) (*NATSPublisher, error) {
	conn, err := nats.Connect(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	slog.Info("Connected to event broker", "url", cfg.URL, "subject", cfg.Subject)
	return &NATSPublisher{conn: conn, subject: cfg.Subject}, nil
}

// PublishBuild serializes and publishes the event. Publish failures are not
// fatal to the build; callers log and continue.
func (p *NATSPublisher) PublishBuild(event BuildEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal build event: %w", err)
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("publish build event: %w", err)
	}
	return nil
}

// Close drains and closes the connection.
func (p *NATSPublisher) Close() {
	if p.conn != nil {
		_ = p.conn.Drain()
	}
}

// NoopPublisher discards events. Used when event publishing is disabled.
type NoopPublisher struct{}

func (NoopPublisher) PublishBuild(BuildEvent) error { return nil }
func (NoopPublisher) Close()                        {}

// EventFromSummary builds the published event from a finished build summary.
func EventFromSummary(sum manifest.Summary, outcome, trigger string) BuildEvent {
	return BuildEvent{
		BuildID:     sum.BuildID,
		Finished:    sum.Generated,
		Pages:       sum.Pages,
		Fingerprint: sum.Fingerprint,
		Outcome:     outcome,
		Trigger:     trigger,
	}
}
