package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/geosearch/internal/core/domain"
)

const (
	// SearchStream holds every search-executed event.
	SearchStream = "SEARCH_EVENTS"
	// SearchSubjectPrefix is followed by the search context.
	SearchSubjectPrefix = "search.executed."
	// SearchSubjects matches all search-executed subjects.
	SearchSubjects = SearchSubjectPrefix + ">"
)

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS, enables JetStream and ensures the search stream exists.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	cfg := &nats.StreamConfig{
		Name:      SearchStream,
		Subjects:  []string{SearchSubjects},
		Retention: nats.LimitsPolicy,
		MaxAge:    24 * time.Hour,
		Storage:   nats.FileStorage,
	}
	if _, err := js.AddStream(cfg); err != nil {
		// Stream may already exist, try update
		if _, err := js.UpdateStream(cfg); err != nil {
			conn.Close()
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// SearchSubject returns the subject events of sc are published on.
func SearchSubject(sc domain.SearchContext) string {
	return SearchSubjectPrefix + string(sc)
}

// PublishSearchExecuted publishes event to search.executed.<context>.
func (p *Publisher) PublishSearchExecuted(ctx context.Context, event *domain.SearchEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(SearchSubject(event.Context), data, nats.Context(ctx))
	return err
}

// Conn exposes the underlying connection for health checks and the websocket relay.
func (p *Publisher) Conn() *nats.Conn { return p.conn }

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("geosearch"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
