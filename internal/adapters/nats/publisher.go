package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/gridgeo/internal/core/domain"
)

// Subjects and streams used for position events.
const (
	StreamPositions      = "GRID_POSITIONS"
	StreamImportRequests = "GRID_IMPORT_REQUESTS"

	SubjectPositionPrefix  = "grid.position."
	SubjectPositions       = "grid.position.>"
	SubjectImportCompleted = "grid.import.completed."
	SubjectImportRequest   = "grid.import.request"
)

// PositionSubject returns the subject a position event is published on.
func PositionSubject(ref domain.ElementRef) string {
	return SubjectPositionPrefix + string(ref.Kind) + "." + subjectToken(ref.ID)
}

// subjectToken replaces characters NATS reserves in subject tokens.
func subjectToken(s string) string {
	b := []byte(s)
	for i, c := range b {
		switch c {
		case '.', '*', '>', ' ', '\t':
			b[i] = '_'
		}
	}
	return string(b)
}

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	if err := ensureStreams(js); err != nil {
		return nil, err
	}

	return &Publisher{conn: conn, js: js}, nil
}

func ensureStreams(js nats.JetStreamContext) error {
	streams := []nats.StreamConfig{
		{
			Name:      StreamPositions,
			Subjects:  []string{SubjectPositions, SubjectImportCompleted + ">"},
			Retention: nats.InterestPolicy,
			MaxAge:    24 * time.Hour,
			Storage:   nats.FileStorage,
		},
		{
			Name:      StreamImportRequests,
			Subjects:  []string{SubjectImportRequest},
			Retention: nats.WorkQueuePolicy,
			MaxAge:    24 * time.Hour,
			Storage:   nats.FileStorage,
		},
	}

	for _, cfg := range streams {
		if _, err := js.AddStream(&cfg); err != nil {
			// Stream may already exist, try update
			if _, err := js.UpdateStream(&cfg); err != nil {
				return fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
			}
		}
	}
	return nil
}

func (p *Publisher) PublishPositionAttached(ctx context.Context, event *domain.PositionAttachedEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(PositionSubject(event.Element), data, nats.Context(ctx))
	return err
}

func (p *Publisher) PublishImportCompleted(ctx context.Context, event *domain.ImportCompletedEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(SubjectImportCompleted+subjectToken(event.Report.NetworkID), data, nats.Context(ctx))
	return err
}

func (p *Publisher) PublishImportRequest(ctx context.Context, req *domain.ImportRequest) error {
	data, err := json.Marshal(req)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(SubjectImportRequest, data, nats.Context(ctx))
	return err
}

// Ping reports whether the connection is up.
func (p *Publisher) Ping(ctx context.Context) error {
	if !p.conn.IsConnected() {
		return fmt.Errorf("nats: %s", p.conn.Status())
	}
	return nil
}

// Conn exposes the underlying connection for core subscriptions.
func (p *Publisher) Conn() *nats.Conn { return p.conn }

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("gridgeo"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
