package natsadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/gridgeo/internal/core/domain"
)

// ErrInvalidRequest marks an import request that can never succeed. Such messages
// are terminated instead of redelivered.
var ErrInvalidRequest = errors.New("invalid import request")

// Subscriber implements ports.EventSubscriber using NATS JetStream.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber creates a subscriber with its own NATS connection.
func NewSubscriber(url string) (*Subscriber, error) {
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
	return &Subscriber{conn: conn, js: js}, nil
}

// SubscribeImportRequests delivers import requests to handler. Failed handlers get the
// message redelivered up to three times.
func (s *Subscriber) SubscribeImportRequests(ctx context.Context, handler func(ctx context.Context, req *domain.ImportRequest) error) error {
	sub, err := s.js.Subscribe(SubjectImportRequest, func(msg *nats.Msg) {
		req, err := decodeImportRequest(msg.Data)
		if err != nil {
			slog.Warn("dropping import request", "error", err)
			_ = msg.Term()
			return
		}
		if err := handler(ctx, req); err != nil {
			if errors.Is(err, ErrInvalidRequest) {
				_ = msg.Term()
				return
			}
			slog.Error("import request failed", "network", req.NetworkID, "error", err)
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable("position-importer"),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

func decodeImportRequest(data []byte) (*domain.ImportRequest, error) {
	var req domain.ImportRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if req.NetworkID == "" {
		return nil, fmt.Errorf("%w: network_id is required", ErrInvalidRequest)
	}
	return &req, nil
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
