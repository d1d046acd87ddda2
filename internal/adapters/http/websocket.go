package http

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	natsadapter "github.com/samirrijal/gridgeo/internal/adapters/nats"
	"github.com/samirrijal/gridgeo/internal/core/domain"
	"github.com/samirrijal/gridgeo/internal/pkg/metrics"
)

// wsMessage is sent from client to subscribe/unsubscribe to feeds.
type wsMessage struct {
	Action  string `json:"action"`  // "subscribe" | "unsubscribe"
	Channel string `json:"channel"` // "positions" | "imports" (default: positions)
	Kind    string `json:"kind"`    // element kind filter for positions (optional)
	Element string `json:"element"` // element id filter for positions (optional, needs kind)
	Network string `json:"network"` // network filter for imports (optional)
}

// subject maps a client message to a NATS subject.
func (m wsMessage) subject() (string, string) {
	channel := m.Channel
	if channel == "" {
		channel = "positions"
	}
	switch channel {
	case "positions":
		if m.Kind == "" {
			if m.Element != "" {
				return "", "element filter requires kind"
			}
			return natsadapter.SubjectPositions, ""
		}
		kind := domain.ElementKind(m.Kind)
		if !kind.Valid() {
			return "", "unknown kind: " + m.Kind
		}
		if m.Element == "" {
			return natsadapter.SubjectPositionPrefix + m.Kind + ".>", ""
		}
		return natsadapter.PositionSubject(domain.ElementRef{Kind: kind, ID: m.Element}), ""
	case "imports":
		if m.Network != "" {
			return natsadapter.SubjectImportCompleted + m.Network, ""
		}
		return natsadapter.SubjectImportCompleted + ">", ""
	default:
		return "", "unknown channel: " + channel
	}
}

// WebSocketHandler returns a handler that upgrades to WebSocket
// and relays position events from NATS to connected clients.
// Clients send JSON: {"action":"subscribe","channel":"positions","kind":"line"}
// All position events are relayed by default.
func WebSocketHandler(nc *nats.Conn) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		remoteAddr := c.RemoteAddr().String()
		slog.Info("ws client connected", "remote", remoteAddr)
		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		var mu sync.Mutex
		subs := make(map[string]*nats.Subscription) // subject -> subscription

		// Helper: thread-safe write
		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		sub, err := nc.Subscribe(natsadapter.SubjectPositions, func(msg *nats.Msg) {
			_ = writeJSON(json.RawMessage(msg.Data))
		})
		if err != nil {
			slog.Error("ws default subscribe failed", "error", err)
			return
		}
		subs[natsadapter.SubjectPositions] = sub

		// Keep-alive ping
		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				_ = writeJSON(map[string]string{"error": "invalid JSON"})
				continue
			}

			subject, problem := m.subject()
			if problem != "" {
				_ = writeJSON(map[string]string{"error": problem})
				continue
			}

			switch m.Action {
			case "subscribe":
				if _, exists := subs[subject]; exists {
					_ = writeJSON(map[string]string{"status": "already subscribed", "subject": subject})
					continue
				}
				s, err := nc.Subscribe(subject, func(msg *nats.Msg) {
					_ = writeJSON(json.RawMessage(msg.Data))
				})
				if err != nil {
					_ = writeJSON(map[string]string{"error": "subscribe failed: " + err.Error()})
					continue
				}
				subs[subject] = s
				_ = writeJSON(map[string]string{"status": "subscribed", "subject": subject})

			case "unsubscribe":
				if s, exists := subs[subject]; exists {
					_ = s.Unsubscribe()
					delete(subs, subject)
					_ = writeJSON(map[string]string{"status": "unsubscribed", "subject": subject})
				} else {
					_ = writeJSON(map[string]string{"error": "not subscribed to " + subject})
				}

			default:
				_ = writeJSON(map[string]string{"error": "unknown action: " + m.Action})
			}
		}

		close(done)
		for _, s := range subs {
			_ = s.Unsubscribe()
		}
		slog.Info("ws client disconnected", "remote", remoteAddr)
	}
}
