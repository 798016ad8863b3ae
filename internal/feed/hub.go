// Package feed streams profile updates to connected dashboards over WebSocket.
package feed

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/acoulibaly-ghb/lex-publica-admin-l2hz/internal/domain"
	"github.com/coder/websocket"
)

const (
	writeTimeout = 5 * time.Second
	// queueSize is how many events may wait for a slow subscriber before it
	// is dropped.
	queueSize = 16
)

// Event is the message sent to subscribers.
type Event struct {
	Type    string                `json:"type"`
	Profile domain.StudentProfile `json:"profile"`
}

type subscriber struct {
	send chan []byte
}

// Hub tracks dashboard connections and fans out profile updates.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[*subscriber]struct{}
	origins     []string
	logger      *slog.Logger
}

// NewHub creates a hub accepting connections from the given origin patterns.
func NewHub(originPatterns []string, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		subscribers: make(map[*subscriber]struct{}),
		origins:     originPatterns,
		logger:      logger,
	}
}

// Count returns the number of connected subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// ServeHTTP upgrades the request and writes queued events to the connection
// until the client goes away or falls behind. Messages sent by clients are
// ignored.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.origins,
	})
	if err != nil {
		h.logger.Error("Failed to accept WebSocket", "error", err, "ip", r.RemoteAddr)
		return
	}

	sub := &subscriber{send: make(chan []byte, queueSize)}
	h.register(sub)
	defer h.unregister(sub)

	ctx := ws.CloseRead(r.Context())
	status, reason := websocket.StatusNormalClosure, "feed closed"

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case data, ok := <-sub.send:
			if !ok {
				status, reason = websocket.StatusPolicyViolation, "subscriber too slow"
				break loop
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := ws.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				h.logger.Debug("Dropping feed subscriber", "error", err)
				status, reason = websocket.StatusGoingAway, "write failed"
				break loop
			}
		}
	}

	if closeErr := ws.Close(status, reason); closeErr != nil {
		h.logger.Debug("Failed to close websocket", "error", closeErr)
	}
}

// Publish queues a profile update for every subscriber and returns without
// waiting for any write. A subscriber whose queue is full is disconnected.
func (h *Hub) Publish(profile domain.StudentProfile) {
	data, err := json.Marshal(Event{Type: "profile", Profile: profile})
	if err != nil {
		h.logger.Error("Failed to encode feed event", "error", err, "profile_id", profile.ID)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subscribers {
		select {
		case sub.send <- data:
		default:
			h.logger.Warn("Feed subscriber fell behind, disconnecting", "profile_id", profile.ID)
			delete(h.subscribers, sub)
			close(sub.send)
		}
	}
}

func (h *Hub) register(sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subscribers[sub] = struct{}{}
	h.logger.Info("Feed subscriber registered", "subscribers", len(h.subscribers))
}

func (h *Hub) unregister(sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subscribers[sub]; !ok {
		return
	}
	delete(h.subscribers, sub)
	h.logger.Info("Feed subscriber unregistered", "subscribers", len(h.subscribers))
}
