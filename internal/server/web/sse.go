package web

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/inovacc/fleetroster/internal/model"
)

// SSEEvent is one change notification pushed to dashboards.
type SSEEvent struct {
	Type    string `json:"type"`
	User    string `json:"user,omitempty"`
	Date    string `json:"date,omitempty"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

const (
	EventConnected         = "connected"
	EventHeartbeat         = "heartbeat"
	EventConfigChanged     = "config:changed"
	EventRepairsChanged    = "repairs:changed"
	EventAssignmentChanged = "assignment:changed"
	EventDaySaved          = "day:saved"
)

const (
	heartbeatInterval = 30 * time.Second
	subscriberBuffer  = 16
	publishBuffer     = 128
)

// subscriber is one open event stream. An empty user receives every event.
type subscriber struct {
	user string
	ch   chan SSEEvent
}

func (sub *subscriber) wants(ev SSEEvent) bool {
	return sub.user == "" || ev.User == "" || ev.User == sub.user
}

// SSEHub fans ledger change events out to connected dashboards. Filtering
// by user happens in the hub so slow streams for one user never see
// another user's traffic.
type SSEHub struct {
	mu      sync.RWMutex
	subs    map[*subscriber]struct{}
	publish chan SSEEvent
	joins   chan *subscriber
	leaves  chan *subscriber
	stopped chan struct{}
}

func NewSSEHub() *SSEHub {
	return &SSEHub{
		subs:    make(map[*subscriber]struct{}),
		publish: make(chan SSEEvent, publishBuffer),
		joins:   make(chan *subscriber),
		leaves:  make(chan *subscriber),
		stopped: make(chan struct{}),
	}
}

// Run delivers published events until ctx is canceled, then closes every
// subscriber stream.
func (h *SSEHub) Run(ctx context.Context) {
	defer close(h.stopped)

	for {
		select {
		case <-ctx.Done():
			h.dropAll()
			return
		case sub := <-h.joins:
			h.attach(sub)
		case sub := <-h.leaves:
			h.detach(sub)
		case ev := <-h.publish:
			h.deliver(ev)
		}
	}
}

func (h *SSEHub) attach(sub *subscriber) {
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	n := len(h.subs)
	h.mu.Unlock()

	slog.Debug("event stream opened", "user", sub.user, "streams", n)
}

func (h *SSEHub) detach(sub *subscriber) {
	h.mu.Lock()
	if _, ok := h.subs[sub]; ok {
		delete(h.subs, sub)
		close(sub.ch)
	}
	n := len(h.subs)
	h.mu.Unlock()

	slog.Debug("event stream closed", "user", sub.user, "streams", n)
}

func (h *SSEHub) dropAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs {
		close(sub.ch)
	}
	clear(h.subs)
}

func (h *SSEHub) deliver(ev SSEEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subs {
		if !sub.wants(ev) {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			slog.Debug("event stream lagging, event skipped", "user", sub.user, "type", ev.Type)
		}
	}
}

// Broadcast queues ev for delivery. It never blocks; a full queue drops
// the event.
func (h *SSEHub) Broadcast(ev SSEEvent) {
	select {
	case h.publish <- ev:
	default:
		slog.Warn("event queue full, dropping event", "type", ev.Type, "user", ev.User)
	}
}

// ClientCount returns the number of open streams.
func (h *SSEHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// subscribe registers a stream for user, normalised like every other user
// key. It reports false once the hub has stopped.
func (h *SSEHub) subscribe(user string) (*subscriber, bool) {
	sub := &subscriber{user: model.NormalizeUser(user), ch: make(chan SSEEvent, subscriberBuffer)}

	select {
	case h.joins <- sub:
		return sub, true
	case <-h.stopped:
		return nil, false
	}
}

func (h *SSEHub) unsubscribe(sub *subscriber) {
	select {
	case h.leaves <- sub:
	case <-h.stopped:
	}
}

// handleEvents streams change events. A user query parameter restricts the
// stream to that user's events.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, CodeInternal, "streaming unsupported")
		return
	}

	sub, ok := s.sseHub.subscribe(r.URL.Query().Get("user"))
	if !ok {
		writeError(w, http.StatusServiceUnavailable, CodeUnavailable, "server shutting down")
		return
	}
	defer s.sseHub.unsubscribe(sub)

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")

	writeEvent(w, flusher, SSEEvent{Type: EventConnected, User: sub.user, Message: "listening for changes"})

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, open := <-sub.ch:
			if !open {
				return
			}
			writeEvent(w, flusher, ev)
		case now := <-ticker.C:
			writeEvent(w, flusher, SSEEvent{
				Type: EventHeartbeat,
				Data: map[string]any{"at": now.UTC().Format(time.RFC3339), "streams": s.sseHub.ClientCount()},
			})
		}
	}
}

func writeEvent(w http.ResponseWriter, flusher http.Flusher, ev SSEEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		slog.Error("encode event", "type", ev.Type, "error", err)
		return
	}

	_, _ = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, payload)
	flusher.Flush()
}

// BroadcastEvent publishes ev to connected dashboards.
func (s *Server) BroadcastEvent(ev SSEEvent) {
	if s.sseHub == nil {
		return
	}
	s.sseHub.Broadcast(ev)
}
