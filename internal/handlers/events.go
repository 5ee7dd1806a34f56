package handlers

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/classmood/moodboard/internal/logging"
)

// EventsHandler streams cache-change notifications to browsers over SSE
// so they can redraw reaction counts without polling. Wire Broadcast into
// the engine's change hook.
type EventsHandler struct {
	logger *logging.Logger

	mu          sync.Mutex
	subscribers map[chan struct{}]struct{}
}

func NewEventsHandler(logger *logging.Logger) *EventsHandler {
	if logger == nil {
		logger = logging.Default
	}
	return &EventsHandler{
		logger:      logger,
		subscribers: make(map[chan struct{}]struct{}),
	}
}

// Broadcast wakes every connected stream. Slow clients that already have
// a pending notification are skipped, not blocked on.
func (h *EventsHandler) Broadcast() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "Streaming unsupported")
		return
	}

	ch := make(chan struct{}, 1)
	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		delete(h.subscribers, ch)
		h.mu.Unlock()
	}()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	// Initial event so the client draws immediately.
	fmt.Fprint(w, "event: change\ndata: {}\n\n")
	flusher.Flush()

	keepalive := time.NewTicker(30 * time.Second)
	defer keepalive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ch:
			if _, err := fmt.Fprint(w, "event: change\ndata: {}\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case <-keepalive.C:
			if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// SubscriberCount reports how many streams are connected.
func (h *EventsHandler) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}
