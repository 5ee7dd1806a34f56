package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncRecorder is a flushable ResponseWriter that is safe to read while
// the stream goroutine is still writing.
type syncRecorder struct {
	mu     sync.Mutex
	status int
	header http.Header
	body   bytes.Buffer
}

func newSyncRecorder() *syncRecorder {
	return &syncRecorder{header: make(http.Header)}
}

func (r *syncRecorder) Header() http.Header {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.header
}

func (r *syncRecorder) WriteHeader(status int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = status
}

func (r *syncRecorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.body.Write(p)
}

func (r *syncRecorder) Flush() {}

func (r *syncRecorder) snapshot() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.body.String()
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestEventsHandler_BroadcastWithoutSubscribers(t *testing.T) {
	h := NewEventsHandler(nil)
	// Must not panic or block.
	h.Broadcast()
	if h.SubscriberCount() != 0 {
		t.Fatalf("expected no subscribers, got %d", h.SubscriberCount())
	}
}

func TestEventsHandler_StreamReceivesBroadcasts(t *testing.T) {
	h := NewEventsHandler(nil)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/events", nil).WithContext(ctx)
	rec := newSyncRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.Stream(rec, req)
	}()

	waitFor(t, func() bool { return h.SubscriberCount() == 1 })

	// The initial event arrives before any broadcast.
	waitFor(t, func() bool { return strings.Contains(rec.snapshot(), "event: change") })

	h.Broadcast()
	waitFor(t, func() bool { return strings.Count(rec.snapshot(), "event: change") >= 2 })

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not stop after context cancellation")
	}

	if h.SubscriberCount() != 0 {
		t.Fatalf("expected subscriber cleanup, got %d", h.SubscriberCount())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("expected SSE content type, got %q", ct)
	}
}

func TestEventsHandler_StreamRequiresFlusher(t *testing.T) {
	h := NewEventsHandler(nil)

	rr := httptest.NewRecorder()
	// Hide the recorder's Flusher behind a plain ResponseWriter.
	h.Stream(noFlushWriter{rr}, httptest.NewRequest(http.MethodGet, "/api/events", nil))

	assertErrorResponse(t, rr, http.StatusInternalServerError, "Streaming unsupported")
}

type noFlushWriter struct {
	rr *httptest.ResponseRecorder
}

func (w noFlushWriter) Header() http.Header         { return w.rr.Header() }
func (w noFlushWriter) Write(p []byte) (int, error) { return w.rr.Write(p) }
func (w noFlushWriter) WriteHeader(status int)      { w.rr.WriteHeader(status) }
