package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func assertErrorResponse(t *testing.T, rr *httptest.ResponseRecorder, status int, message string) {
	t.Helper()
	if rr.Code != status {
		t.Fatalf("expected status %d, got %d", status, rr.Code)
	}
	var resp ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding error response: %v", err)
	}
	if resp.Error != message {
		t.Fatalf("expected error %q, got %q", message, resp.Error)
	}
}

func TestWriteJSON_SetsContentType(t *testing.T) {
	rr := httptest.NewRecorder()
	writeJSON(rr, http.StatusTeapot, map[string]string{"hello": "world"})

	if rr.Code != http.StatusTeapot {
		t.Fatalf("expected status %d, got %d", http.StatusTeapot, rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected JSON content type, got %q", ct)
	}
}

func TestParseMoodID(t *testing.T) {
	id := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/api/moods/"+id.String(), nil)
	req.SetPathValue("id", id.String())
	got, err := parseMoodID(req)
	if err != nil || got != id {
		t.Fatalf("expected %v, got %v (%v)", id, got, err)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/moods/nope", nil)
	req.SetPathValue("id", "nope")
	if _, err := parseMoodID(req); err == nil {
		t.Fatal("expected error for malformed ID")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/moods/", nil)
	if _, err := parseMoodID(req); err == nil {
		t.Fatal("expected error for missing ID")
	}
}
