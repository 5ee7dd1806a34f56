package handlers

import (
	"context"
	"net/http"
	"time"
)

// HealthChecker is implemented by the database wrappers.
type HealthChecker interface {
	Health(ctx context.Context) error
}

type HealthHandler struct {
	postgres HealthChecker
	redis    HealthChecker
}

func NewHealthHandler(postgres, redis HealthChecker) *HealthHandler {
	return &HealthHandler{postgres: postgres, redis: redis}
}

type HealthResponse struct {
	Status   string `json:"status"`
	Postgres string `json:"postgres,omitempty"`
	Redis    string `json:"redis,omitempty"`
}

func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	h.check(w, r)
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	h.check(w, r)
}

func (h *HealthHandler) check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	resp := HealthResponse{Status: "ok", Postgres: "ok", Redis: "ok"}
	status := http.StatusOK

	if err := h.postgres.Health(ctx); err != nil {
		resp.Status = "degraded"
		resp.Postgres = err.Error()
		status = http.StatusServiceUnavailable
	}
	if err := h.redis.Health(ctx); err != nil {
		resp.Status = "degraded"
		resp.Redis = err.Error()
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, resp)
}
