package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/classmood/moodboard/internal/identity"
)

type IdentityHandler struct {
	resolver *identity.Resolver
}

func NewIdentityHandler(resolver *identity.Resolver) *IdentityHandler {
	return &IdentityHandler{resolver: resolver}
}

type SetIdentityRequest struct {
	UserName string `json:"user_name"`
}

type IdentityResponse struct {
	UserName string `json:"user_name,omitempty"`
	Set      bool   `json:"set"`
}

func (h *IdentityHandler) Get(w http.ResponseWriter, r *http.Request) {
	name, ok := h.resolver.Resolve()
	writeJSON(w, http.StatusOK, IdentityResponse{UserName: name, Set: ok})
}

func (h *IdentityHandler) Set(w http.ResponseWriter, r *http.Request) {
	var req SetIdentityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.resolver.Set(req.UserName); err != nil {
		if errors.Is(err, identity.ErrInvalidName) {
			writeError(w, http.StatusBadRequest, "Display name must be at least 2 characters")
			return
		}
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	name, _ := h.resolver.Resolve()
	writeJSON(w, http.StatusOK, IdentityResponse{UserName: name, Set: true})
}
