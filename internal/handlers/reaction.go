package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/classmood/moodboard/internal/engine"
	"github.com/classmood/moodboard/internal/models"
)

// ReactionEngine is the reconciliation surface the handler depends on.
type ReactionEngine interface {
	ToggleReaction(ctx context.Context, moodID uuid.UUID, reactionType, userName string) (engine.ToggleResult, error)
	ReactionsFor(moodID uuid.UUID) []models.Reaction
	CountsByType(moodID uuid.UUID) map[string]int
	HasReacted(moodID uuid.UUID, userName, reactionType string) bool
}

type ReactionHandler struct {
	engine ReactionEngine
}

func NewReactionHandler(engine ReactionEngine) *ReactionHandler {
	return &ReactionHandler{engine: engine}
}

type ToggleReactionRequest struct {
	ReactionType string `json:"reaction_type"`
	UserName     string `json:"user_name,omitempty"`
}

type ToggleReactionResponse struct {
	Result string         `json:"result"`
	Counts map[string]int `json:"counts"`
}

type ReactionListResponse struct {
	Reactions []models.Reaction `json:"reactions"`
	Counts    map[string]int    `json:"counts"`
}

type AllowedReactionsResponse struct {
	Reactions []string `json:"reactions"`
}

func (h *ReactionHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	moodID, err := parseMoodID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid mood ID")
		return
	}

	var req ToggleReactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.engine.ToggleReaction(r.Context(), moodID, req.ReactionType, req.UserName)
	if errors.Is(err, engine.ErrInvalidReaction) {
		writeError(w, http.StatusBadRequest, "Unsupported reaction type")
		return
	}
	if errors.Is(err, engine.ErrMissingIdentity) {
		writeError(w, http.StatusBadRequest, "Display name required")
		return
	}
	if err != nil {
		log.Printf("Error toggling reaction: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, ToggleReactionResponse{
		Result: string(result),
		Counts: h.engine.CountsByType(moodID),
	})
}

func (h *ReactionHandler) List(w http.ResponseWriter, r *http.Request) {
	moodID, err := parseMoodID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid mood ID")
		return
	}

	writeJSON(w, http.StatusOK, ReactionListResponse{
		Reactions: h.engine.ReactionsFor(moodID),
		Counts:    h.engine.CountsByType(moodID),
	})
}

func (h *ReactionHandler) GetAllowedReactions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, AllowedReactionsResponse{Reactions: models.AllowedReactions})
}
