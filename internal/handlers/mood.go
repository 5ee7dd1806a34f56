package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/classmood/moodboard/internal/models"
	"github.com/classmood/moodboard/internal/services"
)

type MoodHandler struct {
	moodService services.MoodServiceInterface
}

func NewMoodHandler(moodService services.MoodServiceInterface) *MoodHandler {
	return &MoodHandler{moodService: moodService}
}

type CreateMoodRequest struct {
	UserName string `json:"user_name"`
	Emoji    string `json:"emoji"`
	Note     string `json:"note,omitempty"`
}

type MoodResponse struct {
	Mood *models.Mood `json:"mood"`
}

type MoodListResponse struct {
	Moods []models.Mood `json:"moods"`
}

func (h *MoodHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateMoodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	mood, err := h.moodService.Create(r.Context(), req.UserName, req.Emoji, req.Note)
	if errors.Is(err, services.ErrInvalidUserName) {
		writeError(w, http.StatusBadRequest, "Display name must be at least 2 characters")
		return
	}
	if errors.Is(err, services.ErrMissingEmoji) {
		writeError(w, http.StatusBadRequest, "Mood emoji is required")
		return
	}
	if err != nil {
		log.Printf("Error creating mood: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, MoodResponse{Mood: mood})
}

func (h *MoodHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		parsed, err := strconv.Atoi(limitParam)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = parsed
	}

	moods, err := h.moodService.List(r.Context(), limit)
	if err != nil {
		log.Printf("Error listing moods: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, MoodListResponse{Moods: moods})
}

func (h *MoodHandler) Get(w http.ResponseWriter, r *http.Request) {
	moodID, err := parseMoodID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid mood ID")
		return
	}

	mood, err := h.moodService.Get(r.Context(), moodID)
	if errors.Is(err, services.ErrMoodNotFound) {
		writeError(w, http.StatusNotFound, "Mood not found")
		return
	}
	if err != nil {
		log.Printf("Error getting mood: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, MoodResponse{Mood: mood})
}
