package store

import (
	"github.com/google/uuid"

	"github.com/classmood/moodboard/internal/models"
)

type EventType string

const (
	EventInsert EventType = "insert"
	EventDelete EventType = "delete"
)

// Event is a change notification for the reactions collection. Insert
// events carry the full canonical record; delete events carry only the id.
type Event struct {
	Type     EventType        `json:"type"`
	Reaction *models.Reaction `json:"reaction,omitempty"`
	ID       uuid.UUID        `json:"id,omitempty"`
}

func insertEvent(reaction models.Reaction) Event {
	r := reaction
	return Event{Type: EventInsert, Reaction: &r, ID: r.ID}
}

func deleteEvent(id uuid.UUID) Event {
	return Event{Type: EventDelete, ID: id}
}
