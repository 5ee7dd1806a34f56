package models

import (
	"time"

	"github.com/google/uuid"
)

// Mood is a shared classroom mood entry that reactions attach to.
type Mood struct {
	ID        uuid.UUID `json:"id"`
	UserName  string    `json:"user_name"`
	Emoji     string    `json:"emoji"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
