package models

import (
	"time"

	"github.com/google/uuid"
)

// AllowedReactions lists the reaction emojis the classroom UI offers:
// like, love, laugh, wow, celebrate.
var AllowedReactions = []string{"👍", "❤️", "😂", "😮", "🎉"}

type Reaction struct {
	ID           uuid.UUID `json:"id"`
	MoodID       uuid.UUID `json:"mood_id"`
	UserName     string    `json:"user_name"`
	ReactionType string    `json:"reaction_type"`
	CreatedAt    time.Time `json:"created_at"`
}

type ReactionCount struct {
	ReactionType string `json:"reaction_type"`
	Count        int    `json:"count"`
}

func IsAllowedReaction(reactionType string) bool {
	for _, r := range AllowedReactions {
		if r == reactionType {
			return true
		}
	}
	return false
}
