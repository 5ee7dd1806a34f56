package engine

import (
	"github.com/google/uuid"

	"github.com/classmood/moodboard/internal/models"
)

// reactionCache mirrors the remote reactions collection in memory. Order
// is reverse chronological after a full load; later appends keep arrival
// order. Confined to the engine; callers only ever see copies.
type reactionCache struct {
	records []models.Reaction
	ids     map[uuid.UUID]struct{}
}

func newReactionCache() *reactionCache {
	return &reactionCache{ids: make(map[uuid.UUID]struct{})}
}

func (c *reactionCache) containsID(id uuid.UUID) bool {
	_, ok := c.ids[id]
	return ok
}

func (c *reactionCache) append(reaction models.Reaction) {
	c.records = append(c.records, reaction)
	c.ids[reaction.ID] = struct{}{}
}

func (c *reactionCache) removeByID(id uuid.UUID) bool {
	if !c.containsID(id) {
		return false
	}
	for i, r := range c.records {
		if r.ID == id {
			c.records = append(c.records[:i], c.records[i+1:]...)
			break
		}
	}
	delete(c.ids, id)
	return true
}

func (c *reactionCache) replaceAll(reactions []models.Reaction) {
	c.records = make([]models.Reaction, len(reactions))
	copy(c.records, reactions)
	c.ids = make(map[uuid.UUID]struct{}, len(reactions))
	for _, r := range reactions {
		c.ids[r.ID] = struct{}{}
	}
}

func (c *reactionCache) all() []models.Reaction {
	out := make([]models.Reaction, len(c.records))
	copy(out, c.records)
	return out
}

func (c *reactionCache) len() int {
	return len(c.records)
}
