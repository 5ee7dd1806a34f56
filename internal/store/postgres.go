package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/classmood/moodboard/internal/logging"
	"github.com/classmood/moodboard/internal/models"
)

var (
	ErrReactionNotFound = errors.New("reaction not found")
	// ErrDuplicateReaction means another writer inserted the same
	// (mood, user, type) triple first; the unique index swallowed ours.
	ErrDuplicateReaction = errors.New("reaction already exists")
)

// PostgresStore owns the reactions collection. Every successful mutation
// is also announced on the event bus so other replicas can reconcile
// their caches.
type PostgresStore struct {
	db  DBConn
	bus Publisher
}

func NewPostgresStore(db DBConn, bus Publisher) *PostgresStore {
	return &PostgresStore{db: db, bus: bus}
}

// Find returns the single record for the triple, or nil when absent.
func (s *PostgresStore) Find(ctx context.Context, moodID uuid.UUID, userName, reactionType string) (*models.Reaction, error) {
	reaction := &models.Reaction{}
	err := s.db.QueryRow(ctx,
		`SELECT id, mood_id, user_name, reaction_type, created_at
		 FROM reactions
		 WHERE mood_id = $1 AND user_name = $2 AND reaction_type = $3
		 LIMIT 1`,
		moodID, userName, reactionType,
	).Scan(&reaction.ID, &reaction.MoodID, &reaction.UserName, &reaction.ReactionType, &reaction.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding reaction: %w", err)
	}
	return reaction, nil
}

// Insert creates a reaction and returns the canonical record with the
// server-assigned id and timestamp. The unique index on the triple makes
// concurrent duplicate inserts lose with ErrDuplicateReaction instead of
// violating uniqueness.
func (s *PostgresStore) Insert(ctx context.Context, moodID uuid.UUID, userName, reactionType string) (*models.Reaction, error) {
	reaction := &models.Reaction{}
	err := s.db.QueryRow(ctx,
		`INSERT INTO reactions (mood_id, user_name, reaction_type)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (mood_id, user_name, reaction_type) DO NOTHING
		 RETURNING id, mood_id, user_name, reaction_type, created_at`,
		moodID, userName, reactionType,
	).Scan(&reaction.ID, &reaction.MoodID, &reaction.UserName, &reaction.ReactionType, &reaction.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrDuplicateReaction
	}
	if err != nil {
		return nil, fmt.Errorf("adding reaction: %w", err)
	}

	s.publish(ctx, insertEvent(*reaction))
	return reaction, nil
}

func (s *PostgresStore) DeleteByID(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.Exec(ctx, "DELETE FROM reactions WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("removing reaction: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrReactionNotFound
	}

	s.publish(ctx, deleteEvent(id))
	return nil
}

// ListAll returns the full collection, newest first.
func (s *PostgresStore) ListAll(ctx context.Context) ([]models.Reaction, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, mood_id, user_name, reaction_type, created_at
		 FROM reactions
		 ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing reactions: %w", err)
	}
	defer rows.Close()

	return scanReactions(rows)
}

func (s *PostgresStore) ListForMood(ctx context.Context, moodID uuid.UUID) ([]models.Reaction, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, mood_id, user_name, reaction_type, created_at
		 FROM reactions
		 WHERE mood_id = $1
		 ORDER BY created_at DESC`,
		moodID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing mood reactions: %w", err)
	}
	defer rows.Close()

	return scanReactions(rows)
}

func scanReactions(rows Rows) ([]models.Reaction, error) {
	reactions := []models.Reaction{}
	for rows.Next() {
		var r models.Reaction
		if err := rows.Scan(&r.ID, &r.MoodID, &r.UserName, &r.ReactionType, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning reaction: %w", err)
		}
		reactions = append(reactions, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading reactions: %w", err)
	}
	return reactions, nil
}

// publish failures are logged, not returned: the mutation already
// committed, and the periodic resync repairs any cache drift from a
// missed event.
func (s *PostgresStore) publish(ctx context.Context, event Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, event); err != nil {
		logging.Warn("Failed to publish reaction event", map[string]interface{}{
			"type":  string(event.Type),
			"error": err.Error(),
		})
	}
}
