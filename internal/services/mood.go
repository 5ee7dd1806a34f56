package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/classmood/moodboard/internal/models"
	"github.com/classmood/moodboard/internal/store"
)

var (
	ErrMoodNotFound    = errors.New("mood not found")
	ErrMissingEmoji    = errors.New("mood emoji is required")
	ErrInvalidUserName = errors.New("display name must be at least 2 characters")
)

const maxNoteLength = 280

// MoodServiceInterface is the surface handlers depend on.
type MoodServiceInterface interface {
	Create(ctx context.Context, userName, emoji, note string) (*models.Mood, error)
	List(ctx context.Context, limit int) ([]models.Mood, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Mood, error)
}

type MoodService struct {
	db store.DBConn
}

func NewMoodService(db store.DBConn) *MoodService {
	return &MoodService{db: db}
}

func (s *MoodService) Create(ctx context.Context, userName, emoji, note string) (*models.Mood, error) {
	name := strings.TrimSpace(userName)
	if utf8.RuneCountInString(name) < 2 {
		return nil, ErrInvalidUserName
	}
	emoji = strings.TrimSpace(emoji)
	if emoji == "" {
		return nil, ErrMissingEmoji
	}
	note = strings.TrimSpace(note)
	if utf8.RuneCountInString(note) > maxNoteLength {
		note = string([]rune(note)[:maxNoteLength])
	}

	mood := &models.Mood{}
	err := s.db.QueryRow(ctx,
		`INSERT INTO moods (user_name, emoji, note)
		 VALUES ($1, $2, $3)
		 RETURNING id, user_name, emoji, note, created_at`,
		name, emoji, note,
	).Scan(&mood.ID, &mood.UserName, &mood.Emoji, &mood.Note, &mood.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("creating mood: %w", err)
	}

	return mood, nil
}

func (s *MoodService) List(ctx context.Context, limit int) ([]models.Mood, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := s.db.Query(ctx,
		`SELECT id, user_name, emoji, note, created_at
		 FROM moods
		 ORDER BY created_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing moods: %w", err)
	}
	defer rows.Close()

	moods := []models.Mood{}
	for rows.Next() {
		var m models.Mood
		if err := rows.Scan(&m.ID, &m.UserName, &m.Emoji, &m.Note, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning mood: %w", err)
		}
		moods = append(moods, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading moods: %w", err)
	}

	return moods, nil
}

func (s *MoodService) Get(ctx context.Context, id uuid.UUID) (*models.Mood, error) {
	mood := &models.Mood{}
	err := s.db.QueryRow(ctx,
		`SELECT id, user_name, emoji, note, created_at
		 FROM moods
		 WHERE id = $1`,
		id,
	).Scan(&mood.ID, &mood.UserName, &mood.Emoji, &mood.Note, &mood.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrMoodNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting mood: %w", err)
	}
	return mood, nil
}
