package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/classmood/moodboard/internal/identity"
	"github.com/classmood/moodboard/internal/logging"
	"github.com/classmood/moodboard/internal/models"
	"github.com/classmood/moodboard/internal/store"
)

var (
	ErrMissingIdentity = errors.New("no display name available")
	ErrInvalidReaction = errors.New("unsupported reaction type")
)

type ToggleResult string

const (
	ResultToggled ToggleResult = "toggled"
	ResultRemoved ToggleResult = "removed"
)

// Store is the remote data service surface the engine reconciles against.
type Store interface {
	Find(ctx context.Context, moodID uuid.UUID, userName, reactionType string) (*models.Reaction, error)
	Insert(ctx context.Context, moodID uuid.UUID, userName, reactionType string) (*models.Reaction, error)
	DeleteByID(ctx context.Context, id uuid.UUID) error
	ListAll(ctx context.Context) ([]models.Reaction, error)
}

// Engine keeps the in-memory reaction cache consistent with the remote
// store across local toggles, remote change events and full reloads. The
// cache holds at most one record per (mood, user, type) triple; the cache
// is only touched after the remote mutation succeeded.
type Engine struct {
	store    Store
	resolver *identity.Resolver
	logger   *logging.Logger

	mu       sync.RWMutex
	cache    *reactionCache
	onChange []func()

	togglesMu sync.Mutex
	toggles   map[string]*sync.Mutex
}

func New(s Store, resolver *identity.Resolver, logger *logging.Logger) *Engine {
	if logger == nil {
		logger = logging.Default
	}
	return &Engine{
		store:    s,
		resolver: resolver,
		logger:   logger,
		cache:    newReactionCache(),
		toggles:  make(map[string]*sync.Mutex),
	}
}

// ToggleReaction adds the reaction when the triple is absent remotely and
// removes it when present. Toggles for the same triple are serialized so
// two concurrent calls cannot both observe "not found" and double-insert.
func (e *Engine) ToggleReaction(ctx context.Context, moodID uuid.UUID, reactionType, userName string) (ToggleResult, error) {
	if !models.IsAllowedReaction(reactionType) {
		return "", ErrInvalidReaction
	}

	name := strings.TrimSpace(userName)
	if name == "" {
		resolved, ok := e.resolver.Resolve()
		if !ok {
			return "", ErrMissingIdentity
		}
		name = resolved
	}

	unlock := e.lockTriple(moodID, name, reactionType)
	defer unlock()

	existing, err := e.store.Find(ctx, moodID, name, reactionType)
	if err != nil {
		return "", err
	}

	if existing != nil {
		err := e.store.DeleteByID(ctx, existing.ID)
		if err != nil && !errors.Is(err, store.ErrReactionNotFound) {
			return "", err
		}
		e.mu.Lock()
		removed := e.cache.removeByID(existing.ID)
		e.mu.Unlock()
		if removed {
			e.notify()
		}
		return ResultRemoved, nil
	}

	created, err := e.store.Insert(ctx, moodID, name, reactionType)
	if errors.Is(err, store.ErrDuplicateReaction) {
		// Another replica won the insert race; its event will land the
		// record in our cache.
		return ResultToggled, nil
	}
	if err != nil {
		return "", err
	}

	e.mu.Lock()
	if !e.cache.containsID(created.ID) {
		e.cache.append(*created)
	}
	e.mu.Unlock()
	e.notify()
	return ResultToggled, nil
}

// ReactionsFor returns the cached reactions for a mood in cache order.
func (e *Engine) ReactionsFor(moodID uuid.UUID) []models.Reaction {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := []models.Reaction{}
	for _, r := range e.cache.all() {
		if r.MoodID == moodID {
			out = append(out, r)
		}
	}
	return out
}

// CountsByType tallies the cached reactions for a mood.
func (e *Engine) CountsByType(moodID uuid.UUID) map[string]int {
	counts := make(map[string]int)
	for _, r := range e.ReactionsFor(moodID) {
		counts[r.ReactionType]++
	}
	return counts
}

// HasReacted reports cache membership for the triple. An empty user name
// always reports false.
func (e *Engine) HasReacted(moodID uuid.UUID, userName, reactionType string) bool {
	name := strings.TrimSpace(userName)
	if name == "" {
		return false
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, r := range e.cache.records {
		if r.MoodID == moodID && r.UserName == name && r.ReactionType == reactionType {
			return true
		}
	}
	return false
}

// LoadAll replaces the cache wholesale with the remote collection. Called
// at startup and periodically to repair drift from missed events.
func (e *Engine) LoadAll(ctx context.Context) error {
	reactions, err := e.store.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("loading reactions: %w", err)
	}

	e.mu.Lock()
	e.cache.replaceAll(reactions)
	e.mu.Unlock()
	e.notify()
	return nil
}

// ApplyRemoteEvent applies a change notification idempotently: an insert
// for a cached id and a delete for an absent id are both no-ops. This
// also absorbs the echoes of our own mutations coming back off the bus.
func (e *Engine) ApplyRemoteEvent(event store.Event) {
	switch event.Type {
	case store.EventInsert:
		if event.Reaction == nil {
			return
		}
		e.mu.Lock()
		if e.cache.containsID(event.Reaction.ID) {
			e.mu.Unlock()
			return
		}
		e.cache.append(*event.Reaction)
		e.mu.Unlock()
		e.notify()
	case store.EventDelete:
		e.mu.Lock()
		removed := e.cache.removeByID(event.ID)
		e.mu.Unlock()
		if removed {
			e.notify()
		}
	default:
		e.logger.Warn("Ignoring unknown reaction event type", map[string]interface{}{"type": string(event.Type)})
	}
}

// Run consumes the remote event stream until ctx is cancelled or the
// stream closes. When resyncEvery is positive the full collection is
// reloaded on that cadence.
func (e *Engine) Run(ctx context.Context, events <-chan store.Event, resyncEvery time.Duration) {
	var resync <-chan time.Time
	if resyncEvery > 0 {
		ticker := time.NewTicker(resyncEvery)
		defer ticker.Stop()
		resync = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			e.ApplyRemoteEvent(event)
		case <-resync:
			if err := e.LoadAll(ctx); err != nil {
				e.logger.Warn("Reaction resync failed", map[string]interface{}{"error": err.Error()})
			}
		}
	}
}

// OnChange registers a hook invoked after every cache content change.
func (e *Engine) OnChange(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onChange = append(e.onChange, fn)
}

// Snapshot returns a copy of the full cache, newest-loaded first.
func (e *Engine) Snapshot() []models.Reaction {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cache.all()
}

func (e *Engine) notify() {
	e.mu.RLock()
	hooks := make([]func(), len(e.onChange))
	copy(hooks, e.onChange)
	e.mu.RUnlock()

	for _, fn := range hooks {
		fn()
	}
}

func (e *Engine) lockTriple(moodID uuid.UUID, userName, reactionType string) func() {
	key := moodID.String() + "|" + userName + "|" + reactionType

	e.togglesMu.Lock()
	lock, ok := e.toggles[key]
	if !ok {
		lock = &sync.Mutex{}
		e.toggles[key] = lock
	}
	e.togglesMu.Unlock()

	lock.Lock()
	return lock.Unlock
}
