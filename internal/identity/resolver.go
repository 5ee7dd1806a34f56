package identity

import (
	"errors"
	"strings"
	"sync"
	"unicode/utf8"
)

var ErrInvalidName = errors.New("display name must be at least 2 characters")

const minNameLength = 2

// Resolver holds the session's display name. The name is set once on the
// first interaction and can be overwritten explicitly; it never touches
// storage.
type Resolver struct {
	mu   sync.RWMutex
	name string
}

func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve returns the cached display name, if one has been set.
func (r *Resolver) Resolve() (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.name == "" {
		return "", false
	}
	return r.name, true
}

// Set stores the trimmed display name, overwriting any prior value.
func (r *Resolver) Set(name string) error {
	trimmed := strings.TrimSpace(name)
	if utf8.RuneCountInString(trimmed) < minNameLength {
		return ErrInvalidName
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.name = trimmed
	return nil
}
