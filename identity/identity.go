package identity

//go:generate mockgen -destination=mock_identity/mock_source.go -package=mock_identity . Source

import (
	"context"
	"sync"

	"github.com/gravepaint/gravepaint"
)

// A Source yields the ID of the user on whose behalf a request is made.
// When ok is false no user is logged in.
type Source interface {
	UserID(ctx context.Context) (id string, ok bool)
}

// A SourceFunc is an ordinary function used as a Source.
type SourceFunc func(ctx context.Context) (string, bool)

// UserID calls fn.
func (fn SourceFunc) UserID(ctx context.Context) (string, bool) { return fn(ctx) }

// Static returns a Source always yielding id.
// An empty id yields nothing.
func Static(id string) Source {
	return SourceFunc(func(context.Context) (string, bool) {
		return id, id != ""
	})
}

// FromContext returns a Source reading the ID stashed in the request's context.
func FromContext() Source {
	return SourceFunc(gravepaint.IdentityFromContext)
}

// First returns a Source yielding the ID of the first of sources that has one.
func First(sources ...Source) Source {
	return SourceFunc(func(ctx context.Context) (string, bool) {
		for _, s := range sources {
			if s == nil {
				continue
			}

			if id, ok := s.UserID(ctx); ok {
				return id, true
			}
		}

		return "", false
	})
}

// A Store holds the ID of the logged-in user in memory.
// The zero value holds no ID and is ready to use.
type Store struct {
	mu sync.RWMutex
	id string
}

// Set records id as the logged-in user.
func (s *Store) Set(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = id
}

// Clear forgets the logged-in user.
func (s *Store) Clear() { s.Set("") }

// UserID implements Source.
func (s *Store) UserID(context.Context) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.id, s.id != ""
}
