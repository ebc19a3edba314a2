// Package avatar holds the canonical last-known appearance per user.
// Rooms copy from here on join; updates are advisory for future joins and
// never propagate into live rooms implicitly.
package avatar

import (
	"sync"

	"github.com/holoverse/presence/internal/domain"
)

type Store struct {
	mu     sync.RWMutex
	states map[domain.UserID]domain.AvatarState
}

func NewStore() *Store {
	return &Store{states: make(map[domain.UserID]domain.AvatarState)}
}

// Get returns an independent copy of the user's canonical avatar, or the
// zero descriptor for a user who never set one.
func (s *Store) Get(id domain.UserID) domain.AvatarState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.states[id].Clone()
}

func (s *Store) Set(id domain.UserID, a domain.AvatarState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[id] = a.Clone()
}

func (s *Store) Delete(id domain.UserID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, id)
}
