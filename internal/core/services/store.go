package services

import (
	"sync"

	"github.com/lorrc/voice2ticket/internal/core/domain"
)

// Store holds one console's AppState. Updates are serialised; readers get
// a copy.
type Store struct {
	mu    sync.RWMutex
	state domain.AppState
}

// NewStore creates a store with the signed-out state.
func NewStore(pageSize int) *Store {
	return &Store{state: domain.NewAppState(pageSize)}
}

// Update applies fn to the current state and returns the result.
func (s *Store) Update(fn func(domain.AppState) domain.AppState) domain.AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = fn(s.state)
	return s.state
}

// Snapshot returns the current state.
func (s *Store) Snapshot() domain.AppState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}
