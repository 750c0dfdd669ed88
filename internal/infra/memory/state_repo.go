// Package memory holds process-local adapters used when Redis or Postgres
// are not configured.
package memory

import (
	"context"
	"sync"
	"time"

	"line-reservation-bot/internal/domain/model"
	"line-reservation-bot/internal/domain/ports/repository"
)

var _ repository.ConversationStore = (*StateRepo)(nil)

// StateRepo is a map of conversations with idle expiry. Expired entries read
// as idle immediately; Sweep frees their memory.
type StateRepo struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

type entry struct {
	state     model.ConversationState
	expiresAt time.Time
}

func NewStateRepo(ttl time.Duration) *StateRepo {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &StateRepo{entries: make(map[string]entry), ttl: ttl, now: time.Now}
}

// WithClock swaps the time source, for tests.
func (s *StateRepo) WithClock(now func() time.Time) *StateRepo {
	s.now = now
	return s
}

func (s *StateRepo) Get(_ context.Context, userID string) (model.ConversationState, error) {
	s.mu.RLock()
	e, ok := s.entries[userID]
	s.mu.RUnlock()
	if !ok || !s.now().Before(e.expiresAt) {
		return model.Idle(), nil
	}
	return e.state, nil
}

func (s *StateRepo) Put(ctx context.Context, userID string, state model.ConversationState) error {
	if !state.Step.Active() {
		return s.Clear(ctx, userID)
	}
	s.mu.Lock()
	s.entries[userID] = entry{state: state, expiresAt: s.now().Add(s.ttl)}
	s.mu.Unlock()
	return nil
}

func (s *StateRepo) Clear(_ context.Context, userID string) error {
	s.mu.Lock()
	delete(s.entries, userID)
	s.mu.Unlock()
	return nil
}

// Len is the number of entries held, expired or not.
func (s *StateRepo) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Sweep drops expired entries and reports how many were removed.
func (s *StateRepo) Sweep(_ context.Context) int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, id)
			n++
		}
	}
	return n
}
