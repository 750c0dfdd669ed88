//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"line-reservation-bot/internal/domain/model"
	"line-reservation-bot/internal/infra/logging"
	"line-reservation-bot/internal/infra/memory"

	"github.com/rs/zerolog"
)

// -----------------------------
// Utilities: tiny helpers
// -----------------------------

func newTestLogger() *zerolog.Logger { return logging.Nop() }

var fixedNow = time.Date(2026, 1, 20, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

// -----------------------------
// Reservation repository mock
// -----------------------------

// MockReservationRepo wraps the in-memory repo so a save failure can be forced.
type MockReservationRepo struct {
	*memory.ReservationRepo
	SaveErr error
	saves   int
}

func NewMockReservationRepo() *MockReservationRepo {
	return &MockReservationRepo{ReservationRepo: memory.NewReservationRepo()}
}

func (m *MockReservationRepo) Save(ctx context.Context, r *model.Reservation) error {
	m.saves++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	return m.ReservationRepo.Save(ctx, r)
}

// -----------------------------
// Conversation store mock
// -----------------------------

type MockConversationStore struct {
	*memory.StateRepo
	GetErr      error
	PutFailures int // the next n Put calls fail
	puts        int
}

func NewMockConversationStore() *MockConversationStore {
	return &MockConversationStore{StateRepo: memory.NewStateRepo(time.Hour)}
}

func (m *MockConversationStore) Get(ctx context.Context, userID string) (model.ConversationState, error) {
	if m.GetErr != nil {
		return model.ConversationState{}, m.GetErr
	}
	return m.StateRepo.Get(ctx, userID)
}

func (m *MockConversationStore) Put(ctx context.Context, userID string, s model.ConversationState) error {
	m.puts++
	if m.PutFailures > 0 {
		m.PutFailures--
		return errBoom
	}
	return m.StateRepo.Put(ctx, userID, s)
}

// -----------------------------
// Locker mock
// -----------------------------

type MockLocker struct {
	Err     error
	locks   int
	unlocks int
	mu      sync.Mutex
}

func (m *MockLocker) Lock(_ context.Context, _ string) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	m.locks++
	return func() {
		m.mu.Lock()
		m.unlocks++
		m.mu.Unlock()
	}, nil
}

// -----------------------------
// Staff notifier mock
// -----------------------------

type MockNotifier struct {
	Err  error
	Sent []*model.Reservation
}

func (m *MockNotifier) NotifyReservation(_ context.Context, r *model.Reservation) error {
	m.Sent = append(m.Sent, r)
	return m.Err
}

// -----------------------------
// Rate limiter mock
// -----------------------------

type MockRateLimiter struct {
	Limit  int
	Err    error
	counts map[string]int
}

func (m *MockRateLimiter) Allow(_ context.Context, key string, limit int, _ time.Duration) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	if m.counts == nil {
		m.counts = map[string]int{}
	}
	m.counts[key]++
	return m.counts[key] <= limit, nil
}

var errBoom = errors.New("boom")
