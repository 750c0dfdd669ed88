package repository

import (
	"context"

	"line-reservation-bot/internal/domain/model"
)

// ConversationStore is the port for per-user conversation state.
// Get returns model.Idle() for unknown users. Putting a state whose step is
// model.StepNone drops the entry.
type ConversationStore interface {
	Get(ctx context.Context, userID string) (model.ConversationState, error)
	Put(ctx context.Context, userID string, state model.ConversationState) error
	Clear(ctx context.Context, userID string) error
}

// Locker serializes read-modify-write cycles on one user's conversation.
type Locker interface {
	Lock(ctx context.Context, userID string) (unlock func(), err error)
}
