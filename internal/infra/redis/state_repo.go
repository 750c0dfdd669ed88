package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	"line-reservation-bot/internal/domain/model"
	"line-reservation-bot/internal/domain/ports/repository"
)

var _ repository.ConversationStore = (*StateRepo)(nil)

// StateRepo keeps conversation state in Redis. Every write refreshes the key
// TTL, so abandoned conversations expire on their own.
type StateRepo struct {
	client *Client
	ttl    time.Duration
	log    *zerolog.Logger
}

func NewStateRepo(client *Client, ttl time.Duration, logger *zerolog.Logger) *StateRepo {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	l := logger.With().Str("component", "RedisStateRepo").Logger()
	return &StateRepo{client: client, ttl: ttl, log: &l}
}

func (s *StateRepo) stateKey(userID string) string {
	return fmt.Sprintf("conv_state:%s", userID)
}

func (s *StateRepo) Get(ctx context.Context, userID string) (model.ConversationState, error) {
	data, err := s.client.Get(ctx, s.stateKey(userID))
	if errors.Is(err, redis.Nil) {
		return model.Idle(), nil
	}
	if err != nil {
		return model.Idle(), err
	}

	var state model.ConversationState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		// an unreadable conversation restarts from idle instead of wedging the user
		s.log.Warn().Err(err).Msg("dropping undecodable conversation state")
		if derr := s.Clear(ctx, userID); derr != nil {
			s.log.Error().Err(derr).Msg("delete undecodable conversation state")
		}
		return model.Idle(), nil
	}
	return state, nil
}

func (s *StateRepo) Put(ctx context.Context, userID string, state model.ConversationState) error {
	if !state.Step.Active() {
		return s.Clear(ctx, userID)
	}
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.stateKey(userID), data, s.ttl)
}

func (s *StateRepo) Clear(ctx context.Context, userID string) error {
	return s.client.Del(ctx, s.stateKey(userID))
}
