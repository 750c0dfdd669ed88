// File: internal/infra/redis/lock.go
package redis

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"line-reservation-bot/internal/domain"
	"line-reservation-bot/internal/domain/ports/repository"
)

var _ repository.Locker = (*RedisLocker)(nil)

// RedisLocker serializes turns of the same user across replicas.
type RedisLocker struct {
	cli   *redis.Client
	ttl   time.Duration
	retry time.Duration
	log   *zerolog.Logger
}

func NewLocker(c *Client, ttl time.Duration, logger *zerolog.Logger) *RedisLocker {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	l := logger.With().Str("component", "RedisLocker").Logger()
	return &RedisLocker{cli: c.cli, ttl: ttl, retry: 50 * time.Millisecond, log: &l}
}

func lockKey(userID string) string { return "conv_lock:" + userID }

// Lock spins on SET NX until it wins or ctx ends.
func (l *RedisLocker) Lock(ctx context.Context, userID string) (func(), error) {
	key := lockKey(userID)
	token := uuid.NewString()
	for {
		ok, err := l.cli.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil && ctx.Err() == nil {
			return nil, err
		}
		if ok {
			return func() {
				// the caller's ctx may already be done
				uctx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				if err := l.unlock(uctx, key, token); err != nil {
					l.log.Warn().Err(err).Str("key", key).Msg("unlock failed")
				}
			}, nil
		}
		select {
		case <-ctx.Done():
			return nil, domain.ErrLockNotAcquired
		case <-time.After(l.retry):
		}
	}
}

var luaUnlock = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end`)

func (l *RedisLocker) unlock(ctx context.Context, key, token string) error {
	_, err := luaUnlock.Run(ctx, l.cli, []string{key}, token).Result()
	return err
}
