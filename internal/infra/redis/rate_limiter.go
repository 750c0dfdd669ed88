package redis

import (
	"context"
	"time"
)

const intakeRatePrefix = "intake_rate:"

// RateLimiter counts intake turns per user in fixed windows. The window opens
// on the first turn and the counter key expires with it.
type RateLimiter struct {
	client *Client
}

func NewRateLimiter(client *Client) *RateLimiter {
	return &RateLimiter{client: client}
}

func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	count, err := r.client.Incr(ctx, key)
	if err != nil {
		return false, err
	}
	if count == 1 {
		return true, r.client.Expire(ctx, key, window)
	}
	if count <= int64(limit) {
		return true, nil
	}

	// A counter whose EXPIRE never landed would refuse the user forever.
	ttl, err := r.client.TTL(ctx, key)
	if err != nil {
		return false, err
	}
	if ttl < 0 {
		if err := r.client.Expire(ctx, key, window); err != nil {
			return false, err
		}
	}
	return false, nil
}

// IntakeRateKey is the counter key for one user's conversation turns.
func IntakeRateKey(userID string) string {
	return intakeRatePrefix + userID
}
