package sched

import (
	"context"
	"time"

	"line-reservation-bot/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// ExpiringStore is a conversation store that has to drop idle entries itself.
type ExpiringStore interface {
	Sweep(ctx context.Context) int
	Len() int
}

// PoolStats reports database pool usage.
type PoolStats func() (total, idle, inUse int32)

// Sweeper periodically evicts idle conversations and refreshes gauges.
type Sweeper struct {
	interval time.Duration
	store    ExpiringStore
	pool     PoolStats
	log      *zerolog.Logger
}

func NewSweeper(interval time.Duration, store ExpiringStore, pool PoolStats, logger *zerolog.Logger) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	l := logger.With().Str("component", "Sweeper").Logger()
	return &Sweeper{interval: interval, store: store, pool: pool, log: &l}
}

func (w *Sweeper) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting sweeper")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping sweeper")
			return ctx.Err()
		case <-ticker.C:
			w.Tick(ctx)
		}
	}
}

// Tick runs one sweep.
func (w *Sweeper) Tick(ctx context.Context) {
	if w.store != nil {
		if n := w.store.Sweep(ctx); n > 0 {
			metrics.AddConversationsEvicted(n)
			w.log.Debug().Int("count", n).Msg("idle conversations evicted")
		}
		metrics.SetActiveConversations(w.store.Len())
	}
	if w.pool != nil {
		metrics.SetDBPoolStats(w.pool())
	}
}
