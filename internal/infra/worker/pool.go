package worker

import (
	"context"
	"errors"
	"hash/fnv"
	"runtime"
	"sync"

	"line-reservation-bot/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Pool runs submitted tasks on a fixed set of workers. Tasks that share a key
// always land on the same worker, so they run one at a time and in order.

type Task func(ctx context.Context) error

var (
	ErrNilTask   = errors.New("nil task")
	ErrQueueFull = errors.New("worker queue full")
	ErrStopped   = errors.New("worker pool stopped")
)

type Pool struct {
	wg     sync.WaitGroup
	shards []chan Task
	quit   chan struct{}
	once   sync.Once
	mu     sync.RWMutex
	closed bool
	log    *zerolog.Logger
}

func NewPool(workers, queueSize int, logger *zerolog.Logger) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if queueSize <= 0 {
		queueSize = 4
	}
	shards := make([]chan Task, workers)
	for i := range shards {
		shards[i] = make(chan Task, queueSize)
	}
	return &Pool{shards: shards, quit: make(chan struct{}), log: logger}
}

func (p *Pool) Start(ctx context.Context) {
	for i, jobs := range p.shards {
		p.wg.Add(1)
		go func(id int, jobs chan Task) {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case <-p.quit:
					p.drain(ctx, id, jobs)
					return
				case task := <-jobs:
					p.run(ctx, id, task)
				}
			}
		}(i, jobs)
	}
}

// drain finishes what was queued before Stop.
func (p *Pool) drain(ctx context.Context, id int, jobs chan Task) {
	for {
		select {
		case task := <-jobs:
			p.run(ctx, id, task)
		default:
			return
		}
	}
}

func (p *Pool) run(ctx context.Context, id int, task Task) {
	defer func() {
		if r := recover(); r != nil {
			metrics.IncWorkerTask("panic")
			p.log.Error().Int("worker", id).Interface("panic", r).Msg("worker task panicked")
		}
	}()
	if err := task(ctx); err != nil {
		metrics.IncWorkerTask("error")
		p.log.Error().Err(err).Int("worker", id).Msg("worker task error")
		return
	}
	metrics.IncWorkerTask("ok")
}

// Stop rejects new tasks, runs the ones already queued and waits.
func (p *Pool) Stop() {
	p.once.Do(func() {
		p.mu.Lock()
		p.closed = true
		p.mu.Unlock()
		close(p.quit)
	})
	p.wg.Wait()
}

// Submit queues task on the worker owning key. It never blocks: a full shard
// returns ErrQueueFull.
func (p *Pool) Submit(key string, task Task) error {
	if task == nil {
		return ErrNilTask
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrStopped
	}
	select {
	case p.shards[p.shardFor(key)] <- task:
		return nil
	default:
		metrics.IncWorkerTask("dropped")
		return ErrQueueFull
	}
}

func (p *Pool) shardFor(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(p.shards)))
}
