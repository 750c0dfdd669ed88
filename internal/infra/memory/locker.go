package memory

import (
	"context"
	"sync"

	"line-reservation-bot/internal/domain"
	"line-reservation-bot/internal/domain/ports/repository"
)

var _ repository.Locker = (*KeyedLocker)(nil)

// KeyedLocker hands out one mutex per user id and forgets it once no one
// holds or waits for it.
type KeyedLocker struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	ch   chan struct{} // capacity 1; a token in the channel means held
	refs int
}

func NewKeyedLocker() *KeyedLocker {
	return &KeyedLocker{locks: make(map[string]*keyedLock)}
}

func (k *KeyedLocker) Lock(ctx context.Context, userID string) (func(), error) {
	k.mu.Lock()
	l, ok := k.locks[userID]
	if !ok {
		l = &keyedLock{ch: make(chan struct{}, 1)}
		k.locks[userID] = l
	}
	l.refs++
	k.mu.Unlock()

	// a free lock is taken even when ctx is already done
	select {
	case l.ch <- struct{}{}:
	default:
		select {
		case l.ch <- struct{}{}:
		case <-ctx.Done():
			k.release(userID, l)
			return nil, domain.ErrLockNotAcquired
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-l.ch
			k.release(userID, l)
		})
	}, nil
}

func (k *KeyedLocker) release(userID string, l *keyedLock) {
	k.mu.Lock()
	l.refs--
	if l.refs == 0 {
		delete(k.locks, userID)
	}
	k.mu.Unlock()
}

// Held is the number of user ids with a holder or waiter.
func (k *KeyedLocker) Held() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
