// Package lock provides the per-order mutual exclusion used by checkout.
package lock

import (
	"context"
	"sync"
	"time"

	"github.com/CristobalNPE/ventesca-sub000/internal/domain/shared"
)

// MemoryLocker serializes holders of the same key within one process
type MemoryLocker struct {
	mu          sync.Mutex
	slots       map[string]*slot
	waitTimeout time.Duration
}

type slot struct {
	ch      chan struct{}
	waiters int
}

// NewMemoryLocker creates an in-process locker. A zero waitTimeout waits until ctx is done.
func NewMemoryLocker(waitTimeout time.Duration) *MemoryLocker {
	return &MemoryLocker{
		slots:       make(map[string]*slot),
		waitTimeout: waitTimeout,
	}
}

// Lock blocks until key is free, ctx is done or the wait timeout elapses
func (l *MemoryLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	s, ok := l.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.waiters++
	l.mu.Unlock()

	if l.waitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.waitTimeout)
		defer cancel()
	}

	select {
	case s.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(key, s, false)
		return nil, shared.WrapDomainError(shared.ErrConcurrencyConflict, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() { l.release(key, s, true) })
	}, nil
}

func (l *MemoryLocker) release(key string, s *slot, held bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if held {
		<-s.ch
	}
	s.waiters--
	if s.waiters == 0 {
		delete(l.slots, key)
	}
}

// Held returns the number of keys currently locked or awaited
func (l *MemoryLocker) Held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}
