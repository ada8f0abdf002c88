package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// Local is a per-key mutex that honours context cancellation.
type Local struct {
	mu   sync.Mutex
	sems map[string]*semaphore.Weighted
	wait time.Duration
}

// NewLocal builds a Local locker. A positive wait bounds every Acquire.
func NewLocal(wait time.Duration) *Local {
	return &Local{sems: make(map[string]*semaphore.Weighted), wait: wait}
}

func (l *Local) sem(key string) *semaphore.Weighted {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.sems[key]
	if !ok {
		s = semaphore.NewWeighted(1)
		l.sems[key] = s
	}
	return s
}

func (l *Local) Acquire(ctx context.Context, key string) (func(), error) {
	if l.wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.wait)
		defer cancel()
	}
	s := l.sem(key)
	if err := s.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLockTimeout, key, err)
	}
	var once sync.Once
	return func() { once.Do(func() { s.Release(1) }) }, nil
}
