package lock

import (
	"context"
	"sync"
)

// MemoryLocker is an in-process Locker keyed by string. Each key gets a
// one-slot channel semaphore, so waiters honor context cancellation
// instead of blocking in a mutex.
type MemoryLocker struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

// NewMemoryLocker creates an empty in-process locker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{slots: make(map[string]chan struct{})}
}

func (l *MemoryLocker) slot(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.slots[key]
	if !ok {
		s = make(chan struct{}, 1)
		l.slots[key] = s
	}
	return s
}

// Acquire takes the key's slot or waits until it frees up.
func (l *MemoryLocker) Acquire(ctx context.Context, key string) (ReleaseFunc, error) {
	s := l.slot(key)
	select {
	case s <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	var once sync.Once
	release := func(context.Context) error {
		once.Do(func() { <-s })
		return nil
	}
	return release, nil
}
