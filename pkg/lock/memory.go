package lock

import (
	"context"
	"sync"
)

// MemoryLocker implements Locker inside one process. Waiters block on a
// channel closed by the current holder's release.
type MemoryLocker struct {
	mu   sync.Mutex
	held map[string]chan struct{}
}

// NewMemoryLocker creates an empty in-process locker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: make(map[string]chan struct{})}
}

// Acquire blocks until the lock is free or ctx is done.
func (l *MemoryLocker) Acquire(ctx context.Context, resourceType, resourceID string) (Guard, error) {
	key := Key(resourceType, resourceID)
	for {
		l.mu.Lock()
		ch, taken := l.held[key]
		if !taken {
			mine := make(chan struct{})
			l.held[key] = mine
			l.mu.Unlock()
			return &memoryGuard{locker: l, key: key, ch: mine}, nil
		}
		l.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ch:
		}
	}
}

type memoryGuard struct {
	locker *MemoryLocker
	key    string
	ch     chan struct{}
}

// Release only removes this guard's own hold, so a stale double release
// cannot free a lock reacquired by someone else.
func (g *memoryGuard) Release(_ context.Context) error {
	g.locker.mu.Lock()
	defer g.locker.mu.Unlock()
	if ch, ok := g.locker.held[g.key]; ok && ch == g.ch {
		delete(g.locker.held, g.key)
		close(ch)
	}
	return nil
}
