// Package lock provides named mutual exclusion keyed by (resource type,
// resource id). The Redis implementation is exclusive across all process
// instances sharing the same Redis; the in-memory implementation covers a
// single process and tests.
package lock

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotAcquired is returned when the lock is still held by another caller
// after the acquire retries are exhausted.
var ErrNotAcquired = errors.New("lock: not acquired")

// Guard is a held lock. Release is safe to call with a fresh context so a
// cancelled request cannot leak the lock.
type Guard interface {
	Release(ctx context.Context) error
}

// Locker hands out per-resource mutual exclusion.
type Locker interface {
	Acquire(ctx context.Context, resourceType, resourceID string) (Guard, error)
}

// Key is the shared key naming convention for a resource lock.
func Key(resourceType, resourceID string) string {
	return fmt.Sprintf("lock:%s:%s", resourceType, resourceID)
}
