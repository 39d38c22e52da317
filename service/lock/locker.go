// Package lock serialises engine operations per request.
package lock

import (
	"context"
	"errors"
)

// ErrNotAcquired is returned when a lock could not be obtained in time
var ErrNotAcquired = errors.New("lock: not acquired")

// Locker acquires exclusive per key locks
type Locker interface {
	// Lock blocks until the key is acquired or ctx is done; the returned
	// function releases the lock
	Lock(ctx context.Context, key string) (unlock func(), err error)
}
