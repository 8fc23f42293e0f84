package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a lock obtained from a DistributedLocker.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker serialises work on one key across replicas.
type DistributedLocker interface {
	// Lock blocks until the lock on key is held or ctx ends. The lock expires
	// on its own after ttl so a crashed holder cannot wedge a session.
	// The returned UnlockFunc must be called once the work is done.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
