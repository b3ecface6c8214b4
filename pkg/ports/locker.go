package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a lock obtained from a ChartLocker.
type UnlockFunc func(ctx context.Context) error

// ChartLocker serializes structural edits of one chart across processes.
// Charts are not safe for concurrent mutation, so replicas that reduce or
// flatten a stored chart take its lock around the load, edit, save cycle.
type ChartLocker interface {
	// Lock blocks until the lock for key is acquired or ctx is done. The
	// lock expires after ttl if it is never released.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
