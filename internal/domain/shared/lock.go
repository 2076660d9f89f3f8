package shared

import (
	"context"
	"time"
)

// DispatchLock serializes work on a single key across processes
type DispatchLock interface {
	// Acquire takes the lock for key with a TTL.
	// On success it returns the holder token needed to release it; ok is false if another holder owns it.
	Acquire(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)

	// Release gives up the lock if token still owns it.
	// Releasing an expired or re-acquired lock is a no-op.
	Release(ctx context.Context, key, token string) error

	// Close releases resources held by the lock backend
	Close() error
}
