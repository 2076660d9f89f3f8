package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dropship/backend/internal/domain/shared"
)

type memoryLease struct {
	token   string
	expires time.Time
}

// InMemoryDispatchLock implements DispatchLock for a single process.
// Expired entries are replaced on the next Acquire.
type InMemoryDispatchLock struct {
	mu     sync.Mutex
	leases map[string]memoryLease
	now    func() time.Time
}

// NewInMemoryDispatchLock creates an in-memory lock
func NewInMemoryDispatchLock() *InMemoryDispatchLock {
	return &InMemoryDispatchLock{
		leases: make(map[string]memoryLease),
		now:    time.Now,
	}
}

// Acquire implements DispatchLock
func (l *InMemoryDispatchLock) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if lease, held := l.leases[key]; held && now.Before(lease.expires) {
		return "", false, nil
	}
	token := uuid.NewString()
	l.leases[key] = memoryLease{token: token, expires: now.Add(ttl)}
	return token, true, nil
}

// Release implements DispatchLock. A lease taken over after expiry keeps its new holder.
func (l *InMemoryDispatchLock) Release(ctx context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if lease, held := l.leases[key]; held && lease.token == token {
		delete(l.leases, key)
	}
	return nil
}

// Close implements DispatchLock
func (l *InMemoryDispatchLock) Close() error {
	l.mu.Lock()
	l.leases = make(map[string]memoryLease)
	l.mu.Unlock()
	return nil
}

var _ shared.DispatchLock = (*InMemoryDispatchLock)(nil)
