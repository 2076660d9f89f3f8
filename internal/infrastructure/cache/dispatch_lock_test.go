package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInMemoryDispatchLock(t *testing.T) {
	ctx := context.Background()

	t.Run("second acquire fails until release", func(t *testing.T) {
		lock := NewInMemoryDispatchLock()
		token, ok, err := lock.Acquire(ctx, "order:1", time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.NotEmpty(t, token)

		_, ok, err = lock.Acquire(ctx, "order:1", time.Minute)
		require.NoError(t, err)
		assert.False(t, ok)

		_, ok, err = lock.Acquire(ctx, "order:2", time.Minute)
		require.NoError(t, err)
		assert.True(t, ok, "keys are independent")

		require.NoError(t, lock.Release(ctx, "order:1", token))
		_, ok, err = lock.Acquire(ctx, "order:1", time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("expired lock can be taken", func(t *testing.T) {
		lock := NewInMemoryDispatchLock()
		now := time.Now()
		lock.now = func() time.Time { return now }

		_, ok, _ := lock.Acquire(ctx, "k", time.Second)
		require.True(t, ok)

		now = now.Add(2 * time.Second)
		_, ok, err := lock.Acquire(ctx, "k", time.Second)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("stale holder cannot release the new holder's lock", func(t *testing.T) {
		lock := NewInMemoryDispatchLock()
		now := time.Now()
		lock.now = func() time.Time { return now }

		stale, ok, _ := lock.Acquire(ctx, "k", time.Second)
		require.True(t, ok)

		now = now.Add(2 * time.Second)
		current, ok, _ := lock.Acquire(ctx, "k", time.Minute)
		require.True(t, ok)
		assert.NotEqual(t, stale, current)

		require.NoError(t, lock.Release(ctx, "k", stale))
		_, ok, err := lock.Acquire(ctx, "k", time.Minute)
		require.NoError(t, err)
		assert.False(t, ok, "lock must still belong to the second holder")

		require.NoError(t, lock.Release(ctx, "k", current))
		_, ok, _ = lock.Acquire(ctx, "k", time.Minute)
		assert.True(t, ok)
	})

	t.Run("releasing an unheld key is a no-op", func(t *testing.T) {
		lock := NewInMemoryDispatchLock()
		assert.NoError(t, lock.Release(ctx, "missing", "nobody"))
		assert.NoError(t, lock.Close())
	})

	t.Run("cancelled context", func(t *testing.T) {
		lock := NewInMemoryDispatchLock()
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, _, err := lock.Acquire(cancelled, "k", time.Second)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("only one concurrent winner", func(t *testing.T) {
		lock := NewInMemoryDispatchLock()
		var winners atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < 32; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, ok, _ := lock.Acquire(ctx, "hot", time.Minute); ok {
					winners.Add(1)
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), winners.Load())
	})
}

func TestNewDispatchLock_FallsBackToMemory(t *testing.T) {
	lock := NewDispatchLock(RedisConfig{}, zap.NewNop())
	_, ok := lock.(*InMemoryDispatchLock)
	assert.True(t, ok)

	// nothing listens on port 1
	lock = NewDispatchLock(RedisConfig{Addr: "127.0.0.1:1"}, zap.NewNop())
	_, ok = lock.(*InMemoryDispatchLock)
	assert.True(t, ok)
}
