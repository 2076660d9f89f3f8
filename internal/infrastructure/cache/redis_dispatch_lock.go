package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dropship/backend/internal/domain/shared"
)

const defaultLockPrefix = "dropship:lock:"

// releaseScript deletes the key only while it still holds our token,
// so an expired lock re-acquired by another process is left alone
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RedisDispatchLock implements DispatchLock with SET NX PX.
// Suitable when several API instances dispatch against the same database.
type RedisDispatchLock struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisDispatchLock connects to Redis and verifies the connection
func NewRedisDispatchLock(cfg RedisConfig) (*RedisDispatchLock, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewRedisDispatchLockWithClient(client, ""), nil
}

// NewRedisDispatchLockWithClient wraps an existing client
func NewRedisDispatchLockWithClient(client *redis.Client, keyPrefix string) *RedisDispatchLock {
	if keyPrefix == "" {
		keyPrefix = defaultLockPrefix
	}
	return &RedisDispatchLock{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Acquire implements DispatchLock
func (l *RedisDispatchLock) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.keyPrefix+key, token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// Release implements DispatchLock
func (l *RedisDispatchLock) Release(ctx context.Context, key, token string) error {
	if token == "" {
		return nil
	}
	if err := releaseScript.Run(ctx, l.client, []string{l.keyPrefix + key}, token).Err(); err != nil {
		return fmt.Errorf("failed to release lock %s: %w", key, err)
	}
	return nil
}

// Close implements DispatchLock
func (l *RedisDispatchLock) Close() error {
	return l.client.Close()
}

var _ shared.DispatchLock = (*RedisDispatchLock)(nil)
