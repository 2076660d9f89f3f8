package cache

import (
	"go.uber.org/zap"

	"github.com/dropship/backend/internal/domain/shared"
)

// NewDispatchLock returns a Redis lock when addr is set and reachable,
// otherwise an in-memory lock that only serializes within this process
func NewDispatchLock(cfg RedisConfig, logger *zap.Logger) shared.DispatchLock {
	if cfg.Addr == "" {
		logger.Info("Redis not configured, using in-memory dispatch lock")
		return NewInMemoryDispatchLock()
	}
	lock, err := NewRedisDispatchLock(cfg)
	if err != nil {
		logger.Warn("Redis unavailable, falling back to in-memory dispatch lock",
			zap.String("addr", cfg.Addr),
			zap.Error(err),
		)
		return NewInMemoryDispatchLock()
	}
	logger.Info("Using Redis dispatch lock", zap.String("addr", cfg.Addr))
	return lock
}
