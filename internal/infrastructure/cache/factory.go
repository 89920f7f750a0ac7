package cache

import (
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/shopman/backend/internal/domain/shared"
	"github.com/shopman/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// ErrRedisRequired is returned when configuration demands Redis and none is connected
var ErrRedisRequired = errors.New("idempotency requires redis but no redis connection is available")

// NewIdempotencyStore picks the store for the server: Redis when a client is
// connected, otherwise the in-memory store unless cfg.RequireRedis is set.
// A nil client means Redis was unreachable or not configured.
func NewIdempotencyStore(client *redis.Client, cfg config.IdempotencyConfig, log *zap.Logger) (shared.IdempotencyStore, error) {
	if client != nil {
		log.Info("using redis idempotency store")
		return NewRedisIdempotencyStore(client, DefaultKeyPrefix), nil
	}
	if cfg.RequireRedis {
		return nil, ErrRedisRequired
	}
	log.Warn("redis unavailable, using in-memory idempotency store; replayed keys are only caught per instance")
	return NewInMemoryIdempotencyStore(defaultSweepInterval), nil
}
