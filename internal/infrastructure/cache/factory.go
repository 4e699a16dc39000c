package cache

import (
	"fmt"

	"github.com/finops/backend/internal/domain/shared"
	"github.com/finops/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// IdempotencyStoreFactory picks the idempotency backend for the process.
type IdempotencyStoreFactory struct {
	cfg      config.RedisConfig
	logger   *zap.Logger
	fallback bool
}

// IdempotencyStoreFactoryOption configures IdempotencyStoreFactory.
type IdempotencyStoreFactoryOption func(*IdempotencyStoreFactory)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) IdempotencyStoreFactoryOption {
	return func(f *IdempotencyStoreFactory) { f.logger = logger }
}

// WithInMemoryFallback lets an unreachable Redis degrade to the process-local
// store. On by default.
func WithInMemoryFallback(allow bool) IdempotencyStoreFactoryOption {
	return func(f *IdempotencyStoreFactory) { f.fallback = allow }
}

func NewIdempotencyStoreFactory(cfg config.RedisConfig, opts ...IdempotencyStoreFactoryOption) *IdempotencyStoreFactory {
	f := &IdempotencyStoreFactory{cfg: cfg, logger: zap.NewNop(), fallback: true}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateStore connects to Redis when it is enabled. Without Redis, or when
// Redis cannot be reached and fallback is allowed, keys live in memory.
func (f *IdempotencyStoreFactory) CreateStore() (shared.IdempotencyStore, error) {
	if !f.cfg.Enabled {
		f.logger.Info("Idempotency keys kept in memory", zap.String("reason", "redis disabled"))
		return NewInMemoryIdempotencyStore(), nil
	}

	redisStore, err := NewRedisIdempotencyStore(f.cfg)
	switch {
	case err == nil:
		f.logger.Info("Idempotency keys kept in redis", zap.String("addr", f.cfg.Addr()))
		return redisStore, nil
	case !f.fallback:
		return nil, fmt.Errorf("redis required for idempotency but unavailable: %w", err)
	}

	// keys are no longer shared between replicas
	f.logger.Warn("Idempotency keys kept in memory",
		zap.String("reason", "redis unreachable"),
		zap.String("addr", f.cfg.Addr()),
		zap.Error(err),
	)
	return NewInMemoryIdempotencyStore(), nil
}
