package cache

import (
	"fmt"

	"github.com/shopsync/backend/internal/domain/shared"
	"github.com/shopsync/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// IdempotencyStoreFactory creates webhook dedupe stores based on configuration
type IdempotencyStoreFactory struct {
	webhookConfig config.WebhookConfig
	redisConfig   config.RedisConfig
	logger        *zap.Logger
}

// IdempotencyStoreFactoryOption is a functional option for configuring the factory
type IdempotencyStoreFactoryOption func(*IdempotencyStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) IdempotencyStoreFactoryOption {
	return func(f *IdempotencyStoreFactory) {
		f.logger = logger
	}
}

// NewIdempotencyStoreFactory creates a new factory
func NewIdempotencyStoreFactory(webhookCfg config.WebhookConfig, redisCfg config.RedisConfig, opts ...IdempotencyStoreFactoryOption) *IdempotencyStoreFactory {
	f := &IdempotencyStoreFactory{
		webhookConfig: webhookCfg,
		redisConfig:   redisCfg,
		logger:        zap.NewNop(),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateStore creates the dedupe store named by webhook.dedupe_store.
// The redis backend shares state across instances; memory is per-process and
// fine for single-instance deployments because webhook processing is
// idempotent regardless.
func (f *IdempotencyStoreFactory) CreateStore() (shared.IdempotencyStore, error) {
	switch f.webhookConfig.DedupeStore {
	case "redis":
		store, err := NewRedisIdempotencyStore(RedisConfig{
			Host:     f.redisConfig.Host,
			Port:     f.redisConfig.Port,
			Password: f.redisConfig.Password,
			DB:       f.redisConfig.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis dedupe store: %w", err)
		}
		f.logger.Info("using Redis webhook dedupe store")
		return store, nil
	case "memory", "":
		f.logger.Info("using in-memory webhook dedupe store")
		return NewInMemoryIdempotencyStore(), nil
	default:
		return nil, fmt.Errorf("unknown dedupe store backend %q", f.webhookConfig.DedupeStore)
	}
}
