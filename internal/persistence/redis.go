package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/storefront-api/internal/config"
	"github.com/spec-kit/storefront-api/internal/notify"
)

const redisDialTimeout = 2 * time.Second

// Redis wraps the go-redis client that carries reset notifications.
type Redis struct {
	Client *redis.Client
}

// NewRedis builds a client. Connectivity is checked lazily by Ping and Notifier.
func NewRedis(cfg config.RedisConfig) *Redis {
	return &Redis{Client: redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: redisDialTimeout,
	})}
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}

// Notifier returns a queue-backed notifier pushing onto key when Redis
// answers, and a log-only notifier otherwise.
func (r *Redis) Notifier(ctx context.Context, key string, logger *zap.Logger) notify.Notifier {
	if err := r.Ping(ctx); err != nil {
		logger.Warn("redis unavailable; reset notifications will only be logged", zap.Error(err))
		return notify.NewLogNotifier(logger)
	}
	logger.Info("connected to redis", zap.String("reset_queue", key))
	return notify.NewRedisQueue(r.Client, key)
}
