package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/CristobalNPE/ventesca-sub000/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Locker is the lock contract consumed by the checkout service
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// NoopLocker never blocks. Only suitable with a single writer.
type NoopLocker struct{}

// Lock implements Locker
func (NoopLocker) Lock(context.Context, string) (func(), error) {
	return func() {}, nil
}

// New creates the locker selected by cfg.Backend
func New(ctx context.Context, cfg config.LockConfig, redisCfg config.RedisConfig, logger *zap.Logger) (Locker, error) {
	switch cfg.Backend {
	case "", "memory":
		logger.Info("Using in-memory order lock")
		return NewMemoryLocker(cfg.WaitTimeout), nil
	case "none":
		logger.Warn("Order lock disabled, concurrent writers of one order are not serialized")
		return NoopLocker{}, nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     redisCfg.Addr(),
			Password: redisCfg.Password,
			DB:       redisCfg.DB,
		})

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}

		logger.Info("Using Redis order lock", zap.String("addr", redisCfg.Addr()))
		return NewRedisLocker(client,
			WithKeyPrefix(cfg.KeyPrefix),
			WithTTL(cfg.TTL),
			WithWaitTimeout(cfg.WaitTimeout),
			WithRetryDelay(cfg.RetryDelay),
			WithLockLogger(logger),
		), nil
	default:
		return nil, fmt.Errorf("unknown lock backend %q", cfg.Backend)
	}
}
