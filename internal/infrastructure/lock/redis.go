package lock

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/CristobalNPE/ventesca-sub000/internal/domain/shared"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// releaseScript deletes the key only while it still carries our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker implements a lease based lock shared across processes.
// The lease expires after ttl so a crashed holder cannot block an order forever.
type RedisLocker struct {
	client      redis.UniversalClient
	keyPrefix   string
	ttl         time.Duration
	waitTimeout time.Duration
	retryDelay  time.Duration
	logger      *zap.Logger
}

// RedisLockerOption configures a RedisLocker
type RedisLockerOption func(*RedisLocker)

// WithKeyPrefix sets the prefix prepended to every lock key
func WithKeyPrefix(prefix string) RedisLockerOption {
	return func(l *RedisLocker) {
		l.keyPrefix = prefix
	}
}

// WithTTL sets the lease of an acquired lock
func WithTTL(ttl time.Duration) RedisLockerOption {
	return func(l *RedisLocker) {
		l.ttl = ttl
	}
}

// WithWaitTimeout bounds how long Lock retries
func WithWaitTimeout(d time.Duration) RedisLockerOption {
	return func(l *RedisLocker) {
		l.waitTimeout = d
	}
}

// WithRetryDelay sets the pause between acquisition attempts
func WithRetryDelay(d time.Duration) RedisLockerOption {
	return func(l *RedisLocker) {
		l.retryDelay = d
	}
}

// WithLockLogger sets the logger
func WithLockLogger(logger *zap.Logger) RedisLockerOption {
	return func(l *RedisLocker) {
		l.logger = logger
	}
}

// NewRedisLocker creates a locker with an existing Redis client
func NewRedisLocker(client redis.UniversalClient, opts ...RedisLockerOption) *RedisLocker {
	l := &RedisLocker{
		client:      client,
		keyPrefix:   "ventesca:lock:",
		ttl:         30 * time.Second,
		waitTimeout: 5 * time.Second,
		retryDelay:  50 * time.Millisecond,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Lock acquires key with SET NX PX, retrying until the wait timeout
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	token, err := newToken()
	if err != nil {
		return nil, err
	}
	fullKey := l.keyPrefix + key

	waitCtx := ctx
	if l.waitTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, l.waitTimeout)
		defer cancel()
	}

	for {
		ok, err := l.client.SetNX(waitCtx, fullKey, token, l.ttl).Result()
		if err != nil {
			if waitCtx.Err() != nil {
				return nil, shared.WrapDomainError(shared.ErrConcurrencyConflict, waitCtx.Err())
			}
			return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		if ok {
			break
		}

		timer := time.NewTimer(l.retryDelay)
		select {
		case <-waitCtx.Done():
			timer.Stop()
			return nil, shared.WrapDomainError(shared.ErrConcurrencyConflict, waitCtx.Err())
		case <-timer.C:
		}
	}

	return func() {
		// release must outlive a cancelled request context
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		err := releaseScript.Run(releaseCtx, l.client, []string{fullKey}, token).Err()
		if err != nil && !errors.Is(err, redis.Nil) {
			l.logger.Warn("Failed to release lock",
				zap.String("key", fullKey),
				zap.Error(err),
			)
		}
	}, nil
}

// Close releases the Redis client
func (l *RedisLocker) Close() error {
	return l.client.Close()
}

func newToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate lock token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
