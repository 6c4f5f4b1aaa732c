package lock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/khoahotran/skillora/pkg/apperror"
	"github.com/khoahotran/skillora/pkg/logger"
)

const (
	lockKeyPrefix = "skillora:lock:user:"
	retryInterval = 25 * time.Millisecond
)

// unlockScript deletes the key only while it still holds our token, so an
// expired lock re-acquired by another instance is never released by us.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// renewScript extends the lease only while the key still holds our token.
var renewScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// RedisLocker serializes per-user work across server instances.
type RedisLocker struct {
	rdb    *redis.Client
	ttl    time.Duration
	wait   time.Duration
	logger logger.Logger
}

func NewRedisLocker(rdb *redis.Client, ttl, wait time.Duration, log logger.Logger) *RedisLocker {
	return &RedisLocker{rdb: rdb, ttl: ttl, wait: wait, logger: log}
}

func (l *RedisLocker) acquire(ctx context.Context, key, token string) error {
	deadline := time.Now().Add(l.wait)
	for {
		ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return apperror.NewInternal("failed to acquire user lock", err)
		}
		if ok {
			return nil
		}
		if time.Now().After(deadline) {
			return apperror.NewConflict("user", "key", key[len(lockKeyPrefix):])
		}
		select {
		case <-ctx.Done():
			return apperror.NewConflict("user", "key", key[len(lockKeyPrefix):])
		case <-time.After(retryInterval):
		}
	}
}

func (l *RedisLocker) WithLock(ctx context.Context, userKey string, fn func(ctx context.Context) error) error {
	key := lockKeyPrefix + userKey
	token := uuid.NewString()

	if err := l.acquire(ctx, key, token); err != nil {
		return err
	}
	defer func() {
		if err := unlockScript.Run(context.Background(), l.rdb, []string{key}, token).Err(); err != nil {
			l.logger.Warn("Failed to release user lock", zap.String("user_key", userKey), zap.Error(err))
		}
	}()

	fnCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := make(chan struct{})
	defer close(done)
	go l.keepAlive(fnCtx, cancel, done, key, token, userKey)

	return fn(fnCtx)
}

// keepAlive renews the lease every third of the TTL while fn runs. If the
// lease is lost, fn's context is cancelled.
func (l *RedisLocker) keepAlive(ctx context.Context, cancel context.CancelFunc, done <-chan struct{}, key, token, userKey string) {
	interval := l.ttl / 3
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := renewScript.Run(ctx, l.rdb, []string{key}, token, l.ttl.Milliseconds()).Int64()
			if err != nil && ctx.Err() != nil {
				return
			}
			if err != nil || n == 0 {
				l.logger.Warn("Lost user lock while holding it", zap.String("user_key", userKey), zap.Error(err))
				cancel()
				return
			}
		}
	}
}
