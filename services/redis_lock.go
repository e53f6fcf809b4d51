package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	lockKeyPrefix   = "taskrealm:owner-lock:"
	lockPollDelay   = 25 * time.Millisecond
	lockReleaseWait = 2 * time.Second
)

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisOwnerLocks serializes owners across server instances with a
// SET NX PX lease per owner.
type RedisOwnerLocks struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

var _ OwnerLocker = (*RedisOwnerLocks)(nil)

// NewRedisOwnerLocks returns a locker whose leases expire after ttl.
func NewRedisOwnerLocks(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisOwnerLocks {
	return &RedisOwnerLocks{client: client, ttl: ttl, logger: logger.Named("RedisOwnerLocks")}
}

// Lock polls until the lease is acquired or ctx is done.
func (l *RedisOwnerLocks) Lock(ctx context.Context, ownerID string) (func(), error) {
	key := lockKeyPrefix + ownerID
	token := uuid.NewString()

	ticker := time.NewTicker(lockPollDelay)
	defer ticker.Stop()
	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("failed to acquire owner lock: %w", err)
		}
		if ok {
			return l.releaser(key, token), nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (l *RedisOwnerLocks) releaser(key, token string) func() {
	released := false
	return func() {
		if released {
			return
		}
		released = true

		// released even when the caller's context is already cancelled
		ctx, cancel := context.WithTimeout(context.Background(), lockReleaseWait)
		defer cancel()
		n, err := releaseScript.Run(ctx, l.client, []string{key}, token).Int()
		if err != nil && !errors.Is(err, redis.Nil) {
			l.logger.Error("Failed to release owner lock", zap.String("key", key), zap.Error(err))
			return
		}
		if n == 0 {
			l.logger.Warn("Owner lock expired before release", zap.String("key", key))
		}
	}
}
