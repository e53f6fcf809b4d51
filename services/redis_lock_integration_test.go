//go:build integration

package services

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

func newRedisClient(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := tcredis.Run(ctx,
		"docker.io/redis:7-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("* Ready to accept connections").
				WithOccurrence(1).
				WithStartupTimeout(1*time.Minute),
		),
	)
	require.NoError(t, err, "Failed to start redis container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: host + ":" + port.Port()})
	require.NoError(t, client.Ping(ctx).Err())
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisOwnerLocks(t *testing.T) {
	client := newRedisClient(t)
	locks := NewRedisOwnerLocks(client, 2*time.Second, zap.NewNop())
	ctx := context.Background()

	unlock, err := locks.Lock(ctx, "owner-a")
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	_, err = locks.Lock(waitCtx, "owner-a")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	other, err := locks.Lock(ctx, "owner-b")
	require.NoError(t, err)
	other()

	unlock()
	relock, err := locks.Lock(ctx, "owner-a")
	require.NoError(t, err)
	relock()
}

func TestRedisOwnerLocksExpire(t *testing.T) {
	client := newRedisClient(t)
	locks := NewRedisOwnerLocks(client, 150*time.Millisecond, zap.NewNop())
	ctx := context.Background()

	stale, err := locks.Lock(ctx, "owner-a")
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	fresh, err := locks.Lock(waitCtx, "owner-a")
	require.NoError(t, err)

	// releasing the expired lease must not drop the new holder's lease
	stale()
	n, err := client.Exists(ctx, lockKeyPrefix+"owner-a").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	fresh()
}
