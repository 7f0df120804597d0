package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"shiftmatch/internal/config"
	"shiftmatch/internal/domain/job"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRedis_UnconfiguredBypasses(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	r := NewRedis(config.RedisConfig{}, zap.New(core))
	ctx := context.Background()

	assert.True(t, errors.Is(r.Ping(ctx), ErrUnavailable))
	assert.Equal(t, 1, logs.FilterMessage("redis address not configured, bypassing cache").Len())

	r.SetOpenJobs(ctx, []job.Job{{ID: uuid.New()}})
	jobs, ok := r.GetOpenJobs(ctx)
	assert.False(t, ok)
	assert.Nil(t, jobs)
	r.InvalidateOpenJobs(ctx)

	token, locked, err := r.TryLock(ctx, "dispatch:lock:x", time.Second)
	require.NoError(t, err)
	assert.True(t, locked)
	assert.NotEmpty(t, token)
	assert.NoError(t, r.Unlock(ctx, "dispatch:lock:x", token))
	assert.NoError(t, r.Close())
}

func TestRedis_UnreachableBypasses(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	r := NewRedis(config.RedisConfig{Addr: "127.0.0.1:1"}, zap.New(core))

	assert.True(t, r.isUnavailable())
	assert.Equal(t, 1, logs.FilterMessage("redis unavailable, bypassing cache").Len())

	ok, err := r.SetIfNotExists(context.Background(), "k", "v", 0)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedis_NilReceiverIsSafe(t *testing.T) {
	var r *Redis
	ok, err := r.GetJSON(context.Background(), KeyOpenJobs, &[]job.Job{})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, r.SetJSON(context.Background(), KeyOpenJobs, nil, 0))
	assert.NoError(t, r.Delete(context.Background(), KeyOpenJobs))
}

// Runs against a live server when SHIFTMATCH_TEST_REDIS_ADDR is set.
func TestRedis_UnlockRequiresOwnership(t *testing.T) {
	addr := os.Getenv("SHIFTMATCH_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("SHIFTMATCH_TEST_REDIS_ADDR not set")
	}
	r := NewRedis(config.RedisConfig{Addr: addr}, zap.NewNop())
	require.False(t, r.isUnavailable())
	t.Cleanup(func() { _ = r.Close() })

	ctx := context.Background()
	key := "dispatch:lock:" + uuid.NewString()
	t.Cleanup(func() { _ = r.Delete(context.Background(), key) })

	first, ok, err := r.TryLock(ctx, key, 50*time.Millisecond)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = r.TryLock(ctx, key, time.Second)
	require.NoError(t, err)
	assert.False(t, ok, "held lock is exclusive")

	time.Sleep(100 * time.Millisecond)
	second, ok, err := r.TryLock(ctx, key, time.Minute)
	require.NoError(t, err)
	require.True(t, ok, "expired lock can be retaken")
	assert.NotEqual(t, first, second)

	require.NoError(t, r.Unlock(ctx, key, first))
	var held string
	held, err = r.client.Get(ctx, key).Result()
	require.NoError(t, err)
	assert.Equal(t, second, held, "stale owner must not release the new holder")

	require.NoError(t, r.Unlock(ctx, key, second))
	_, err = r.client.Get(ctx, key).Result()
	assert.True(t, errors.Is(err, redis.Nil))
}
