package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func unreachableRedis(t *testing.T) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func fixedClock(l *FixedWindowLimiter, at time.Time) {
	l.now = func() time.Time { return at }
}

func TestFixedWindowLimiter_Allow(t *testing.T) {
	client, _ := setupTestRedis(t)
	limiter := NewFixedWindowLimiter(client, zap.NewNop(), false)
	fixedClock(limiter, time.Unix(1_700_000_000, 0))

	ctx := context.Background()
	for i := range 3 {
		ok, err := limiter.Allow(ctx, "user:1", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, ok, "request %d", i+1)
	}

	ok, err := limiter.Allow(ctx, "user:1", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = limiter.Allow(ctx, "user:2", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "keys are independent")
}

func TestFixedWindowLimiter_NewWindow(t *testing.T) {
	client, _ := setupTestRedis(t)
	limiter := NewFixedWindowLimiter(client, zap.NewNop(), false)

	start := time.Unix(1_700_000_040, 0)
	fixedClock(limiter, start)
	ctx := context.Background()

	ok, err := limiter.Allow(ctx, "user:1", 1, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	ok, _ = limiter.Allow(ctx, "user:1", 1, time.Minute)
	require.False(t, ok)

	fixedClock(limiter, start.Add(time.Minute))
	ok, err = limiter.Allow(ctx, "user:1", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFixedWindowLimiter_Remaining(t *testing.T) {
	client, _ := setupTestRedis(t)
	limiter := NewFixedWindowLimiter(client, zap.NewNop(), false)
	fixedClock(limiter, time.Unix(1_700_000_000, 0))
	ctx := context.Background()

	left, err := limiter.Remaining(ctx, "user:9", 5, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 5, left)

	for range 7 {
		_, err := limiter.Allow(ctx, "user:9", 5, time.Minute)
		require.NoError(t, err)
	}
	left, err = limiter.Remaining(ctx, "user:9", 5, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 0, left)
}

func TestFixedWindowLimiter_BackendDown(t *testing.T) {
	t.Run("fail open", func(t *testing.T) {
		limiter := NewFixedWindowLimiter(unreachableRedis(t), zap.NewNop(), true)

		ok, err := limiter.Allow(context.Background(), "user:1", 1, time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("fail closed", func(t *testing.T) {
		limiter := NewFixedWindowLimiter(unreachableRedis(t), zap.NewNop(), false)

		ok, err := limiter.Allow(context.Background(), "user:1", 1, time.Minute)
		assert.Error(t, err)
		assert.False(t, ok)
	})
}

func TestFixedWindowLimiter_Concurrent(t *testing.T) {
	client, _ := setupTestRedis(t)
	limiter := NewFixedWindowLimiter(client, zap.NewNop(), false)
	fixedClock(limiter, time.Unix(1_700_000_000, 0))

	var allowed atomic.Int32
	var wg sync.WaitGroup
	for range 40 {
		wg.Go(func() {
			if ok, err := limiter.Allow(context.Background(), "user:hot", 10, time.Minute); err == nil && ok {
				allowed.Add(1)
			}
		})
	}
	wg.Wait()
	assert.Equal(t, int32(10), allowed.Load())
}
