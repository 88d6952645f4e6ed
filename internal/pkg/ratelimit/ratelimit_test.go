package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, limit int, window time.Duration) (*miniredis.Miniredis, *Limiter) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, New(client, limit, window)
}

func TestAllowWithinBudget(t *testing.T) {
	_, limiter := newTestLimiter(t, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := limiter.Allow(ctx, "subscribe:10.0.0.1")
		require.NoError(t, err)
		assert.True(t, ok, "request %d should be within budget", i+1)
	}
}

func TestDenyOverBudget(t *testing.T) {
	_, limiter := newTestLimiter(t, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		limiter.Allow(ctx, "subscribe:10.0.0.1")
	}
	ok, err := limiter.Allow(ctx, "subscribe:10.0.0.1")
	require.NoError(t, err)
	assert.False(t, ok, "4th request in the window must be denied")
}

func TestKeysAreIndependent(t *testing.T) {
	_, limiter := newTestLimiter(t, 1, time.Minute)
	ctx := context.Background()

	ok, _ := limiter.Allow(ctx, "subscribe:10.0.0.1")
	require.True(t, ok)
	ok, _ = limiter.Allow(ctx, "subscribe:10.0.0.1")
	require.False(t, ok)

	ok, err := limiter.Allow(ctx, "subscribe:10.0.0.2")
	require.NoError(t, err)
	assert.True(t, ok, "a different client must have its own budget")
}

func TestWindowResets(t *testing.T) {
	mr, limiter := newTestLimiter(t, 1, time.Minute)
	ctx := context.Background()

	ok, _ := limiter.Allow(ctx, "subscribe:10.0.0.1")
	require.True(t, ok)
	ok, _ = limiter.Allow(ctx, "subscribe:10.0.0.1")
	require.False(t, ok)

	mr.FastForward(time.Minute + time.Second)

	ok, err := limiter.Allow(ctx, "subscribe:10.0.0.1")
	require.NoError(t, err)
	assert.True(t, ok, "budget must reset after the window expires")
}

func TestRedisFailureSurfacesAsError(t *testing.T) {
	mr, limiter := newTestLimiter(t, 1, time.Minute)
	mr.Close()

	_, err := limiter.Allow(context.Background(), "subscribe:10.0.0.1")
	assert.Error(t, err)
}
