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

func TestMemoryLimiter(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	l := NewMemoryLimiter(2, time.Minute)
	l.now = func() time.Time { return now }

	for i, want := range []bool{true, true, false, false} {
		ok, err := l.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.Equal(t, want, ok, "attempt %d", i)
	}

	ok, _ := l.Allow(ctx, "5.6.7.8")
	assert.True(t, ok, "keys are independent")

	now = now.Add(time.Minute)
	ok, _ = l.Allow(ctx, "1.2.3.4")
	assert.True(t, ok, "new window must reset the counter")

	now = now.Add(2 * time.Minute)
	l.Cleanup()
	assert.Equal(t, 0, l.size())
}

func TestRedisLimiter(t *testing.T) {
	ctx := context.Background()
	s := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer rc.Close()

	l := NewRedisLimiter(rc, "create-room", 3, time.Minute)

	for i, want := range []bool{true, true, true, false} {
		ok, err := l.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.Equal(t, want, ok, "attempt %d", i)
	}

	assert.True(t, s.Exists("ratelimit:create-room:1.2.3.4"))
	assert.Greater(t, s.TTL("ratelimit:create-room:1.2.3.4"), time.Duration(0))

	s.FastForward(time.Minute + time.Second)

	ok, err := l.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLimiterUnavailable(t *testing.T) {
	s := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: s.Addr(), MaxRetries: -1})
	defer rc.Close()
	s.Close()

	l := NewRedisLimiter(rc, "create-room", 3, time.Minute)
	_, err := l.Allow(context.Background(), "k")
	assert.Error(t, err)
}
