package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/alem-hub/studyhub/pkg/circuitbreaker"
)

func TestKeyHelpers(t *testing.T) {
	assert.Equal(t, "studyhub:stats:platform", StatsKey())
	assert.Equal(t, "studyhub:lock:group:g1", LockKey("group:g1"))
	assert.Equal(t, "studyhub:events:user.registered", EventChannel("user.registered"))
	assert.Equal(t, "localhost:6379", DefaultConfig().Addr())
}

func TestCache_ArgumentValidation(t *testing.T) {
	c := NewCacheFromClient(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}))
	defer c.Close()
	ctx := context.Background()

	assert.ErrorIs(t, c.Set(ctx, "", 1, time.Second), ErrCacheKeyEmpty)
	assert.ErrorIs(t, c.Set(ctx, "k", nil, time.Second), ErrCacheNilValue)
	assert.ErrorIs(t, c.Set(ctx, "k", 1, -time.Second), ErrCacheInvalidTTL)

	var dst int
	assert.ErrorIs(t, c.Get(ctx, "", &dst), ErrCacheKeyEmpty)

	_, err := c.SetNX(ctx, "", 1, time.Second)
	assert.ErrorIs(t, err, ErrCacheKeyEmpty)
}

func TestNewCache_Unreachable(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Host = "127.0.0.1"
	cfg.Port = 1
	cfg.DialTimeout = 100 * time.Millisecond
	cfg.MaxRetries = -1

	_, err := NewCache(context.Background(), cfg)
	assert.ErrorIs(t, err, ErrCacheConnection)
}

func TestStatsCache_BreakerOpensOnUnreachableRedis(t *testing.T) {
	c := NewCacheFromClient(redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 100 * time.Millisecond,
	}))
	defer c.Close()
	sc := NewStatsCache(c, time.Minute, circuitbreaker.WithFailureThreshold(2))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, ok, err := sc.Get(ctx)
		assert.Error(t, err)
		assert.False(t, ok)
		assert.False(t, circuitbreaker.IsRejection(err))
	}

	_, _, err := sc.Get(ctx)
	assert.ErrorIs(t, err, circuitbreaker.ErrCircuitOpen)
	assert.ErrorIs(t, sc.Invalidate(ctx), circuitbreaker.ErrCircuitOpen)
}
