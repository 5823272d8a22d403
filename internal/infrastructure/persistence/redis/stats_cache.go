package redis

import (
	"context"
	"errors"
	"time"

	"github.com/alem-hub/studyhub/internal/domain/platform"
	"github.com/alem-hub/studyhub/pkg/circuitbreaker"
)

// StatsCache caches platform statistics between recomputations. Calls go
// through a circuit breaker so an unreachable Redis costs one fast error
// instead of a dial timeout per request.
type StatsCache struct {
	cache   *Cache
	ttl     time.Duration
	breaker *circuitbreaker.CircuitBreaker
}

// NewStatsCache creates a StatsCache. ttl <= 0 uses TTLStatsCache.
func NewStatsCache(c *Cache, ttl time.Duration, opts ...circuitbreaker.Option) *StatsCache {
	if ttl <= 0 {
		ttl = TTLStatsCache
	}
	opts = append([]circuitbreaker.Option{
		circuitbreaker.WithIsFailure(func(err error) bool {
			return !errors.Is(err, ErrCacheMiss)
		}),
	}, opts...)
	return &StatsCache{
		cache:   c,
		ttl:     ttl,
		breaker: circuitbreaker.New("redis-stats", opts...),
	}
}

// Get returns the cached stats, or ok=false on a miss.
func (s *StatsCache) Get(ctx context.Context) (*platform.Stats, bool, error) {
	var st platform.Stats
	err := s.breaker.Execute(ctx, func(ctx context.Context) error {
		return s.cache.Get(ctx, StatsKey(), &st)
	})
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return &st, true, nil
}

// Set stores stats.
func (s *StatsCache) Set(ctx context.Context, st *platform.Stats) error {
	return s.breaker.Execute(ctx, func(ctx context.Context) error {
		return s.cache.Set(ctx, StatsKey(), st, s.ttl)
	})
}

// Invalidate drops the cached stats.
func (s *StatsCache) Invalidate(ctx context.Context) error {
	return s.breaker.Execute(ctx, func(ctx context.Context) error {
		return s.cache.Delete(ctx, StatsKey())
	})
}
