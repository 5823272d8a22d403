package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/alem-hub/studyhub/internal/domain/shared"
	"github.com/alem-hub/studyhub/internal/infrastructure/lock"
	"github.com/alem-hub/studyhub/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// DISTRIBUTED LOCK
// ══════════════════════════════════════════════════════════════════════════════

// releaseScript deletes a lock only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker is a lock.Locker shared by every instance that talks to the same
// Redis. Each key is a SET NX PX entry holding a random token.
type Locker struct {
	client *redis.Client
	ttl    time.Duration
}

var _ lock.Locker = (*Locker)(nil)

// NewLocker creates a Locker on the cache's client. ttl <= 0 uses
// TTLDistributedLock.
func NewLocker(c *Cache, ttl time.Duration) *Locker {
	if ttl <= 0 {
		ttl = TTLDistributedLock
	}
	return &Locker{client: c.client, ttl: ttl}
}

// Lock implements lock.Locker. Keys are taken in sorted order; a busy key is
// polled with backoff until it frees up, the attempts run out or ctx is done.
func (l *Locker) Lock(ctx context.Context, keys ...string) (func(), error) {
	keys = lock.Keys(keys...)
	token := uuid.NewString()
	held := make([]string, 0, len(keys))

	release := func() {
		// Release must succeed even when the caller's context is already done.
		rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		for i := len(held) - 1; i >= 0; i-- {
			_ = releaseScript.Run(rctx, l.client, []string{held[i]}, token).Err()
		}
	}

	spin := retry.New(retry.LockSpin)

	for _, k := range keys {
		rk := LockKey(k)
		err := spin.Do(ctx, func(ctx context.Context) error {
			ok, err := l.client.SetNX(ctx, rk, token, l.ttl).Result()
			if err != nil {
				return fmt.Errorf("redis lock %s: %w", k, err)
			}
			if !ok {
				return retry.Retryable(shared.ErrLockNotAcquired)
			}
			return nil
		})
		if err != nil {
			release()
			return nil, err
		}
		held = append(held, rk)
	}

	released := false
	return func() {
		if !released {
			released = true
			release()
		}
	}, nil
}
