package query

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/studyhub/internal/domain/platform"
	"github.com/alem-hub/studyhub/internal/domain/shared"
	"github.com/alem-hub/studyhub/internal/infrastructure/persistence/badger"
	"github.com/alem-hub/studyhub/internal/infrastructure/persistence/records"
	"github.com/alem-hub/studyhub/pkg/circuitbreaker"
)

type fakeStatsCache struct {
	stored  *platform.Stats
	getErr  error
	sets    int
	lookups int
}

func (f *fakeStatsCache) Get(context.Context) (*platform.Stats, bool, error) {
	f.lookups++
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	return f.stored, f.stored != nil, nil
}

func (f *fakeStatsCache) Set(_ context.Context, st *platform.Stats) error {
	f.sets++
	f.stored = st
	return nil
}

func newTestStore(t *testing.T) *records.Store {
	t.Helper()
	backend, err := badger.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })
	return records.NewStore(backend)
}

func TestPlatformStats_CachesResult(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.Update(ctx, func(r platform.Repositories) error {
		return r.Balances().SetBalance(ctx, shared.Identity("alice"), 100)
	}))

	cache := &fakeStatsCache{}
	h := NewPlatformStatsHandler(Deps{Store: store}, cache, nil)

	st, err := h.Handle(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), st.TotalTokensDistributed)
	assert.Equal(t, 1, cache.sets)

	// Served from cache: the store change is not visible until invalidation.
	require.NoError(t, store.Update(ctx, func(r platform.Repositories) error {
		return r.Balances().SetBalance(ctx, shared.Identity("bob"), 50)
	}))
	st, err = h.Handle(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), st.TotalTokensDistributed)
	assert.Equal(t, 1, cache.sets)
}

func TestPlatformStats_CacheFailureFallsBack(t *testing.T) {
	cache := &fakeStatsCache{getErr: errors.New("redis down")}
	h := NewPlatformStatsHandler(Deps{Store: newTestStore(t)}, cache, nil)

	st, err := h.Handle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &platform.Stats{}, st)
	assert.Equal(t, 1, cache.lookups)
}

func TestPlatformStats_OpenBreakerFallsBackToStore(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.Update(ctx, func(r platform.Repositories) error {
		return r.Balances().SetBalance(ctx, shared.Identity("alice"), 70)
	}))

	cache := &fakeStatsCache{getErr: fmt.Errorf("stats: %w", circuitbreaker.ErrCircuitOpen)}
	st, err := NewPlatformStatsHandler(Deps{Store: store}, cache, nil).Handle(ctx)

	require.NoError(t, err)
	assert.Equal(t, uint64(70), st.TotalTokensDistributed)
	assert.Equal(t, 1, cache.sets)
}

func TestResources_RejectsUnknownType(t *testing.T) {
	_, err := NewGroupQueries(Deps{Store: newTestStore(t)}).Resources(context.Background(), "podcast")
	assert.ErrorIs(t, err, shared.ErrInvalidResourceType)
}
