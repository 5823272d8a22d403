package query

import (
	"context"

	"github.com/alem-hub/studyhub/internal/domain/platform"
	"github.com/alem-hub/studyhub/pkg/circuitbreaker"
	"github.com/alem-hub/studyhub/pkg/logger"
)

// StatsCache stores computed platform totals between recomputations.
type StatsCache interface {
	Get(ctx context.Context) (*platform.Stats, bool, error)
	Set(ctx context.Context, st *platform.Stats) error
}

// PlatformStatsHandler returns platform-wide totals.
type PlatformStatsHandler struct {
	deps  Deps
	cache StatsCache
	log   *logger.Logger
}

// NewPlatformStatsHandler creates a handler. cache may be nil.
func NewPlatformStatsHandler(deps Deps, cache StatsCache, log *logger.Logger) *PlatformStatsHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &PlatformStatsHandler{deps: deps.withDefaults(), cache: cache, log: log}
}

// Handle returns the totals, from cache when fresh. Cache failures fall back
// to the store.
func (h *PlatformStatsHandler) Handle(ctx context.Context) (*platform.Stats, error) {
	if h.cache != nil {
		st, ok, err := h.cache.Get(ctx)
		switch {
		case circuitbreaker.IsRejection(err):
			// The breaker logs its own transitions.
		case err != nil:
			h.log.Warn("stats cache read failed", logger.Err(err))
		case ok:
			return st, nil
		}
	}

	var st *platform.Stats
	err := h.deps.view(ctx, "get_platform_stats", func(ctx context.Context, r platform.Repositories) error {
		var err error
		st, err = platform.CollectStats(ctx, r)
		return err
	})
	if err != nil {
		return nil, err
	}

	if h.cache != nil {
		if err := h.cache.Set(ctx, st); err != nil && !circuitbreaker.IsRejection(err) {
			h.log.Warn("stats cache write failed", logger.Err(err))
		}
	}
	return st, nil
}
