// Package platform defines the unit of work that binds every repository of
// the study platform to one store transaction.
package platform

import (
	"context"

	"github.com/alem-hub/studyhub/internal/domain/group"
	"github.com/alem-hub/studyhub/internal/domain/ledger"
	"github.com/alem-hub/studyhub/internal/domain/resource"
	"github.com/alem-hub/studyhub/internal/domain/shared"
	"github.com/alem-hub/studyhub/internal/domain/user"
)

// Repositories exposes the repositories of one unit of work.
type Repositories interface {
	Users() user.Repository
	Groups() group.Repository
	Sessions() group.SessionRepository
	Resources() resource.Repository
	Balances() ledger.BalanceStore
}

// Store runs units of work. Update commits only when fn returns nil; any
// error leaves the store untouched.
type Store interface {
	View(ctx context.Context, fn func(Repositories) error) error
	Update(ctx context.Context, fn func(Repositories) error) error
}

// Locker serializes writers per key. Keys are acquired in sorted order.
type Locker interface {
	Lock(ctx context.Context, keys ...string) (unlock func(), err error)
}

// UserKey names the lock of a profile and its balance.
func UserKey(id shared.Identity) string { return "user:" + id.String() }

// GroupKey names the lock of a group.
func GroupKey(id string) string { return "group:" + id }

// SessionKey names the lock of a session.
func SessionKey(id string) string { return "session:" + id }

// ResourceKey names the lock of a resource.
func ResourceKey(id string) string { return "resource:" + id }

// Stats are the platform-wide totals.
type Stats struct {
	TotalUsers             int    `json:"total_users"`
	TotalGroups            int    `json:"total_groups"`
	TotalResources         int    `json:"total_resources"`
	TotalSessions          int    `json:"total_sessions"`
	TotalTokensDistributed uint64 `json:"total_tokens_distributed"`
}

// Stats computes the platform totals in one snapshot.
func CollectStats(ctx context.Context, r Repositories) (*Stats, error) {
	var (
		st  Stats
		err error
	)
	if st.TotalUsers, err = r.Users().Count(ctx); err != nil {
		return nil, err
	}
	if st.TotalGroups, err = r.Groups().Count(ctx); err != nil {
		return nil, err
	}
	if st.TotalResources, err = r.Resources().Count(ctx); err != nil {
		return nil, err
	}
	if st.TotalSessions, err = r.Sessions().Count(ctx); err != nil {
		return nil, err
	}
	if st.TotalTokensDistributed, err = r.Balances().Total(ctx); err != nil {
		return nil, err
	}
	return &st, nil
}
