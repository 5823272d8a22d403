// Package records maps the study platform's aggregates onto an ordered
// key-value store. Every record is JSON under a kind prefix:
//
//	user/<identity>      user.Profile
//	group/<id>           group.StudyGroup
//	session/<id>         group.Session
//	resource/<id>        resource.Resource
//	balance/<identity>   uint64, big-endian
//
// Scan callbacks only decode; they never issue nested reads, since the
// Postgres backend cannot run a query while a cursor is open.
package records

import (
	"context"
	"time"

	"github.com/alem-hub/studyhub/internal/domain/group"
	"github.com/alem-hub/studyhub/internal/domain/ledger"
	"github.com/alem-hub/studyhub/internal/domain/platform"
	"github.com/alem-hub/studyhub/internal/domain/resource"
	"github.com/alem-hub/studyhub/internal/domain/user"
	"github.com/alem-hub/studyhub/internal/infrastructure/persistence/kv"
	"github.com/alem-hub/studyhub/pkg/logger"
	"github.com/alem-hub/studyhub/pkg/retry"
)

// Key prefixes.
const (
	PrefixUser     = "user/"
	PrefixGroup    = "group/"
	PrefixSession  = "session/"
	PrefixResource = "resource/"
	PrefixBalance  = "balance/"
)

// Store implements platform.Store over a kv.Store.
type Store struct {
	kv      kv.Store
	retrier *retry.Retrier
	log     *logger.Logger
	onRetry func()
}

var _ platform.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithConflictHook is called every time a unit of work is retried.
func WithConflictHook(fn func()) Option {
	return func(s *Store) { s.onRetry = fn }
}

// NewStore wraps backend.
func NewStore(backend kv.Store, opts ...Option) *Store {
	s := &Store{kv: backend, log: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	s.retrier = retry.New(retry.TxConflict,
		retry.WithOnRetry(func(attempt int, err error, delay time.Duration) {
			s.log.Debug("unit of work conflict, retrying",
				logger.Int("attempt", attempt), logger.Duration("delay", delay), logger.Err(err))
			if s.onRetry != nil {
				s.onRetry()
			}
		}),
	)
	return s
}

// View runs fn against a read-only snapshot.
func (s *Store) View(ctx context.Context, fn func(platform.Repositories) error) error {
	return s.kv.View(ctx, func(txn kv.Txn) error {
		return fn(newRepos(txn))
	})
}

// Update runs fn in a read-write transaction and retries it on conflict.
// fn may run more than once and must not have side effects outside the
// repositories.
func (s *Store) Update(ctx context.Context, fn func(platform.Repositories) error) error {
	return s.retrier.Do(ctx, func(ctx context.Context) error {
		return s.kv.Update(ctx, func(txn kv.Txn) error {
			return fn(newRepos(txn))
		})
	})
}

// Ping checks the backend.
func (s *Store) Ping(ctx context.Context) error {
	return s.kv.Ping(ctx)
}

// ──────────────────────────────────────────────────────────────────────────────

type repos struct {
	users     *userRepo
	groups    *groupRepo
	sessions  *sessionRepo
	resources *resourceRepo
	balances  *balanceRepo
}

func newRepos(txn kv.Txn) *repos {
	return &repos{
		users:     &userRepo{txn: txn},
		groups:    &groupRepo{txn: txn},
		sessions:  &sessionRepo{txn: txn},
		resources: &resourceRepo{txn: txn},
		balances:  &balanceRepo{txn: txn},
	}
}

func (r *repos) Users() user.Repository            { return r.users }
func (r *repos) Groups() group.Repository          { return r.groups }
func (r *repos) Sessions() group.SessionRepository { return r.sessions }
func (r *repos) Resources() resource.Repository    { return r.resources }
func (r *repos) Balances() ledger.BalanceStore     { return r.balances }
