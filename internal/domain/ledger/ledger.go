// Package ledger is the single authoritative store of study-token balances.
//
// Balances are unsigned and every debit checks its precondition before any
// write, so a balance can never go negative. Transfer applies both sides
// inside the caller's unit of work; a failed precondition writes nothing.
package ledger

import (
	"context"
	"fmt"
	"math"

	"github.com/alem-hub/studyhub/internal/domain/shared"
)

// Reward schedule.
const (
	RegistrationGrant       uint64 = 100
	GroupCreationReward     uint64 = 50
	GroupJoinReward         uint64 = 25
	ResourceUploadReward    uint64 = 30
	SessionCompletionReward uint64 = 40
	StreakBonus             uint64 = 100
)

// Credit reasons, used in events and metrics labels.
const (
	ReasonRegistration = "registration"
	ReasonGroupCreated = "group_created"
	ReasonGroupJoined  = "group_joined"
	ReasonUpload       = "resource_uploaded"
	ReasonSession      = "session_completed"
	ReasonStreakBonus  = "streak_bonus"
	ReasonTransfer     = "transfer"
)

// BalanceStore reads and writes raw balances inside one unit of work.
type BalanceStore interface {
	// Balance returns 0 for identities that never held tokens.
	Balance(ctx context.Context, id shared.Identity) (uint64, error)
	SetBalance(ctx context.Context, id shared.Identity, amount uint64) error
	// Total sums every balance. Scans the whole ledger.
	Total(ctx context.Context) (uint64, error)
}

// Ledger applies token movements to a BalanceStore.
type Ledger struct {
	store BalanceStore
}

// New binds a ledger to a store.
func New(store BalanceStore) *Ledger {
	return &Ledger{store: store}
}

// Balance returns the current balance.
func (l *Ledger) Balance(ctx context.Context, id shared.Identity) (uint64, error) {
	bal, err := l.store.Balance(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("ledger: read balance of %s: %w", id, err)
	}
	return bal, nil
}

// Grant sets the opening balance of a new identity.
func (l *Ledger) Grant(ctx context.Context, id shared.Identity, amount uint64) error {
	if err := l.store.SetBalance(ctx, id, amount); err != nil {
		return fmt.Errorf("ledger: grant %s: %w", id, err)
	}
	return nil
}

// Credit adds amount and returns the new balance.
func (l *Ledger) Credit(ctx context.Context, id shared.Identity, amount uint64) (uint64, error) {
	if amount == 0 {
		return 0, shared.ErrInvalidAmount
	}
	bal, err := l.Balance(ctx, id)
	if err != nil {
		return 0, err
	}
	if bal > math.MaxUint64-amount {
		return 0, shared.ErrBalanceOverflow
	}
	bal += amount
	if err := l.store.SetBalance(ctx, id, bal); err != nil {
		return 0, fmt.Errorf("ledger: credit %s: %w", id, err)
	}
	return bal, nil
}

// Debit subtracts amount and returns the new balance.
func (l *Ledger) Debit(ctx context.Context, id shared.Identity, amount uint64) (uint64, error) {
	if amount == 0 {
		return 0, shared.ErrInvalidAmount
	}
	bal, err := l.Balance(ctx, id)
	if err != nil {
		return 0, err
	}
	if bal < amount {
		return bal, shared.ErrInsufficientFunds
	}
	bal -= amount
	if err := l.store.SetBalance(ctx, id, bal); err != nil {
		return 0, fmt.Errorf("ledger: debit %s: %w", id, err)
	}
	return bal, nil
}

// TransferResult reports both balances after a transfer.
type TransferResult struct {
	FromBalance uint64
	ToBalance   uint64
}

// Transfer moves amount from one identity to another. All preconditions are
// checked before the first write.
func (l *Ledger) Transfer(ctx context.Context, from, to shared.Identity, amount uint64) (*TransferResult, error) {
	if amount == 0 {
		return nil, shared.ErrInvalidAmount
	}
	if from == to {
		return nil, shared.ErrSelfTransfer
	}

	fromBal, err := l.Balance(ctx, from)
	if err != nil {
		return nil, err
	}
	if fromBal < amount {
		return nil, shared.ErrInsufficientFunds
	}
	toBal, err := l.Balance(ctx, to)
	if err != nil {
		return nil, err
	}
	if toBal > math.MaxUint64-amount {
		return nil, shared.ErrBalanceOverflow
	}

	if err := l.store.SetBalance(ctx, from, fromBal-amount); err != nil {
		return nil, fmt.Errorf("ledger: transfer debit %s: %w", from, err)
	}
	if err := l.store.SetBalance(ctx, to, toBal+amount); err != nil {
		return nil, fmt.Errorf("ledger: transfer credit %s: %w", to, err)
	}

	return &TransferResult{FromBalance: fromBal - amount, ToBalance: toBal + amount}, nil
}

// Total returns all tokens in circulation.
func (l *Ledger) Total(ctx context.Context) (uint64, error) {
	total, err := l.store.Total(ctx)
	if err != nil {
		return 0, fmt.Errorf("ledger: total: %w", err)
	}
	return total, nil
}
