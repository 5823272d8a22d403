package command

import (
	"context"

	"github.com/alem-hub/studyhub/internal/domain/ledger"
	"github.com/alem-hub/studyhub/internal/domain/platform"
	"github.com/alem-hub/studyhub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// TRANSFER TOKENS COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// TransferTokensCommand moves tokens from the caller to a recipient.
type TransferTokensCommand struct {
	Caller    string
	Recipient string
	Amount    uint64
}

// Validate parses the boundary input.
func (c TransferTokensCommand) Validate() (from, to shared.Identity, err error) {
	if from, err = shared.NewIdentity(c.Caller); err != nil {
		return "", "", err
	}
	if to, err = shared.NewIdentity(c.Recipient); err != nil {
		return "", "", err
	}
	if c.Amount == 0 {
		return "", "", shared.ErrInvalidAmount
	}
	if from == to {
		return "", "", shared.ErrSelfTransfer
	}
	return from, to, nil
}

// TransferTokensResult reports both balances after the transfer.
type TransferTokensResult struct {
	Amount      uint64
	FromBalance uint64
	ToBalance   uint64
}

// TransferTokensHandler handles TransferTokensCommand.
type TransferTokensHandler struct {
	deps Deps
}

// NewTransferTokensHandler creates a new TransferTokensHandler.
func NewTransferTokensHandler(deps Deps) *TransferTokensHandler {
	return &TransferTokensHandler{deps: deps.withDefaults()}
}

// Handle transfers tokens. The recipient must be registered. Both balances
// change together or not at all.
func (h *TransferTokensHandler) Handle(ctx context.Context, cmd TransferTokensCommand) (*TransferTokensResult, error) {
	from, to, err := cmd.Validate()
	if err != nil {
		return nil, err
	}

	var res *TransferTokensResult
	err = h.deps.run(ctx, "transfer_tokens", from, []string{platform.UserKey(from), platform.UserKey(to)},
		func(ctx context.Context, r platform.Repositories) ([]shared.Event, error) {
			if err := requireUser(ctx, r, to); err != nil {
				return nil, err
			}
			out, err := ledger.New(r.Balances()).Transfer(ctx, from, to, cmd.Amount)
			if err != nil {
				return nil, err
			}
			res = &TransferTokensResult{Amount: cmd.Amount, FromBalance: out.FromBalance, ToBalance: out.ToBalance}
			return []shared.Event{
				shared.NewTokensTransferredEvent(from, to, cmd.Amount, h.deps.Clock.Now()),
			}, nil
		})
	if err != nil {
		return nil, err
	}
	return res, nil
}
