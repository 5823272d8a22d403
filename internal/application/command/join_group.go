package command

import (
	"context"

	"github.com/alem-hub/studyhub/internal/domain/group"
	"github.com/alem-hub/studyhub/internal/domain/ledger"
	"github.com/alem-hub/studyhub/internal/domain/platform"
	"github.com/alem-hub/studyhub/internal/domain/shared"
)

// JoinGroupCommand adds the caller to a group.
type JoinGroupCommand struct {
	Caller  string
	GroupID string
}

// JoinGroupResult is returned on success.
type JoinGroupResult struct {
	Group   *group.StudyGroup
	Reward  uint64
	Balance uint64
}

// JoinGroupHandler handles JoinGroupCommand.
type JoinGroupHandler struct {
	deps Deps
}

// NewJoinGroupHandler creates a new JoinGroupHandler.
func NewJoinGroupHandler(deps Deps) *JoinGroupHandler {
	return &JoinGroupHandler{deps: deps.withDefaults()}
}

// Handle joins the group and credits the join reward. Checks run in order:
// group exists, caller registered, capacity, membership.
func (h *JoinGroupHandler) Handle(ctx context.Context, cmd JoinGroupCommand) (*JoinGroupResult, error) {
	id, err := shared.NewIdentity(cmd.Caller)
	if err != nil {
		return nil, err
	}
	if cmd.GroupID == "" {
		return nil, shared.ErrGroupNotFound
	}

	var res *JoinGroupResult
	err = h.deps.run(ctx, "join_group", id, []string{platform.UserKey(id), platform.GroupKey(cmd.GroupID)},
		func(ctx context.Context, r platform.Repositories) ([]shared.Event, error) {
			g, err := r.Groups().Get(ctx, cmd.GroupID)
			if err != nil {
				return nil, err
			}
			if err := requireUser(ctx, r, id); err != nil {
				return nil, err
			}
			if err := g.Join(id); err != nil {
				return nil, err
			}
			if err := r.Groups().Save(ctx, g); err != nil {
				return nil, err
			}

			now := h.deps.Clock.Now()
			bal, credited, err := credit(ctx, r, id, ledger.GroupJoinReward, ledger.ReasonGroupJoined, now)
			if err != nil {
				return nil, err
			}

			res = &JoinGroupResult{Group: g, Reward: ledger.GroupJoinReward, Balance: bal}
			return []shared.Event{
				shared.NewMemberJoinedEvent(g.ID, id, g.CurrentMembers(), now),
				credited,
			}, nil
		})
	if err != nil {
		return nil, err
	}
	return res, nil
}
