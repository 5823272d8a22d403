package command

import (
	"context"

	"github.com/alem-hub/studyhub/internal/domain/group"
	"github.com/alem-hub/studyhub/internal/domain/ledger"
	"github.com/alem-hub/studyhub/internal/domain/platform"
	"github.com/alem-hub/studyhub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CREATE STUDY GROUP COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// CreateGroupCommand contains the new group's settings.
type CreateGroupCommand struct {
	Caller      string
	Name        string
	Description string
	Subject     string
	SkillLevel  string
	MaxMembers  uint32
}

// CreateGroupResult is returned on success.
type CreateGroupResult struct {
	Group   *group.StudyGroup
	Reward  uint64
	Balance uint64
}

// CreateGroupHandler handles CreateGroupCommand.
type CreateGroupHandler struct {
	deps Deps
}

// NewCreateGroupHandler creates a new CreateGroupHandler.
func NewCreateGroupHandler(deps Deps) *CreateGroupHandler {
	return &CreateGroupHandler{deps: deps.withDefaults()}
}

// Handle creates the group with the caller as first member and credits the
// creation reward. The caller must be registered.
func (h *CreateGroupHandler) Handle(ctx context.Context, cmd CreateGroupCommand) (*CreateGroupResult, error) {
	id, err := shared.NewIdentity(cmd.Caller)
	if err != nil {
		return nil, err
	}
	level, err := shared.ParseSkillLevel(cmd.SkillLevel)
	if err != nil {
		return nil, err
	}
	groupID := h.deps.NewID(group.IDPrefix)

	var res *CreateGroupResult
	err = h.deps.run(ctx, "create_group", id, []string{platform.UserKey(id), platform.GroupKey(groupID)},
		func(ctx context.Context, r platform.Repositories) ([]shared.Event, error) {
			if err := requireUser(ctx, r, id); err != nil {
				return nil, err
			}

			now := h.deps.Clock.Now()
			g, err := group.NewStudyGroup(group.NewGroupParams{
				ID:          groupID,
				Name:        cmd.Name,
				Description: cmd.Description,
				Subject:     cmd.Subject,
				SkillLevel:  level,
				MaxMembers:  cmd.MaxMembers,
				Creator:     id,
				Now:         now,
			})
			if err != nil {
				return nil, err
			}
			if err := r.Groups().Save(ctx, g); err != nil {
				return nil, err
			}

			bal, credited, err := credit(ctx, r, id, ledger.GroupCreationReward, ledger.ReasonGroupCreated, now)
			if err != nil {
				return nil, err
			}

			res = &CreateGroupResult{Group: g, Reward: ledger.GroupCreationReward, Balance: bal}
			return []shared.Event{
				shared.NewGroupCreatedEvent(g.ID, id, g.Name, g.Subject, g.MaxMembers, now),
				credited,
			}, nil
		})
	if err != nil {
		return nil, err
	}
	return res, nil
}
