package command

import (
	"context"

	"github.com/alem-hub/studyhub/internal/domain/platform"
	"github.com/alem-hub/studyhub/internal/domain/shared"
	"github.com/alem-hub/studyhub/internal/domain/user"
)

// UpdateProfileCommand edits the caller's own profile.
type UpdateProfileCommand struct {
	Caller     string
	Username   string
	Subjects   []string
	SkillLevel string
}

// UpdateProfileHandler handles UpdateProfileCommand.
type UpdateProfileHandler struct {
	deps Deps
}

// NewUpdateProfileHandler creates a new UpdateProfileHandler.
func NewUpdateProfileHandler(deps Deps) *UpdateProfileHandler {
	return &UpdateProfileHandler{deps: deps.withDefaults()}
}

// Handle replaces username, subjects and skill level and touches lastActiveAt.
func (h *UpdateProfileHandler) Handle(ctx context.Context, cmd UpdateProfileCommand) (*user.Profile, error) {
	id, err := shared.NewIdentity(cmd.Caller)
	if err != nil {
		return nil, err
	}
	level, err := shared.ParseSkillLevel(cmd.SkillLevel)
	if err != nil {
		return nil, err
	}

	var out *user.Profile
	err = h.deps.run(ctx, "update_profile", id, []string{platform.UserKey(id)},
		func(ctx context.Context, r platform.Repositories) ([]shared.Event, error) {
			p, err := r.Users().Get(ctx, id)
			if err != nil {
				return nil, err
			}
			now := h.deps.Clock.Now()
			if err := p.Update(user.UpdateParams{
				Username:   cmd.Username,
				Subjects:   cmd.Subjects,
				SkillLevel: level,
				Now:        now,
			}); err != nil {
				return nil, err
			}
			if err := r.Users().Save(ctx, p); err != nil {
				return nil, err
			}
			out = p
			return []shared.Event{
				shared.NewProfileUpdatedEvent(id, p.Username, p.SkillLevel, p.Subjects.Len(), now),
			}, nil
		})
	if err != nil {
		return nil, err
	}
	return out, nil
}
