package command

import (
	"context"
	"fmt"

	"github.com/alem-hub/studyhub/internal/domain/ledger"
	"github.com/alem-hub/studyhub/internal/domain/platform"
	"github.com/alem-hub/studyhub/internal/domain/shared"
	"github.com/alem-hub/studyhub/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// REGISTER USER COMMAND
// Creates the caller's profile and grants the opening token balance.
// ══════════════════════════════════════════════════════════════════════════════

// RegisterUserCommand contains the registration input.
type RegisterUserCommand struct {
	// Caller is the identity being registered.
	Caller string

	Username   string
	Email      string
	Subjects   []string
	SkillLevel string
}

// Validate parses the boundary input.
func (c RegisterUserCommand) Validate() (shared.Identity, shared.SkillLevel, error) {
	id, err := shared.NewIdentity(c.Caller)
	if err != nil {
		return "", "", err
	}
	level, err := shared.ParseSkillLevel(c.SkillLevel)
	if err != nil {
		return "", "", err
	}
	return id, level, nil
}

// RegisterUserResult is returned on success.
type RegisterUserResult struct {
	Profile *user.Profile
	Balance uint64
}

// RegisterUserHandler handles RegisterUserCommand.
type RegisterUserHandler struct {
	deps Deps
}

// NewRegisterUserHandler creates a new RegisterUserHandler.
func NewRegisterUserHandler(deps Deps) *RegisterUserHandler {
	return &RegisterUserHandler{deps: deps.withDefaults()}
}

// Handle registers the caller. Fails with ErrUserAlreadyExists if the
// identity already has a profile.
func (h *RegisterUserHandler) Handle(ctx context.Context, cmd RegisterUserCommand) (*RegisterUserResult, error) {
	id, level, err := cmd.Validate()
	if err != nil {
		return nil, err
	}

	var res *RegisterUserResult
	err = h.deps.run(ctx, "register_user", id, []string{platform.UserKey(id)},
		func(ctx context.Context, r platform.Repositories) ([]shared.Event, error) {
			exists, err := r.Users().Exists(ctx, id)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, shared.ErrUserAlreadyExists
			}

			now := h.deps.Clock.Now()
			profile, err := user.NewProfile(user.NewProfileParams{
				ID:         id,
				Username:   cmd.Username,
				Email:      cmd.Email,
				Subjects:   cmd.Subjects,
				SkillLevel: level,
				Now:        now,
			})
			if err != nil {
				return nil, err
			}
			if err := r.Users().Save(ctx, profile); err != nil {
				return nil, fmt.Errorf("register_user: save profile: %w", err)
			}
			if err := ledger.New(r.Balances()).Grant(ctx, id, ledger.RegistrationGrant); err != nil {
				return nil, err
			}

			res = &RegisterUserResult{Profile: profile, Balance: ledger.RegistrationGrant}
			return []shared.Event{
				shared.NewUserRegisteredEvent(id, profile.Username, level, ledger.RegistrationGrant, now),
				shared.NewTokensCreditedEvent(id, ledger.RegistrationGrant, ledger.RegistrationGrant, ledger.ReasonRegistration, now),
			}, nil
		})
	if err != nil {
		return nil, err
	}
	return res, nil
}
