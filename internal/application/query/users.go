package query

import (
	"context"
	"time"

	"github.com/alem-hub/studyhub/internal/domain/ledger"
	"github.com/alem-hub/studyhub/internal/domain/platform"
	"github.com/alem-hub/studyhub/internal/domain/shared"
	"github.com/alem-hub/studyhub/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// USER PROFILE
// ══════════════════════════════════════════════════════════════════════════════

// ProfileView is a profile with its ledger balance.
type ProfileView struct {
	ID           shared.Identity   `json:"id"`
	Username     string            `json:"username"`
	Email        string            `json:"email"`
	Subjects     shared.StringSet  `json:"subjects"`
	SkillLevel   shared.SkillLevel `json:"skill_level"`
	StudyTokens  uint64            `json:"study_tokens"`
	StudyStreak  uint32            `json:"study_streak"`
	Achievements []string          `json:"achievements"`
	CreatedAt    time.Time         `json:"created_at"`
	LastActiveAt time.Time         `json:"last_active_at"`
}

// NewProfileView builds a view from a profile and its balance.
func NewProfileView(p *user.Profile, tokens uint64) *ProfileView {
	return &ProfileView{
		ID:           p.ID,
		Username:     p.Username,
		Email:        p.Email,
		Subjects:     p.Subjects,
		SkillLevel:   p.SkillLevel,
		StudyTokens:  tokens,
		StudyStreak:  p.StudyStreak,
		Achievements: p.Achievements,
		CreatedAt:    p.CreatedAt,
		LastActiveAt: p.LastActiveAt,
	}
}

// UserQueries reads user-centric data.
type UserQueries struct {
	deps Deps
}

// NewUserQueries creates UserQueries.
func NewUserQueries(deps Deps) *UserQueries {
	return &UserQueries{deps: deps.withDefaults()}
}

// Profile returns the profile of id, or ErrUserNotFound.
func (q *UserQueries) Profile(ctx context.Context, id shared.Identity) (*ProfileView, error) {
	var out *ProfileView
	err := q.deps.view(ctx, "get_profile", func(ctx context.Context, r platform.Repositories) error {
		p, err := r.Users().Get(ctx, id)
		if err != nil {
			return err
		}
		bal, err := ledger.New(r.Balances()).Balance(ctx, id)
		if err != nil {
			return err
		}
		out = NewProfileView(p, bal)
		return nil
	})
	return out, err
}

// Tokens returns the balance of id. Unknown identities hold 0.
func (q *UserQueries) Tokens(ctx context.Context, id shared.Identity) (uint64, error) {
	var bal uint64
	err := q.deps.view(ctx, "get_tokens", func(ctx context.Context, r platform.Repositories) error {
		var err error
		bal, err = ledger.New(r.Balances()).Balance(ctx, id)
		return err
	})
	return bal, err
}

// Achievements returns the achievements of id. Unknown identities have none.
func (q *UserQueries) Achievements(ctx context.Context, id shared.Identity) ([]string, error) {
	out := []string{}
	err := q.deps.view(ctx, "get_achievements", func(ctx context.Context, r platform.Repositories) error {
		p, err := r.Users().Get(ctx, id)
		if shared.IsNotFound(err) {
			return nil
		}
		if err != nil {
			return err
		}
		out = append(out, p.Achievements...)
		return nil
	})
	return out, err
}

// ══════════════════════════════════════════════════════════════════════════════
// USER STATS
// ══════════════════════════════════════════════════════════════════════════════

// UserStats summarizes one user's activity.
type UserStats struct {
	StudyTokens          uint64 `json:"study_tokens"`
	StudyStreak          uint32 `json:"study_streak"`
	GroupsJoined         int    `json:"groups_joined"`
	ResourcesUploaded    int    `json:"resources_uploaded"`
	SessionsParticipated int    `json:"sessions_participated"`
	Achievements         int    `json:"achievements"`
}

// Stats returns the activity summary of id. Unknown identities get zeros.
func (q *UserQueries) Stats(ctx context.Context, id shared.Identity) (*UserStats, error) {
	out := &UserStats{}
	err := q.deps.view(ctx, "get_user_stats", func(ctx context.Context, r platform.Repositories) error {
		p, err := r.Users().Get(ctx, id)
		if shared.IsNotFound(err) {
			return nil
		}
		if err != nil {
			return err
		}

		if out.StudyTokens, err = ledger.New(r.Balances()).Balance(ctx, id); err != nil {
			return err
		}
		out.StudyStreak = p.StudyStreak
		out.Achievements = len(p.Achievements)

		groups, err := r.Groups().List(ctx)
		if err != nil {
			return err
		}
		for _, g := range groups {
			if g.IsMember(id) {
				out.GroupsJoined++
			}
		}

		resources, err := r.Resources().List(ctx)
		if err != nil {
			return err
		}
		for _, res := range resources {
			if res.Uploader == id {
				out.ResourcesUploaded++
			}
		}

		sessions, err := r.Sessions().List(ctx)
		if err != nil {
			return err
		}
		for _, s := range sessions {
			if s.IsParticipant(id) {
				out.SessionsParticipated++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
