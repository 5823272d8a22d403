package command

import (
	"context"

	"github.com/alem-hub/studyhub/internal/domain/ledger"
	"github.com/alem-hub/studyhub/internal/domain/platform"
	"github.com/alem-hub/studyhub/internal/domain/shared"
	"github.com/alem-hub/studyhub/internal/domain/streak"
)

// ══════════════════════════════════════════════════════════════════════════════
// UPDATE STUDY STREAK COMMAND
// Records one day of study activity and pays the milestone bonus.
// ══════════════════════════════════════════════════════════════════════════════

// UpdateStreakCommand names the user whose streak advances.
type UpdateStreakCommand struct {
	// Caller is recorded for tracing only; any caller may advance a streak.
	Caller string
	UserID string
}

// UpdateStreakResult reports the transition.
type UpdateStreakResult struct {
	Streak      uint32
	Previous    uint32
	Reset       bool
	Throttled   bool
	BonusEarned bool
	Bonus       uint64
	Balance     uint64

	// Achievement is set when a new milestone achievement was recorded.
	Achievement string
}

// UpdateStreakHandler handles UpdateStreakCommand.
type UpdateStreakHandler struct {
	deps   Deps
	policy streak.Policy
}

// NewUpdateStreakHandler creates a new UpdateStreakHandler.
func NewUpdateStreakHandler(deps Deps, policy streak.Policy) *UpdateStreakHandler {
	return &UpdateStreakHandler{deps: deps.withDefaults(), policy: policy}
}

// Handle advances the streak. The profile update, the bonus credit and the
// milestone achievement commit together.
func (h *UpdateStreakHandler) Handle(ctx context.Context, cmd UpdateStreakCommand) (*UpdateStreakResult, error) {
	id, err := shared.NewIdentity(cmd.UserID)
	if err != nil {
		return nil, err
	}
	caller := shared.Identity(cmd.Caller)
	if caller.IsEmpty() {
		caller = id
	}

	var res *UpdateStreakResult
	err = h.deps.run(ctx, "update_streak", caller, []string{platform.UserKey(id)},
		func(ctx context.Context, r platform.Repositories) ([]shared.Event, error) {
			p, err := r.Users().Get(ctx, id)
			if err != nil {
				return nil, err
			}

			now := h.deps.Clock.Now()
			t := streak.Advance(streak.State{Streak: p.StudyStreak, LastActiveAt: p.LastActiveAt}, now, h.policy)

			bal, err := ledger.New(r.Balances()).Balance(ctx, id)
			if err != nil {
				return nil, err
			}
			res = &UpdateStreakResult{
				Streak:    t.Current,
				Previous:  t.Previous,
				Reset:     t.Reset,
				Throttled: t.Throttled,
				Balance:   bal,
			}
			if t.Throttled {
				return nil, nil
			}

			p.StudyStreak = t.Current
			p.LastActiveAt = t.LastActiveAt

			var events []shared.Event
			if t.BonusEarned {
				bal, ev, err := credit(ctx, r, id, ledger.StreakBonus, ledger.ReasonStreakBonus, now)
				if err != nil {
					return nil, err
				}
				res.BonusEarned = true
				res.Bonus = ledger.StreakBonus
				res.Balance = bal
				events = append(events, ev)

				name := streak.AchievementName(t.Current)
				if p.AddAchievement(name) {
					res.Achievement = name
				}
			}
			if err := r.Users().Save(ctx, p); err != nil {
				return nil, err
			}

			events = append([]shared.Event{
				shared.NewStreakUpdatedEvent(id, t.Previous, t.Current, t.Reset, res.Bonus, now),
			}, events...)
			return events, nil
		})
	if err != nil {
		return nil, err
	}
	return res, nil
}
