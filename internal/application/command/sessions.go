package command

import (
	"context"
	"time"

	"github.com/alem-hub/studyhub/internal/domain/group"
	"github.com/alem-hub/studyhub/internal/domain/ledger"
	"github.com/alem-hub/studyhub/internal/domain/platform"
	"github.com/alem-hub/studyhub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CREATE STUDY SESSION
// ══════════════════════════════════════════════════════════════════════════════

// CreateSessionCommand schedules a session in a group.
type CreateSessionCommand struct {
	Caller      string
	GroupID     string
	Title       string
	Description string
	ScheduledAt time.Time
	Duration    uint32 // minutes

	// ResourceIDs must name existing resources.
	ResourceIDs []string
}

// CreateSessionHandler handles CreateSessionCommand.
type CreateSessionHandler struct {
	deps Deps
}

// NewCreateSessionHandler creates a new CreateSessionHandler.
func NewCreateSessionHandler(deps Deps) *CreateSessionHandler {
	return &CreateSessionHandler{deps: deps.withDefaults()}
}

// Handle creates the session and attaches it to the group. Only group
// members may schedule sessions.
func (h *CreateSessionHandler) Handle(ctx context.Context, cmd CreateSessionCommand) (*group.Session, error) {
	id, err := shared.NewIdentity(cmd.Caller)
	if err != nil {
		return nil, err
	}
	if cmd.GroupID == "" {
		return nil, shared.ErrGroupNotFound
	}
	sessionID := h.deps.NewID(group.SessionIDPrefix)

	var out *group.Session
	err = h.deps.run(ctx, "create_session", id, []string{platform.GroupKey(cmd.GroupID), platform.SessionKey(sessionID)},
		func(ctx context.Context, r platform.Repositories) ([]shared.Event, error) {
			g, err := r.Groups().Get(ctx, cmd.GroupID)
			if err != nil {
				return nil, err
			}
			if !g.IsMember(id) {
				return nil, shared.ErrNotGroupMember
			}

			s, err := group.NewSession(group.NewSessionParams{
				ID:          sessionID,
				GroupID:     g.ID,
				Title:       cmd.Title,
				Description: cmd.Description,
				ScheduledAt: cmd.ScheduledAt,
				Duration:    cmd.Duration,
				Creator:     id,
			})
			if err != nil {
				return nil, err
			}
			for _, rid := range cmd.ResourceIDs {
				if _, err := r.Resources().Get(ctx, rid); err != nil {
					return nil, err
				}
				s.Resources, _ = s.Resources.Add(rid)
			}

			if err := r.Sessions().Save(ctx, s); err != nil {
				return nil, err
			}
			g.AttachSession(s.ID)
			if err := r.Groups().Save(ctx, g); err != nil {
				return nil, err
			}

			out = s
			return []shared.Event{
				shared.NewSessionEvent(shared.EventSessionCreated, s.ID, g.ID, id, s.Participants.Len(), h.deps.Clock.Now()),
			}, nil
		})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// JOIN STUDY SESSION
// ══════════════════════════════════════════════════════════════════════════════

// JoinSessionCommand adds the caller to a session.
type JoinSessionCommand struct {
	Caller    string
	SessionID string
}

// JoinSessionHandler handles JoinSessionCommand.
type JoinSessionHandler struct {
	deps Deps
}

// NewJoinSessionHandler creates a new JoinSessionHandler.
func NewJoinSessionHandler(deps Deps) *JoinSessionHandler {
	return &JoinSessionHandler{deps: deps.withDefaults()}
}

// Handle adds a registered caller to the session's participants.
func (h *JoinSessionHandler) Handle(ctx context.Context, cmd JoinSessionCommand) (*group.Session, error) {
	id, err := shared.NewIdentity(cmd.Caller)
	if err != nil {
		return nil, err
	}
	if cmd.SessionID == "" {
		return nil, shared.ErrSessionNotFound
	}

	var out *group.Session
	err = h.deps.run(ctx, "join_session", id, []string{platform.SessionKey(cmd.SessionID)},
		func(ctx context.Context, r platform.Repositories) ([]shared.Event, error) {
			s, err := r.Sessions().Get(ctx, cmd.SessionID)
			if err != nil {
				return nil, err
			}
			if err := requireUser(ctx, r, id); err != nil {
				return nil, err
			}
			if err := s.Join(id); err != nil {
				return nil, err
			}
			if err := r.Sessions().Save(ctx, s); err != nil {
				return nil, err
			}
			out = s
			return []shared.Event{
				shared.NewSessionEvent(shared.EventSessionJoined, s.ID, s.GroupID, id, s.Participants.Len(), h.deps.Clock.Now()),
			}, nil
		})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// COMPLETE STUDY SESSION
// ══════════════════════════════════════════════════════════════════════════════

// CompleteSessionCommand closes a session.
type CompleteSessionCommand struct {
	Caller    string
	SessionID string
	Notes     string
}

// CompleteSessionResult lists the rewarded participants in join order.
type CompleteSessionResult struct {
	Session  *group.Session
	Reward   uint64
	Rewarded []shared.Identity
}

// CompleteSessionHandler handles CompleteSessionCommand.
type CompleteSessionHandler struct {
	deps Deps
}

// NewCompleteSessionHandler creates a new CompleteSessionHandler.
func NewCompleteSessionHandler(deps Deps) *CompleteSessionHandler {
	return &CompleteSessionHandler{deps: deps.withDefaults()}
}

// Handle marks the session completed and credits every participant.
func (h *CompleteSessionHandler) Handle(ctx context.Context, cmd CompleteSessionCommand) (*CompleteSessionResult, error) {
	id, err := shared.NewIdentity(cmd.Caller)
	if err != nil {
		return nil, err
	}
	if cmd.SessionID == "" {
		return nil, shared.ErrSessionNotFound
	}

	// Participant balances are locked from a snapshot taken before the
	// session lock. A participant who joins in between is still covered by
	// the store transaction. Lookup errors resurface inside the unit of work.
	keys := []string{platform.SessionKey(cmd.SessionID)}
	_ = h.deps.Store.View(ctx, func(r platform.Repositories) error {
		s, err := r.Sessions().Get(ctx, cmd.SessionID)
		if err != nil {
			return err
		}
		for _, p := range s.Participants {
			keys = append(keys, platform.UserKey(shared.Identity(p)))
		}
		return nil
	})

	var res *CompleteSessionResult
	err = h.deps.run(ctx, "complete_session", id, keys,
		func(ctx context.Context, r platform.Repositories) ([]shared.Event, error) {
			s, err := r.Sessions().Get(ctx, cmd.SessionID)
			if err != nil {
				return nil, err
			}
			if err := requireUser(ctx, r, id); err != nil {
				return nil, err
			}
			if err := s.Complete(id, cmd.Notes); err != nil {
				return nil, err
			}
			if err := r.Sessions().Save(ctx, s); err != nil {
				return nil, err
			}

			now := h.deps.Clock.Now()
			res = &CompleteSessionResult{Session: s, Reward: ledger.SessionCompletionReward}
			events := []shared.Event{
				shared.NewSessionEvent(shared.EventSessionCompleted, s.ID, s.GroupID, id, s.Participants.Len(), now),
			}
			for _, p := range s.Participants {
				pid := shared.Identity(p)
				_, credited, err := credit(ctx, r, pid, ledger.SessionCompletionReward, ledger.ReasonSession, now)
				if err != nil {
					return nil, err
				}
				res.Rewarded = append(res.Rewarded, pid)
				events = append(events, credited)
			}
			return events, nil
		})
	if err != nil {
		return nil, err
	}
	return res, nil
}
