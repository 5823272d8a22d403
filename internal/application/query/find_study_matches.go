package query

import (
	"context"

	"github.com/alem-hub/studyhub/internal/domain/matching"
	"github.com/alem-hub/studyhub/internal/domain/platform"
	"github.com/alem-hub/studyhub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// FIND STUDY MATCHES QUERY
// Scores every open group against the user's profile.
// ══════════════════════════════════════════════════════════════════════════════

// FindStudyMatchesHandler ranks groups for a user.
type FindStudyMatchesHandler struct {
	deps Deps
}

// NewFindStudyMatchesHandler creates a new FindStudyMatchesHandler.
func NewFindStudyMatchesHandler(deps Deps) *FindStudyMatchesHandler {
	return &FindStudyMatchesHandler{deps: deps.withDefaults()}
}

// Handle returns matches ordered by descending score. An unknown user gets
// an empty list rather than an error.
func (h *FindStudyMatchesHandler) Handle(ctx context.Context, id shared.Identity) ([]matching.Match, error) {
	out := []matching.Match{}
	err := h.deps.view(ctx, "find_study_matches", func(ctx context.Context, r platform.Repositories) error {
		u, err := r.Users().Get(ctx, id)
		if shared.IsNotFound(err) {
			return nil
		}
		if err != nil {
			return err
		}

		groups, err := r.Groups().List(ctx)
		if err != nil {
			return err
		}
		sessions, err := r.Sessions().List(ctx)
		if err != nil {
			return err
		}

		out = matching.FindMatches(u, matching.CandidatesFrom(groups, sessions), h.deps.Clock.Now())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
