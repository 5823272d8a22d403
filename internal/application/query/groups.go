package query

import (
	"context"

	"github.com/alem-hub/studyhub/internal/domain/group"
	"github.com/alem-hub/studyhub/internal/domain/platform"
	"github.com/alem-hub/studyhub/internal/domain/resource"
	"github.com/alem-hub/studyhub/internal/domain/shared"
)

// GroupQueries reads groups, sessions and resources.
type GroupQueries struct {
	deps Deps
}

// NewGroupQueries creates GroupQueries.
func NewGroupQueries(deps Deps) *GroupQueries {
	return &GroupQueries{deps: deps.withDefaults()}
}

// Group returns one group, or ErrGroupNotFound.
func (q *GroupQueries) Group(ctx context.Context, id string) (*group.StudyGroup, error) {
	var out *group.StudyGroup
	err := q.deps.view(ctx, "get_group", func(ctx context.Context, r platform.Repositories) error {
		var err error
		out, err = r.Groups().Get(ctx, id)
		return err
	})
	return out, err
}

// Groups lists every group in ID order. A non-empty subject keeps only
// groups with exactly that subject.
func (q *GroupQueries) Groups(ctx context.Context, subject string) ([]*group.StudyGroup, error) {
	return q.filterGroups(ctx, "list_groups", func(g *group.StudyGroup) bool {
		return subject == "" || g.Subject == subject
	})
}

// UserGroups lists the groups id belongs to.
func (q *GroupQueries) UserGroups(ctx context.Context, id shared.Identity) ([]*group.StudyGroup, error) {
	return q.filterGroups(ctx, "list_user_groups", func(g *group.StudyGroup) bool {
		return g.IsMember(id)
	})
}

func (q *GroupQueries) filterGroups(ctx context.Context, op string, keep func(*group.StudyGroup) bool) ([]*group.StudyGroup, error) {
	out := []*group.StudyGroup{}
	err := q.deps.view(ctx, op, func(ctx context.Context, r platform.Repositories) error {
		groups, err := r.Groups().List(ctx)
		if err != nil {
			return err
		}
		for _, g := range groups {
			if keep(g) {
				out = append(out, g)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Session returns one session, or ErrSessionNotFound.
func (q *GroupQueries) Session(ctx context.Context, id string) (*group.Session, error) {
	var out *group.Session
	err := q.deps.view(ctx, "get_session", func(ctx context.Context, r platform.Repositories) error {
		var err error
		out, err = r.Sessions().Get(ctx, id)
		return err
	})
	return out, err
}

// Resources lists every resource in ID order. A non-empty type keeps only
// resources of that type; an unknown type is rejected.
func (q *GroupQueries) Resources(ctx context.Context, rawType string) ([]*resource.Resource, error) {
	var want shared.ResourceType
	if rawType != "" {
		t, err := shared.ParseResourceType(rawType)
		if err != nil {
			return nil, err
		}
		want = t
	}

	out := []*resource.Resource{}
	err := q.deps.view(ctx, "list_resources", func(ctx context.Context, r platform.Repositories) error {
		items, err := r.Resources().List(ctx)
		if err != nil {
			return err
		}
		for _, it := range items {
			if want == "" || it.Type == want {
				out = append(out, it)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
