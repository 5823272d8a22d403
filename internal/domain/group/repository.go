package group

import (
	"context"
)

// Repository persists study groups.
//
// List scans every group in ID order; there is no pagination.
type Repository interface {
	// Get returns ErrGroupNotFound when absent.
	Get(ctx context.Context, id string) (*StudyGroup, error)
	Save(ctx context.Context, g *StudyGroup) error
	List(ctx context.Context) ([]*StudyGroup, error)
	Count(ctx context.Context) (int, error)
}

// SessionRepository persists study sessions.
type SessionRepository interface {
	// Get returns ErrSessionNotFound when absent.
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	List(ctx context.Context) ([]*Session, error)
	Count(ctx context.Context) (int, error)
}
