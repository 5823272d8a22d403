package user

import (
	"context"

	"github.com/alem-hub/studyhub/internal/domain/shared"
)

// Repository persists profiles. Implementations are bound to one unit of work.
//
// List and Count scan the whole keyspace; there is no pagination.
type Repository interface {
	// Get returns ErrUserNotFound when the identity is not registered.
	Get(ctx context.Context, id shared.Identity) (*Profile, error)

	// Exists reports whether the identity is registered.
	Exists(ctx context.Context, id shared.Identity) (bool, error)

	// Save inserts or overwrites the profile.
	Save(ctx context.Context, p *Profile) error

	// List returns all profiles ordered by identity.
	List(ctx context.Context) ([]*Profile, error)

	// Count returns the number of registered profiles.
	Count(ctx context.Context) (int, error)
}
