package resource

import "context"

// Repository persists resources.
//
// List scans every resource in ID order; there is no pagination.
type Repository interface {
	// Get returns ErrResourceNotFound when absent.
	Get(ctx context.Context, id string) (*Resource, error)
	Save(ctx context.Context, r *Resource) error
	List(ctx context.Context) ([]*Resource, error)
	Count(ctx context.Context) (int, error)
}
