package catalog

import "context"

// PlanRepository provides read access to published plans and the write path
// used by catalog administration. Reads are pure; plans are never mutated in
// place once published.
type PlanRepository interface {
	GetByID(ctx context.Context, id uint) (*Plan, error)
	// GetBySlug resolves the current (highest-version) plan for a slug,
	// including retired plans so existing subscribers keep resolving.
	GetBySlug(ctx context.Context, slug string) (*Plan, error)
	// ListActive returns active plans ordered by tier rank ascending.
	ListActive(ctx context.Context) ([]*Plan, error)
	Create(ctx context.Context, plan *Plan) error
	// Retire deactivates every version of a slug so it is no longer offered.
	Retire(ctx context.Context, slug string) error
}
