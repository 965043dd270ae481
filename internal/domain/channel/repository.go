package channel

import (
	"context"
	"time"
)

// FieldUpdate carries a partial update; nil fields are left untouched
type FieldUpdate struct {
	Title          *string
	Tier           *Tier
	IsActive       *bool
	LastPromotedAt *time.Time
	LastPostedAt   *time.Time
	LastVideoID    *string
	LastVideoAt    *time.Time
}

// Repository defines the interface for tracked channel persistence.
// Single-document updates are assumed atomic; the scheduler guarantees it
// never issues concurrent writes for the same channel id.
type Repository interface {
	// GetActive returns all channels currently eligible for scheduling
	GetActive(ctx context.Context) ([]*Channel, error)

	// GetByID returns a channel or ErrNotFound
	GetByID(ctx context.Context, id string) (*Channel, error)

	// Create inserts a new tracked channel
	Create(ctx context.Context, ch *Channel) error

	// UpdateSnapshot replaces the current snapshot and pushes the previous
	// one into the bounded history
	UpdateSnapshot(ctx context.Context, id string, snap MetricSnapshot) (*Channel, error)

	// UpdateFields applies a partial update
	UpdateFields(ctx context.Context, id string, fields FieldUpdate) (*Channel, error)

	// Count returns the number of tracked channels, active or not
	Count(ctx context.Context) (int, error)
}
