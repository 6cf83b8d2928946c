package counterparty

import (
	"context"

	"invoicing/internal/core/id"
	"invoicing/internal/domain"
)

// Repository defines data access for counterparties.
type Repository interface {
	Create(ctx context.Context, c *Counterparty) error

	// GetByID returns apperror NotFound when no counterparty of that kind exists.
	GetByID(ctx context.Context, kind Kind, cpID id.ID) (*Counterparty, error)

	// Update writes with optimistic locking on Version.
	Update(ctx context.Context, c *Counterparty) error

	Delete(ctx context.Context, kind Kind, cpID id.ID) error

	// List orders by creation time, newest first. Search matches name or email.
	List(ctx context.Context, kind Kind, filter domain.ListFilter) ([]*Counterparty, error)

	// Options returns id/name/email ordered by name.
	Options(ctx context.Context, kind Kind) ([]Option, error)
}
