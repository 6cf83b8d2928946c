package invoice

import (
	"context"

	"invoicing/internal/core/id"
	"invoicing/internal/domain"
)

// Repository defines data access for invoices and their lines.
type Repository interface {
	// Create inserts the header and its lines.
	// A number already used by an invoice of the same type is a DUPLICATE_ENTRY.
	Create(ctx context.Context, inv *Invoice) error

	// GetByID returns the invoice with its lines, or apperror NotFound.
	GetByID(ctx context.Context, t Type, invID id.ID) (*Invoice, error)

	// UpdateHeader writes header fields and totals with optimistic locking.
	// On success inv.Version holds the new version.
	UpdateHeader(ctx context.Context, inv *Invoice) error

	// ReplaceLines deletes every stored line of inv and inserts inv.Lines.
	ReplaceLines(ctx context.Context, inv *Invoice) error

	// Delete removes the invoice and its lines.
	Delete(ctx context.Context, t Type, invID id.ID) error

	// List returns headers (without lines) newest first, and the total match count.
	// Search matches the invoice number or the counterparty name.
	List(ctx context.Context, t Type, filter domain.ListFilter) ([]*Invoice, int64, error)
}
