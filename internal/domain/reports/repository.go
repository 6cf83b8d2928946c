package reports

import (
	"context"

	"invoicing/internal/core/types"
	"invoicing/internal/domain/catalogs/counterparty"
	"invoicing/internal/domain/documents/invoice"
)

// Repository provides the aggregates behind the dashboard.
// Implementations must be safe for concurrent use.
type Repository interface {
	CountCounterparties(ctx context.Context, kind counterparty.Kind) (int64, error)
	CountInvoices(ctx context.Context, t invoice.Type) (int64, error)
	CountProducts(ctx context.Context) (int64, error)

	// SumTotals adds invoice totals, restricted to invoice dates within period when set.
	SumTotals(ctx context.Context, t invoice.Type, period *Period) (types.Money, error)

	// RecentInvoices returns the newest invoices by creation time.
	RecentInvoices(ctx context.Context, t invoice.Type, limit int) ([]RecentInvoice, error)
}
