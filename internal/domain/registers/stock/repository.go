package stock

import (
	"context"
	"time"

	"invoicing/internal/core/types"
)

// Store is the narrow product interface the reconciler works through.
type Store interface {
	// FindProduct returns the product for a normalized key,
	// or an apperror NotFound when none exists.
	FindProduct(ctx context.Context, key string) (*Product, error)

	// PutProduct persists p as a compare-and-swap on Version.
	// Version 0 inserts; otherwise the stored version must equal p.Version.
	// A lost race returns apperror ConcurrentModification.
	// The returned product carries the new version.
	PutProduct(ctx context.Context, p *Product) (*Product, error)

	// DeleteProduct removes the product when its stored version still equals version.
	// It reports false when nothing matched.
	DeleteProduct(ctx context.Context, key string, version int) (bool, error)
}

// ProductFilter narrows a product listing.
type ProductFilter struct {
	// Search is a case-insensitive substring of the description.
	Search string
	Limit  int
}

// PurchaseRecord is one purchase line that contributed to a product.
type PurchaseRecord struct {
	Key           string         `db:"description_key" json:"-"`
	InvoiceID     string         `db:"invoice_id" json:"invoiceId"`
	InvoiceNumber string         `db:"invoice_number" json:"invoiceNumber"`
	Quantity      types.Quantity `db:"quantity" json:"quantity"`
	UnitPrice     types.Money    `db:"unit_price" json:"unitPrice"`
	Date          time.Time      `db:"date" json:"date"`
}

// CatalogReader serves the read side of the ledger.
type CatalogReader interface {
	// ListProducts returns products ordered by description.
	ListProducts(ctx context.Context, filter ProductFilter) ([]Product, error)
}

// HistoryReader returns purchase lines for a set of product keys, newest first.
type HistoryReader interface {
	PurchaseHistory(ctx context.Context, keys []string) ([]PurchaseRecord, error)
}
