// Package stock maintains the product ledger derived from purchase and sale invoices.
package stock

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"invoicing/internal/core/types"
)

// Product is one ledger row per distinct normalized description.
type Product struct {
	// Key is the normalized description and the natural primary key.
	Key string `db:"description_key" json:"-"`

	// Description is the text as it was first purchased.
	Description string `db:"description" json:"description"`

	TotalQuantity     types.Quantity `db:"total_quantity" json:"totalQuantity"`
	AverageUnitPrice  types.Money    `db:"average_unit_price" json:"averageUnitPrice"`
	LastPurchasePrice types.Money    `db:"last_purchase_price" json:"lastPurchasePrice"`
	LastPurchaseDate  time.Time      `db:"last_purchase_date" json:"lastPurchaseDate"`

	SupplierID   string          `db:"supplier_id" json:"supplierId"`
	SupplierName string          `db:"supplier_name" json:"supplierName"`
	TaxRate      decimal.Decimal `db:"tax_rate" json:"taxRate"`

	// Version for optimistic locking. Zero means the product is not stored yet.
	Version int `db:"version" json:"version"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Item is one invoice line as seen by the ledger.
type Item struct {
	Description string
	Quantity    types.Quantity
	UnitPrice   types.Money
	TaxRate     decimal.Decimal
}

// Normalize returns the product key of an item description:
// surrounding whitespace trimmed, case folded.
func Normalize(description string) string {
	return strings.ToLower(strings.TrimSpace(description))
}

// PurchaseInput carries a purchase batch and its provenance.
type PurchaseInput struct {
	Items        []Item
	SupplierID   string
	SupplierName string
	PurchaseDate time.Time
}

// Outcome lists the ledger rows a batch touched, in first-seen order,
// and the keys of rows it deleted.
type Outcome struct {
	Products []Product
	Removed  []string
}
