package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"invoicing/internal/core/types"
	"invoicing/internal/domain/registers/stock"
)

// ProductQuery holds the product listing parameters.
type ProductQuery struct {
	Search string `form:"search"`
	Limit  int    `form:"limit" binding:"omitempty,min=0"`
}

// ToFilter converts query to a catalog filter.
func (q ProductQuery) ToFilter() stock.ProductFilter {
	return stock.ProductFilter{Search: q.Search, Limit: q.Limit}
}

// PurchaseResponse is one purchase that fed a product.
type PurchaseResponse struct {
	InvoiceID     string         `json:"invoiceId"`
	InvoiceNumber string         `json:"invoiceNumber"`
	Quantity      types.Quantity `json:"quantity"`
	UnitPrice     types.Money    `json:"unitPrice"`
	Date          time.Time      `json:"date"`
}

// ProductResponse is a ledger row with its purchase history.
type ProductResponse struct {
	Description       string             `json:"description"`
	TotalQuantity     types.Quantity     `json:"totalQuantity"`
	AverageUnitPrice  types.Money        `json:"averageUnitPrice"`
	LastPurchasePrice types.Money        `json:"lastPurchasePrice"`
	LastPurchaseDate  time.Time          `json:"lastPurchaseDate"`
	SupplierID        string             `json:"supplierId"`
	SupplierName      string             `json:"supplierName"`
	TaxRate           decimal.Decimal    `json:"taxRate"`
	PurchaseHistory   []PurchaseResponse `json:"purchaseHistory"`
	CreatedAt         time.Time          `json:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt"`
}

// FromCatalog converts catalog entries to response DTOs.
func FromCatalog(entries []stock.CatalogEntry) []ProductResponse {
	out := make([]ProductResponse, len(entries))
	for i, e := range entries {
		history := make([]PurchaseResponse, len(e.Purchases))
		for j, p := range e.Purchases {
			history[j] = PurchaseResponse{
				InvoiceID:     p.InvoiceID,
				InvoiceNumber: p.InvoiceNumber,
				Quantity:      p.Quantity,
				UnitPrice:     p.UnitPrice,
				Date:          p.Date,
			}
		}
		out[i] = ProductResponse{
			Description:       e.Description,
			TotalQuantity:     e.TotalQuantity,
			AverageUnitPrice:  e.AverageUnitPrice,
			LastPurchasePrice: e.LastPurchasePrice,
			LastPurchaseDate:  e.LastPurchaseDate,
			SupplierID:        e.SupplierID,
			SupplierName:      e.SupplierName,
			TaxRate:           e.TaxRate,
			PurchaseHistory:   history,
			CreatedAt:         e.CreatedAt,
			UpdatedAt:         e.UpdatedAt,
		}
	}
	return out
}
