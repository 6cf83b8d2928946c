package stock

import (
	"context"
	"fmt"

	"invoicing/internal/domain"
)

// CatalogEntry is a product together with the purchase lines that fed it.
type CatalogEntry struct {
	Product
	Purchases []PurchaseRecord `json:"purchaseHistory"`
}

// CatalogService serves the product listing.
type CatalogService struct {
	products CatalogReader
	history  HistoryReader
}

// NewCatalogService creates a catalog service.
func NewCatalogService(products CatalogReader, history HistoryReader) *CatalogService {
	return &CatalogService{products: products, history: history}
}

// List returns products ordered by description, each with its purchase history
// newest first.
func (s *CatalogService) List(ctx context.Context, filter ProductFilter) ([]CatalogEntry, error) {
	if filter.Limit <= 0 || filter.Limit > domain.MaxListLimit {
		filter.Limit = domain.MaxListLimit
	}

	products, err := s.products.ListProducts(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	if len(products) == 0 {
		return []CatalogEntry{}, nil
	}

	keys := make([]string, len(products))
	for i, p := range products {
		keys[i] = p.Key
	}
	records, err := s.history.PurchaseHistory(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("purchase history: %w", err)
	}

	byKey := make(map[string][]PurchaseRecord, len(products))
	for _, rec := range records {
		byKey[rec.Key] = append(byKey[rec.Key], rec)
	}

	entries := make([]CatalogEntry, len(products))
	for i, p := range products {
		purchases := byKey[p.Key]
		if purchases == nil {
			purchases = []PurchaseRecord{}
		}
		entries[i] = CatalogEntry{Product: p, Purchases: purchases}
	}
	return entries, nil
}
