package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"invoicing/internal/core/apperror"
	"invoicing/internal/core/id"
	"invoicing/internal/domain/documents/invoice"
	"invoicing/internal/domain/registers/stock"
)

var (
	_ stock.Store         = (*ProductRepo)(nil)
	_ stock.CatalogReader = (*ProductRepo)(nil)
	_ stock.HistoryReader = (*ProductRepo)(nil)
)

// ProductRepo implements the product ledger store.
type ProductRepo struct {
	s *Store
}

// NewProductRepo creates a product repository over s.
func NewProductRepo(s *Store) *ProductRepo {
	return &ProductRepo{s: s}
}

// FindProduct implements stock.Store.
func (r *ProductRepo) FindProduct(ctx context.Context, key string) (*stock.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.st.products[key]
	if !ok {
		return nil, apperror.NewNotFound("product", key)
	}
	return &p, nil
}

// PutProduct implements stock.Store.
func (r *ProductRepo) PutProduct(ctx context.Context, p *stock.Product) (*stock.Product, error) {
	defer r.s.lock(ctx)()

	existing, ok := r.s.st.products[p.Key]
	saved := *p
	ts := now()
	if p.Version == 0 {
		if ok {
			return nil, apperror.NewConcurrentModification("product", p.Key)
		}
		saved.CreatedAt = ts
	} else if !ok || existing.Version != p.Version {
		return nil, apperror.NewConcurrentModification("product", p.Key)
	}

	saved.Version = p.Version + 1
	saved.UpdatedAt = ts
	r.s.st.products[p.Key] = saved
	return &saved, nil
}

// DeleteProduct implements stock.Store.
func (r *ProductRepo) DeleteProduct(ctx context.Context, key string, version int) (bool, error) {
	defer r.s.lock(ctx)()

	existing, ok := r.s.st.products[key]
	if !ok || existing.Version != version {
		return false, nil
	}
	delete(r.s.st.products, key)
	return true, nil
}

// ListProducts implements stock.CatalogReader.
func (r *ProductRepo) ListProducts(ctx context.Context, filter stock.ProductFilter) ([]stock.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]stock.Product, 0, len(r.s.st.products))
	for _, p := range r.s.st.products {
		if filter.Search != "" && !containsFold(p.Description, filter.Search) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Description) < strings.ToLower(out[j].Description)
	})
	return page(out, 0, filter.Limit), nil
}

// PurchaseHistory implements stock.HistoryReader.
func (r *ProductRepo) PurchaseHistory(ctx context.Context, keys []string) ([]stock.PurchaseRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	wanted := make(map[string]bool, len(keys))
	for _, k := range keys {
		wanted[k] = true
	}

	headers := make([]invoice.Invoice, 0)
	for _, inv := range r.s.st.invoices {
		if inv.Type == invoice.TypePurchase {
			headers = append(headers, inv)
		}
	}
	newestFirst(headers,
		func(inv invoice.Invoice) time.Time { return inv.CreatedAt },
		func(inv invoice.Invoice) id.ID { return inv.ID },
	)

	var out []stock.PurchaseRecord
	for _, inv := range headers {
		for _, l := range r.s.st.lines[inv.ID] {
			key := stock.Normalize(l.Description)
			if !wanted[key] {
				continue
			}
			out = append(out, stock.PurchaseRecord{
				Key:           key,
				InvoiceID:     inv.ID.String(),
				InvoiceNumber: inv.Number,
				Quantity:      l.Quantity,
				UnitPrice:     l.UnitPrice,
				Date:          inv.Date,
			})
		}
	}
	return out, nil
}
