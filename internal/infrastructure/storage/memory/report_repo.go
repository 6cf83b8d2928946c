package memory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"invoicing/internal/core/id"
	"invoicing/internal/core/types"
	"invoicing/internal/domain/catalogs/counterparty"
	"invoicing/internal/domain/documents/invoice"
	"invoicing/internal/domain/reports"
)

var _ reports.Repository = (*ReportRepo)(nil)

// ReportRepo implements reports.Repository.
type ReportRepo struct {
	s *Store
}

// NewReportRepo creates a report repository over s.
func NewReportRepo(s *Store) *ReportRepo {
	return &ReportRepo{s: s}
}

func (r *ReportRepo) CountCounterparties(ctx context.Context, kind counterparty.Kind) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, c := range r.s.st.counterparties {
		if c.Kind == kind {
			n++
		}
	}
	return n, nil
}

func (r *ReportRepo) CountInvoices(ctx context.Context, t invoice.Type) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, inv := range r.s.st.invoices {
		if inv.Type == t {
			n++
		}
	}
	return n, nil
}

func (r *ReportRepo) CountProducts(ctx context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return int64(len(r.s.st.products)), nil
}

func (r *ReportRepo) SumTotals(ctx context.Context, t invoice.Type, period *reports.Period) (types.Money, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	sum := decimal.Zero
	for _, inv := range r.s.st.invoices {
		if inv.Type != t {
			continue
		}
		if period != nil && (inv.Date.Before(period.From) || !inv.Date.Before(period.To)) {
			continue
		}
		sum = sum.Add(inv.Total)
	}
	return sum, nil
}

func (r *ReportRepo) RecentInvoices(ctx context.Context, t invoice.Type, limit int) ([]reports.RecentInvoice, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched := make([]invoice.Invoice, 0)
	for _, inv := range r.s.st.invoices {
		if inv.Type == t {
			matched = append(matched, inv)
		}
	}
	newestFirst(matched,
		func(inv invoice.Invoice) time.Time { return inv.CreatedAt },
		func(inv invoice.Invoice) id.ID { return inv.ID },
	)

	out := make([]reports.RecentInvoice, 0, limit)
	for _, inv := range page(matched, 0, limit) {
		out = append(out, reports.RecentInvoice{
			ID:               inv.ID.String(),
			InvoiceNumber:    inv.Number,
			CounterpartyID:   inv.CounterpartyID.String(),
			CounterpartyName: inv.CounterpartyName,
			Total:            inv.Total,
			Date:             inv.Date,
		})
	}
	return out, nil
}

// TableCounts returns row counts per table.
func (r *ReportRepo) TableCounts(ctx context.Context) (map[string]int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	counts := map[string]int64{
		"suppliers":        0,
		"clients":          0,
		"purchaseInvoices": 0,
		"saleInvoices":     0,
		"products":         int64(len(r.s.st.products)),
	}
	for _, c := range r.s.st.counterparties {
		if c.Kind == counterparty.KindClient {
			counts["clients"]++
		} else {
			counts["suppliers"]++
		}
	}
	for _, inv := range r.s.st.invoices {
		if inv.Type == invoice.TypeSale {
			counts["saleInvoices"]++
		} else {
			counts["purchaseInvoices"]++
		}
	}
	return counts, nil
}
