// Package reports builds the dashboard summary.
package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"invoicing/internal/core/types"
	"invoicing/internal/domain/catalogs/counterparty"
	"invoicing/internal/domain/documents/invoice"
)

// RecentLimit is the number of invoices listed per type.
const RecentLimit = 5

// Service provides report generation operations.
type Service struct {
	repo Repository
}

// NewService creates a new reports service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Dashboard gathers every aggregate concurrently and derives profit and
// month-over-month changes for the month containing now.
func (s *Service) Dashboard(ctx context.Context, now time.Time) (*Dashboard, error) {
	current := MonthOf(now)
	previous := current.Previous()

	var (
		ov                           Overview
		curPurchases, curSales       types.Money
		prevPurchases, prevSales     types.Money
		recentPurchases, recentSales []RecentInvoice
	)

	g, ctx := errgroup.WithContext(ctx)
	count := func(dst *int64, fn func(context.Context) (int64, error)) {
		g.Go(func() error {
			n, err := fn(ctx)
			*dst = n
			return err
		})
	}
	sum := func(dst *types.Money, t invoice.Type, p *Period) {
		g.Go(func() error {
			v, err := s.repo.SumTotals(ctx, t, p)
			*dst = v
			return err
		})
	}
	recent := func(dst *[]RecentInvoice, t invoice.Type) {
		g.Go(func() error {
			v, err := s.repo.RecentInvoices(ctx, t, RecentLimit)
			*dst = v
			return err
		})
	}

	count(&ov.TotalSuppliers, func(ctx context.Context) (int64, error) {
		return s.repo.CountCounterparties(ctx, counterparty.KindSupplier)
	})
	count(&ov.TotalClients, func(ctx context.Context) (int64, error) {
		return s.repo.CountCounterparties(ctx, counterparty.KindClient)
	})
	count(&ov.TotalPurchaseInvoices, func(ctx context.Context) (int64, error) {
		return s.repo.CountInvoices(ctx, invoice.TypePurchase)
	})
	count(&ov.TotalSaleInvoices, func(ctx context.Context) (int64, error) {
		return s.repo.CountInvoices(ctx, invoice.TypeSale)
	})
	count(&ov.TotalProducts, s.repo.CountProducts)

	sum(&ov.TotalPurchases, invoice.TypePurchase, nil)
	sum(&ov.TotalSales, invoice.TypeSale, nil)
	sum(&curPurchases, invoice.TypePurchase, &current)
	sum(&curSales, invoice.TypeSale, &current)
	sum(&prevPurchases, invoice.TypePurchase, &previous)
	sum(&prevSales, invoice.TypeSale, &previous)

	recent(&recentPurchases, invoice.TypePurchase)
	recent(&recentSales, invoice.TypeSale)

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("dashboard aggregates: %w", err)
	}

	ov.Profit = ov.TotalSales.Sub(ov.TotalPurchases)
	if ov.TotalSales.IsPositive() {
		ov.ProfitMargin = ov.Profit.Div(ov.TotalSales).Mul(decimal.NewFromInt(100)).Round(2)
	}

	ov.PurchasesChange = PercentChange(curPurchases, prevPurchases)
	ov.SalesChange = PercentChange(curSales, prevSales)
	ov.ProfitChange = ProfitChange(curSales.Sub(curPurchases), prevSales.Sub(prevPurchases))

	return &Dashboard{
		Overview: ov,
		RecentActivity: RecentActivity{
			RecentPurchases: nonNil(recentPurchases),
			RecentSales:     nonNil(recentSales),
		},
	}, nil
}

// PercentChange is the rounded change from previous to current in percent.
// With no previous amount it is 100 when current is positive, else 0.
func PercentChange(current, previous decimal.Decimal) int64 {
	if !previous.IsPositive() {
		if current.IsPositive() {
			return 100
		}
		return 0
	}
	return roundHalfUp(current.Sub(previous).Div(previous).Mul(decimal.NewFromInt(100)))
}

// ProfitChange is the rounded change relative to |previous|, so a recovery from
// a loss reads as growth. From zero it is ±100 following the sign of current.
func ProfitChange(current, previous decimal.Decimal) int64 {
	if previous.IsZero() {
		return int64(current.Sign()) * 100
	}
	return roundHalfUp(current.Sub(previous).Div(previous.Abs()).Mul(decimal.NewFromInt(100)))
}

// roundHalfUp rounds .5 toward positive infinity.
func roundHalfUp(d decimal.Decimal) int64 {
	return d.Add(decimal.NewFromFloat(0.5)).Floor().IntPart()
}

func nonNil(v []RecentInvoice) []RecentInvoice {
	if v == nil {
		return []RecentInvoice{}
	}
	return v
}
