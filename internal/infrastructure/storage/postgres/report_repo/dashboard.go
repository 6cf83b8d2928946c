// Package report_repo provides the PostgreSQL aggregates behind the dashboard.
package report_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"invoicing/internal/core/types"
	"invoicing/internal/domain/catalogs/counterparty"
	"invoicing/internal/domain/documents/invoice"
	"invoicing/internal/domain/reports"
	"invoicing/internal/infrastructure/storage/postgres"
)

var _ reports.Repository = (*ReportRepo)(nil)

// ReportRepo implements reports.Repository. Every method runs its own query
// on the pool, so the dashboard can fan out.
type ReportRepo struct {
	txm *postgres.TxManager
}

// NewReportRepo creates a new report repository.
func NewReportRepo(txm *postgres.TxManager) *ReportRepo {
	return &ReportRepo{txm: txm}
}

func (r *ReportRepo) CountCounterparties(ctx context.Context, kind counterparty.Kind) (int64, error) {
	return r.count(ctx, "counterparties", squirrel.Eq{"kind": kind})
}

func (r *ReportRepo) CountInvoices(ctx context.Context, t invoice.Type) (int64, error) {
	return r.count(ctx, "invoices", squirrel.Eq{"invoice_type": t})
}

func (r *ReportRepo) CountProducts(ctx context.Context) (int64, error) {
	return r.count(ctx, "products", nil)
}

func (r *ReportRepo) count(ctx context.Context, table string, where squirrel.Sqlizer) (int64, error) {
	q := postgres.Builder().Select("COUNT(*)").From(table)
	if where != nil {
		q = q.Where(where)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}

	var n int64
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

func (r *ReportRepo) SumTotals(ctx context.Context, t invoice.Type, period *reports.Period) (types.Money, error) {
	sql, args, err := sumQuery(t, period).ToSql()
	if err != nil {
		return types.Money{}, fmt.Errorf("build sum: %w", err)
	}

	var sum types.Money
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&sum); err != nil {
		return types.Money{}, fmt.Errorf("sum %s totals: %w", t, err)
	}
	return sum, nil
}

func sumQuery(t invoice.Type, period *reports.Period) squirrel.SelectBuilder {
	q := postgres.Builder().
		Select("COALESCE(SUM(total), 0)::text").
		From("invoices").
		Where(squirrel.Eq{"invoice_type": t})
	if period != nil {
		q = q.Where(squirrel.GtOrEq{"date": period.From}).
			Where(squirrel.Lt{"date": period.To})
	}
	return q
}

func (r *ReportRepo) RecentInvoices(ctx context.Context, t invoice.Type, limit int) ([]reports.RecentInvoice, error) {
	sql, args, err := recentQuery(t, limit).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	items := make([]reports.RecentInvoice, 0, limit)
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("recent %s invoices: %w", t, err)
	}
	return items, nil
}

func recentQuery(t invoice.Type, limit int) squirrel.SelectBuilder {
	return postgres.Builder().
		Select(
			"id::text AS id",
			"invoice_number",
			"counterparty_id::text AS counterparty_id",
			"counterparty_name",
			"total",
			"date",
		).
		From("invoices").
		Where(squirrel.Eq{"invoice_type": t}).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit))
}

// TableCounts returns row counts per table.
func (r *ReportRepo) TableCounts(ctx context.Context) (map[string]int64, error) {
	counts := make(map[string]int64, 5)
	queries := []struct {
		key   string
		table string
		where squirrel.Sqlizer
	}{
		{"suppliers", "counterparties", squirrel.Eq{"kind": counterparty.KindSupplier}},
		{"clients", "counterparties", squirrel.Eq{"kind": counterparty.KindClient}},
		{"purchaseInvoices", "invoices", squirrel.Eq{"invoice_type": invoice.TypePurchase}},
		{"saleInvoices", "invoices", squirrel.Eq{"invoice_type": invoice.TypeSale}},
		{"products", "products", nil},
	}
	for _, q := range queries {
		n, err := r.count(ctx, q.table, q.where)
		if err != nil {
			return nil, err
		}
		counts[q.key] = n
	}
	return counts, nil
}
