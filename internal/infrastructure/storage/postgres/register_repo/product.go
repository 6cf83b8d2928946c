// Package register_repo provides the PostgreSQL product ledger.
package register_repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"invoicing/internal/core/apperror"
	"invoicing/internal/domain/registers/stock"
	"invoicing/internal/infrastructure/storage/postgres"
)

const productsTable = "products"

var productColumns = postgres.ExtractDBColumns[stock.Product]()

var (
	_ stock.Store         = (*ProductRepo)(nil)
	_ stock.CatalogReader = (*ProductRepo)(nil)
	_ stock.HistoryReader = (*ProductRepo)(nil)
)

// ProductRepo stores one row per normalized description and guards every
// write with the version column.
type ProductRepo struct {
	txm *postgres.TxManager
}

// NewProductRepo creates a new product repository.
func NewProductRepo(txm *postgres.TxManager) *ProductRepo {
	return &ProductRepo{txm: txm}
}

// FindProduct implements stock.Store.
func (r *ProductRepo) FindProduct(ctx context.Context, key string) (*stock.Product, error) {
	sql, args, err := postgres.Builder().
		Select(productColumns...).
		From(productsTable).
		Where(squirrel.Eq{"description_key": key}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var p stock.Product
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("product", key)
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return &p, nil
}

// PutProduct implements stock.Store. Version 0 inserts and loses to any
// existing row; otherwise the row is updated only at the expected version.
func (r *ProductRepo) PutProduct(ctx context.Context, p *stock.Product) (*stock.Product, error) {
	q := r.insertQuery(p)
	if p.Version != 0 {
		q = r.updateQuery(p)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build product write: %w", err)
	}

	var saved stock.Product
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &saved, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewConcurrentModification("product", p.Key)
		}
		return nil, fmt.Errorf("write product: %w", err)
	}
	return &saved, nil
}

func (r *ProductRepo) insertQuery(p *stock.Product) squirrel.Sqlizer {
	return postgres.Builder().
		Insert(productsTable).
		Columns(
			"description_key", "description", "total_quantity", "average_unit_price",
			"last_purchase_price", "last_purchase_date", "supplier_id", "supplier_name",
			"tax_rate", "version", "created_at", "updated_at",
		).
		Values(
			p.Key, p.Description, p.TotalQuantity, p.AverageUnitPrice,
			p.LastPurchasePrice, p.LastPurchaseDate, p.SupplierID, p.SupplierName,
			p.TaxRate, 1, squirrel.Expr("now()"), squirrel.Expr("now()"),
		).
		Suffix("ON CONFLICT (description_key) DO NOTHING RETURNING " + strings.Join(productColumns, ", "))
}

func (r *ProductRepo) updateQuery(p *stock.Product) squirrel.Sqlizer {
	return postgres.Builder().
		Update(productsTable).
		Set("total_quantity", p.TotalQuantity).
		Set("average_unit_price", p.AverageUnitPrice).
		Set("last_purchase_price", p.LastPurchasePrice).
		Set("last_purchase_date", p.LastPurchaseDate).
		Set("supplier_id", p.SupplierID).
		Set("supplier_name", p.SupplierName).
		Set("tax_rate", p.TaxRate).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"description_key": p.Key, "version": p.Version}).
		Suffix("RETURNING " + strings.Join(productColumns, ", "))
}

// DeleteProduct implements stock.Store.
func (r *ProductRepo) DeleteProduct(ctx context.Context, key string, version int) (bool, error) {
	sql, args, err := postgres.Builder().
		Delete(productsTable).
		Where(squirrel.Eq{"description_key": key, "version": version}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build delete: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("delete product: %w", err)
	}
	return result.RowsAffected() == 1, nil
}

// ListProducts implements stock.CatalogReader.
func (r *ProductRepo) ListProducts(ctx context.Context, filter stock.ProductFilter) ([]stock.Product, error) {
	sql, args, err := listQuery(filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	products := make([]stock.Product, 0)
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &products, sql, args...); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func listQuery(filter stock.ProductFilter) squirrel.SelectBuilder {
	q := postgres.Builder().
		Select(productColumns...).
		From(productsTable).
		OrderBy("lower(description)")
	if filter.Search != "" {
		q = q.Where(squirrel.ILike{"description": "%" + filter.Search + "%"})
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	return q
}

// PurchaseHistory implements stock.HistoryReader.
func (r *ProductRepo) PurchaseHistory(ctx context.Context, keys []string) ([]stock.PurchaseRecord, error) {
	if len(keys) == 0 {
		return []stock.PurchaseRecord{}, nil
	}

	sql, args, err := historyQuery(keys).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	records := make([]stock.PurchaseRecord, 0)
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &records, sql, args...); err != nil {
		return nil, fmt.Errorf("purchase history: %w", err)
	}
	return records, nil
}

func historyQuery(keys []string) squirrel.SelectBuilder {
	return postgres.Builder().
		Select(
			"l.description_key",
			"i.id::text AS invoice_id",
			"i.invoice_number",
			"l.quantity",
			"l.unit_price",
			"i.date",
		).
		From("invoice_lines l").
		Join("invoices i ON i.id = l.invoice_id").
		Where(squirrel.Eq{"i.invoice_type": "purchase", "l.description_key": keys}).
		OrderBy("i.created_at DESC", "i.id DESC", "l.line_no")
}
