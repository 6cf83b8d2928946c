// Package document_repo provides the PostgreSQL repository for invoices.
package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"invoicing/internal/core/apperror"
	"invoicing/internal/core/id"
	"invoicing/internal/domain"
	"invoicing/internal/domain/documents/invoice"
	"invoicing/internal/domain/registers/stock"
	"invoicing/internal/infrastructure/storage/postgres"
)

const (
	invoicesTable = "invoices"
	linesTable    = "invoice_lines"
)

var lineColumns = []string{
	"id", "invoice_id", "invoice_type", "line_no",
	"description", "description_key",
	"quantity", "unit_price", "tax_rate", "total",
}

var _ invoice.Repository = (*InvoiceRepo)(nil)

// InvoiceRepo implements invoice.Repository. Headers live in invoices,
// items in invoice_lines.
type InvoiceRepo struct {
	txm   *postgres.TxManager
	table *postgres.Table[invoice.Invoice]
}

// NewInvoiceRepo creates a new invoice repository.
func NewInvoiceRepo(txm *postgres.TxManager) *InvoiceRepo {
	return &InvoiceRepo{
		txm:   txm,
		table: postgres.NewTable[invoice.Invoice](txm, invoicesTable, "invoice"),
	}
}

func (r *InvoiceRepo) Create(ctx context.Context, inv *invoice.Invoice) error {
	if err := r.table.Insert(ctx, inv); err != nil {
		return mapNumberConflict(err, inv)
	}
	return r.insertLines(ctx, inv)
}

func (r *InvoiceRepo) GetByID(ctx context.Context, t invoice.Type, invID id.ID) (*invoice.Invoice, error) {
	inv, err := r.table.Get(ctx, squirrel.Eq{"id": invID, "invoice_type": t}, invID.String())
	if err != nil {
		return nil, err
	}

	sql, args, err := r.linesQuery(invID).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build lines query: %w", err)
	}
	lines := make([]invoice.Line, 0)
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get invoice lines: %w", err)
	}
	inv.Lines = lines
	return inv, nil
}

func (r *InvoiceRepo) linesQuery(invID id.ID) squirrel.SelectBuilder {
	return postgres.Builder().
		Select("id", "invoice_id", "invoice_type", "line_no", "description", "quantity", "unit_price", "tax_rate", "total").
		From(linesTable).
		Where(squirrel.Eq{"invoice_id": invID}).
		OrderBy("line_no")
}

func (r *InvoiceRepo) UpdateHeader(ctx context.Context, inv *invoice.Invoice) error {
	if err := r.table.UpdateVersioned(ctx, inv, squirrel.Eq{"invoice_type": inv.Type}); err != nil {
		return mapNumberConflict(err, inv)
	}
	inv.Version++
	return nil
}

func (r *InvoiceRepo) ReplaceLines(ctx context.Context, inv *invoice.Invoice) error {
	sql, args, err := postgres.Builder().
		Delete(linesTable).
		Where(squirrel.Eq{"invoice_id": inv.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete invoice lines: %w", err)
	}
	return r.insertLines(ctx, inv)
}

func (r *InvoiceRepo) insertLines(ctx context.Context, inv *invoice.Invoice) error {
	rows := make([][]any, 0, len(inv.Lines))
	for _, l := range inv.Lines {
		rows = append(rows, []any{
			l.ID, inv.ID, string(inv.Type), l.LineNo,
			l.Description, stock.Normalize(l.Description),
			postgres.Numeric(l.Quantity), postgres.Numeric(l.UnitPrice),
			postgres.Numeric(l.TaxRate), postgres.Numeric(l.Total),
		})
	}
	if _, err := r.txm.CopyRows(ctx, linesTable, lineColumns, rows); err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return apperror.NewNotFound("invoice", inv.ID.String()).WithCause(err)
		}
		return fmt.Errorf("insert invoice lines: %w", err)
	}
	return nil
}

// Delete removes the header; lines go with it through ON DELETE CASCADE.
func (r *InvoiceRepo) Delete(ctx context.Context, t invoice.Type, invID id.ID) error {
	return r.table.Delete(ctx, squirrel.Eq{"id": invID, "invoice_type": t}, invID.String())
}

func (r *InvoiceRepo) List(ctx context.Context, t invoice.Type, filter domain.ListFilter) ([]*invoice.Invoice, int64, error) {
	where := listWhere(t, filter)

	total, err := r.table.Count(ctx, where)
	if err != nil {
		return nil, 0, err
	}

	items, err := r.table.List(ctx, listQuery(r.table.Select(), where, filter))
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func listWhere(t invoice.Type, filter domain.ListFilter) squirrel.And {
	where := squirrel.And{squirrel.Eq{"invoice_type": t}}
	if filter.Status != "" {
		where = append(where, squirrel.Eq{"status": filter.Status})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		where = append(where, squirrel.Or{
			squirrel.ILike{"invoice_number": pattern},
			squirrel.ILike{"counterparty_name": pattern},
		})
	}
	return where
}

func listQuery(q squirrel.SelectBuilder, where squirrel.And, filter domain.ListFilter) squirrel.SelectBuilder {
	q = q.Where(where).OrderBy("created_at DESC", "id DESC")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}
	return q
}

func mapNumberConflict(err error, inv *invoice.Invoice) error {
	if postgres.IsUniqueViolation(err) {
		return apperror.NewDuplicate("invoice", "invoiceNumber", inv.Number).WithCause(err)
	}
	return err
}
