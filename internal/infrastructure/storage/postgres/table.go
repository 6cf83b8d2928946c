package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"invoicing/internal/core/apperror"
)

// Builder returns a squirrel builder with PostgreSQL placeholders.
func Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Table maps a struct type onto one table through its "db" tags and provides
// the versioned CRUD shared by the repositories.
type Table[T any] struct {
	name    string
	entity  string
	columns []string
	txm     *TxManager
}

// NewTable creates a table mapping. entity names the record in errors.
func NewTable[T any](txm *TxManager, name, entity string) *Table[T] {
	return &Table[T]{
		name:    name,
		entity:  entity,
		columns: ExtractDBColumns[T](),
		txm:     txm,
	}
}

// Name returns the table name.
func (t *Table[T]) Name() string { return t.name }

// Columns returns the mapped column names.
func (t *Table[T]) Columns() []string { return t.columns }

// Querier returns the querier for ctx.
func (t *Table[T]) Querier(ctx context.Context) Querier {
	return t.txm.GetQuerier(ctx)
}

// Select starts a SELECT of every mapped column.
func (t *Table[T]) Select() squirrel.SelectBuilder {
	return Builder().Select(t.columns...).From(t.name)
}

// Insert writes row using its "db" tags.
func (t *Table[T]) Insert(ctx context.Context, row *T) error {
	q := Builder().Insert(t.name).SetMap(t.values(row))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := t.Querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", t.name, err)
	}
	return nil
}

// UpdateVersioned rewrites every mutable column of row where id and version
// still match, then advances the stored version. A miss is reported as
// CONCURRENT_MODIFICATION.
func (t *Table[T]) UpdateVersioned(ctx context.Context, row *T, where squirrel.Sqlizer) error {
	data := t.values(row)
	entityID := data["id"]
	version, ok := data["version"].(int)
	if !ok {
		return fmt.Errorf("%s has no int version column", t.name)
	}
	for _, col := range []string{"id", "version", "created_at"} {
		delete(data, col)
	}

	q := Builder().
		Update(t.name).
		SetMap(data).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": entityID, "version": version})
	if where != nil {
		q = q.Where(where)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := t.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", t.name, err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification(t.entity, entityID)
	}
	return nil
}

// Get returns the single row matching where, or NOT_FOUND for key.
func (t *Table[T]) Get(ctx context.Context, where squirrel.Sqlizer, key any) (*T, error) {
	sql, args, err := t.Select().Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	row := new(T)
	if err := pgxscan.Get(ctx, t.Querier(ctx), row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(t.entity, key)
		}
		return nil, fmt.Errorf("get %s: %w", t.name, err)
	}
	return row, nil
}

// List runs q and scans every row.
func (t *Table[T]) List(ctx context.Context, q squirrel.SelectBuilder) ([]*T, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows := make([]*T, 0)
	if err := pgxscan.Select(ctx, t.Querier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list %s: %w", t.name, err)
	}
	return rows, nil
}

// Count returns the number of rows matching where.
func (t *Table[T]) Count(ctx context.Context, where squirrel.Sqlizer) (int64, error) {
	q := Builder().Select("COUNT(*)").From(t.name)
	if where != nil {
		q = q.Where(where)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}

	var n int64
	if err := t.Querier(ctx).QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", t.name, err)
	}
	return n, nil
}

// Delete removes the rows matching where. Deleting nothing is NOT_FOUND for key.
func (t *Table[T]) Delete(ctx context.Context, where squirrel.Sqlizer, key any) error {
	sql, args, err := Builder().Delete(t.name).Where(where).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := t.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete %s: %w", t.name, err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(t.entity, key)
	}
	return nil
}

// values keeps the mapped columns of row.
func (t *Table[T]) values(row *T) map[string]any {
	data := StructToMap(row)
	out := make(map[string]any, len(t.columns))
	for _, col := range t.columns {
		if v, ok := data[col]; ok {
			out[col] = v
		}
	}
	return out
}
