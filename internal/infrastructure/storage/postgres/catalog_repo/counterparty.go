// Package catalog_repo provides PostgreSQL repositories for suppliers and clients.
package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"invoicing/internal/core/id"
	"invoicing/internal/domain"
	"invoicing/internal/domain/catalogs/counterparty"
	"invoicing/internal/infrastructure/storage/postgres"
)

const counterpartiesTable = "counterparties"

var _ counterparty.Repository = (*CounterpartyRepo)(nil)

// CounterpartyRepo implements counterparty.Repository.
type CounterpartyRepo struct {
	table *postgres.Table[counterparty.Counterparty]
}

// NewCounterpartyRepo creates a new counterparty repository.
func NewCounterpartyRepo(txm *postgres.TxManager) *CounterpartyRepo {
	return &CounterpartyRepo{
		table: postgres.NewTable[counterparty.Counterparty](txm, counterpartiesTable, "counterparty"),
	}
}

func (r *CounterpartyRepo) Create(ctx context.Context, c *counterparty.Counterparty) error {
	return r.table.Insert(ctx, c)
}

func (r *CounterpartyRepo) GetByID(ctx context.Context, kind counterparty.Kind, cpID id.ID) (*counterparty.Counterparty, error) {
	return r.table.Get(ctx, squirrel.Eq{"id": cpID, "kind": kind}, cpID.String())
}

func (r *CounterpartyRepo) Update(ctx context.Context, c *counterparty.Counterparty) error {
	if err := r.table.UpdateVersioned(ctx, c, squirrel.Eq{"kind": c.Kind}); err != nil {
		return err
	}
	c.Version++
	return nil
}

func (r *CounterpartyRepo) Delete(ctx context.Context, kind counterparty.Kind, cpID id.ID) error {
	return r.table.Delete(ctx, squirrel.Eq{"id": cpID, "kind": kind}, cpID.String())
}

func (r *CounterpartyRepo) List(ctx context.Context, kind counterparty.Kind, filter domain.ListFilter) ([]*counterparty.Counterparty, error) {
	return r.table.List(ctx, r.listQuery(kind, filter))
}

func (r *CounterpartyRepo) listQuery(kind counterparty.Kind, filter domain.ListFilter) squirrel.SelectBuilder {
	q := r.table.Select().
		Where(squirrel.Eq{"kind": kind}).
		OrderBy("created_at DESC", "id DESC")

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"email": pattern},
		})
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}
	return q
}

func (r *CounterpartyRepo) Options(ctx context.Context, kind counterparty.Kind) ([]counterparty.Option, error) {
	sql, args, err := postgres.Builder().
		Select("id::text AS id", "name", "email").
		From(counterpartiesTable).
		Where(squirrel.Eq{"kind": kind}).
		OrderBy("lower(name)").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	opts := make([]counterparty.Option, 0)
	if err := pgxscan.Select(ctx, r.table.Querier(ctx), &opts, sql, args...); err != nil {
		return nil, fmt.Errorf("list %s options: %w", kind, err)
	}
	return opts, nil
}
