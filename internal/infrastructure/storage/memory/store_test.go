package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicing/internal/core/apperror"
	"invoicing/internal/domain"
	"invoicing/internal/domain/catalogs/counterparty"
	"invoicing/internal/domain/documents/invoice"
	"invoicing/internal/domain/registers/stock"
)

func TestRunInTransaction_RollsBackOnError(t *testing.T) {
	s := New()
	products := NewProductRepo(s)
	ctx := context.Background()

	boom := errors.New("boom")
	err := s.RunInTransaction(ctx, func(ctx context.Context) error {
		_, err := products.PutProduct(ctx, &stock.Product{Key: "widget", Description: "Widget"})
		require.NoError(t, err)

		// Nested calls join the outer transaction.
		return s.RunInTransaction(ctx, func(ctx context.Context) error {
			return boom
		})
	})
	require.ErrorIs(t, err, boom)

	_, err = products.FindProduct(ctx, "widget")
	assert.True(t, apperror.IsNotFound(err))
}

func TestRunInTransaction_RollbackKeepsOutsideWrites(t *testing.T) {
	s := New()
	parties := NewCounterpartyRepo(s)
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	txDone := make(chan error, 1)
	go func() {
		txDone <- s.RunInTransaction(ctx, func(ctx context.Context) error {
			close(started)
			<-release
			return errors.New("boom")
		})
	}()
	<-started

	cp := counterparty.New(counterparty.KindSupplier, "Outside Supply")
	created := make(chan error, 1)
	go func() { created <- parties.Create(ctx, cp) }()

	close(release)
	require.Error(t, <-txDone)
	require.NoError(t, <-created)

	got, err := parties.GetByID(ctx, counterparty.KindSupplier, cp.ID)
	require.NoError(t, err)
	assert.Equal(t, "Outside Supply", got.Name)
}

func TestRunInTransaction_CommitsOnSuccess(t *testing.T) {
	s := New()
	products := NewProductRepo(s)
	ctx := context.Background()

	require.NoError(t, s.RunInTransaction(ctx, func(ctx context.Context) error {
		_, err := products.PutProduct(ctx, &stock.Product{Key: "widget", Description: "Widget"})
		return err
	}))

	p, err := products.FindProduct(ctx, "widget")
	require.NoError(t, err)
	assert.Equal(t, 1, p.Version)
	assert.False(t, p.CreatedAt.IsZero())
}

func TestPutProduct_CompareAndSwap(t *testing.T) {
	products := NewProductRepo(New())
	ctx := context.Background()

	saved, err := products.PutProduct(ctx, &stock.Product{Key: "bolt", TotalQuantity: decimal.NewFromInt(1)})
	require.NoError(t, err)

	_, err = products.PutProduct(ctx, &stock.Product{Key: "bolt"})
	assert.True(t, apperror.IsConcurrentModification(err), "second insert must conflict")

	stale := *saved
	stale.Version = 0
	saved.TotalQuantity = decimal.NewFromInt(2)
	_, err = products.PutProduct(ctx, saved)
	require.NoError(t, err)

	stale.Version = 1
	_, err = products.PutProduct(ctx, &stale)
	assert.True(t, apperror.IsConcurrentModification(err))

	ok, err := products.DeleteProduct(ctx, "bolt", 1)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = products.DeleteProduct(ctx, "bolt", 2)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestInvoiceRepo_NumbersUniquePerType(t *testing.T) {
	repo := NewInvoiceRepo(New())
	ctx := context.Background()

	p := invoice.New(invoice.TypePurchase)
	p.Number = "2026-001"
	require.NoError(t, repo.Create(ctx, p))

	s := invoice.New(invoice.TypeSale)
	s.Number = "2026-001"
	require.NoError(t, repo.Create(ctx, s))

	dup := invoice.New(invoice.TypePurchase)
	dup.Number = "2026-001"
	assert.True(t, apperror.HasCode(repo.Create(ctx, dup), apperror.CodeDuplicate))

	other := invoice.New(invoice.TypePurchase)
	other.Number = "2026-002"
	require.NoError(t, repo.Create(ctx, other))
	other.Number = "2026-001"
	assert.True(t, apperror.HasCode(repo.UpdateHeader(ctx, other), apperror.CodeDuplicate))
}

func TestInvoiceRepo_UpdateHeaderChecksVersion(t *testing.T) {
	repo := NewInvoiceRepo(New())
	ctx := context.Background()

	inv := invoice.New(invoice.TypePurchase)
	inv.Number = "P-1"
	require.NoError(t, repo.Create(ctx, inv))

	stale := *inv
	require.NoError(t, repo.UpdateHeader(ctx, inv))
	assert.Equal(t, 2, inv.Version)

	assert.True(t, apperror.IsConcurrentModification(repo.UpdateHeader(ctx, &stale)))
}

func TestInvoiceRepo_GetByIDCopiesLines(t *testing.T) {
	repo := NewInvoiceRepo(New())
	ctx := context.Background()

	inv := invoice.New(invoice.TypeSale)
	inv.Number = "S-1"
	inv.SetLines([]invoice.Line{
		{Description: "A", Quantity: decimal.NewFromInt(1)},
		{Description: "B", Quantity: decimal.NewFromInt(2)},
	})
	require.NoError(t, repo.Create(ctx, inv))

	got, err := repo.GetByID(ctx, invoice.TypeSale, inv.ID)
	require.NoError(t, err)
	require.Len(t, got.Lines, 2)
	got.Lines[0].Description = "changed"

	again, err := repo.GetByID(ctx, invoice.TypeSale, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", again.Lines[0].Description)

	_, err = repo.GetByID(ctx, invoice.TypePurchase, inv.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestCounterpartyRepo_ListPages(t *testing.T) {
	repo := NewCounterpartyRepo(New())
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, repo.Create(ctx, counterparty.New(counterparty.KindSupplier, name)))
	}

	got, err := repo.List(ctx, counterparty.KindSupplier, domain.ListFilter{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].Name)
	assert.Equal(t, "a", got[1].Name)

	got, err = repo.List(ctx, counterparty.KindSupplier, domain.ListFilter{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReportRepo_TableCounts(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, NewCounterpartyRepo(s).Create(ctx, counterparty.New(counterparty.KindClient, "Jane")))

	counts, err := NewReportRepo(s).TableCounts(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, counts["clients"])
	assert.EqualValues(t, 0, counts["suppliers"])
	assert.EqualValues(t, 0, counts["products"])
}
