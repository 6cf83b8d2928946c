package invoice_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicing/internal/core/apperror"
	"invoicing/internal/core/id"
	"invoicing/internal/domain"
	"invoicing/internal/domain/catalogs/counterparty"
	"invoicing/internal/domain/documents/invoice"
	"invoicing/internal/domain/registers/stock"
	"invoicing/internal/infrastructure/storage/memory"
	pkgnumerator "invoicing/pkg/numerator"
)

type fixture struct {
	svc      *invoice.Service
	products *memory.ProductRepo
	supplier *counterparty.Counterparty
	client   *counterparty.Counterparty
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	store := memory.New()
	products := memory.NewProductRepo(store)
	parties := counterparty.NewService(memory.NewCounterpartyRepo(store), store)

	supplier := counterparty.New(counterparty.KindSupplier, "Acme Supply")
	require.NoError(t, parties.Create(ctx, supplier))
	client := counterparty.New(counterparty.KindClient, "Jane Buyer")
	require.NoError(t, parties.Create(ctx, client))

	svc := invoice.NewService(
		memory.NewInvoiceRepo(store),
		parties,
		stock.NewReconciler(products, store),
		store,
	)
	return &fixture{svc: svc, products: products, supplier: supplier, client: client}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func line(desc, qty, price, tax string) invoice.Line {
	return invoice.Line{Description: desc, Quantity: dec(qty), UnitPrice: dec(price), TaxRate: dec(tax)}
}

func (f *fixture) purchase(number string, lines ...invoice.Line) *invoice.Invoice {
	inv := invoice.New(invoice.TypePurchase)
	inv.Number = number
	inv.CounterpartyID = f.supplier.ID
	inv.Date = time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC)
	inv.Lines = lines
	return inv
}

func (f *fixture) sale(number string, lines ...invoice.Line) *invoice.Invoice {
	inv := invoice.New(invoice.TypeSale)
	inv.Number = number
	inv.CounterpartyID = f.client.ID
	inv.Date = time.Date(2026, 5, 3, 0, 0, 0, 0, time.UTC)
	inv.Lines = lines
	return inv
}

func (f *fixture) quantity(t *testing.T, key string) decimal.Decimal {
	t.Helper()
	p, err := f.products.FindProduct(context.Background(), key)
	require.NoError(t, err)
	return p.TotalQuantity
}

func TestCreatePurchase_ComputesTotalsAndStocks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inv := f.purchase("P-001", line("Widget", "10", "5", "20"), line("Bolt", "4", "2.5", "0"))
	require.NoError(t, f.svc.Create(ctx, inv))

	assert.Equal(t, "Acme Supply", inv.CounterpartyName)
	assert.Equal(t, invoice.StatusPending, inv.Status)
	assert.True(t, inv.Subtotal.Equal(dec("60")))
	assert.True(t, inv.TaxAmount.Equal(dec("10")))
	assert.True(t, inv.Total.Equal(dec("70")))
	assert.Equal(t, 2, inv.Lines[1].LineNo)

	assert.True(t, f.quantity(t, "widget").Equal(dec("10")))
	assert.True(t, f.quantity(t, "bolt").Equal(dec("4")))

	got, err := f.svc.GetByID(ctx, invoice.TypePurchase, inv.ID)
	require.NoError(t, err)
	require.Len(t, got.Lines, 2)
	assert.Equal(t, "Widget", got.Lines[0].Description)
}

func TestCreateSale_DefaultsAndDepletes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Create(ctx, f.purchase("P-001", line("Widget", "15", "6", "0"))))

	sale := f.sale("S-001", line("widget ", "3", "9", "0"))
	require.NoError(t, f.svc.Create(ctx, sale))

	assert.Equal(t, invoice.StatusPaid, sale.Status)
	assert.Equal(t, invoice.DefaultPaymentMethod, sale.PaymentMethod)
	assert.Equal(t, "Jane Buyer", sale.CounterpartyName)
	assert.True(t, f.quantity(t, "widget").Equal(dec("12")))

	require.NoError(t, f.svc.Delete(ctx, invoice.TypeSale, sale.ID))
	assert.True(t, f.quantity(t, "widget").Equal(dec("15")))
}

func TestCreate_InvalidItemWritesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inv := f.purchase("P-001", line("Widget", "10", "5", "0"), line("Gizmo", "0", "1", "0"))
	err := f.svc.Create(ctx, inv)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidInvoiceItem))

	_, err = f.products.FindProduct(ctx, "widget")
	assert.True(t, apperror.IsNotFound(err))

	list, err := f.svc.List(ctx, invoice.TypePurchase, domain.ListFilter{})
	require.NoError(t, err)
	assert.Zero(t, list.TotalCount)
}

func TestCreate_UnknownCounterparty(t *testing.T) {
	f := newFixture(t)

	inv := f.purchase("P-001", line("Widget", "1", "1", "0"))
	inv.CounterpartyID = f.client.ID

	err := f.svc.Create(context.Background(), inv)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
	assert.Equal(t, "supplierId", appErr.Details["field"])
}

func TestCreate_DuplicateNumberRollsBackStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Create(ctx, f.purchase("P-001", line("Widget", "10", "5", "0"))))

	err := f.svc.Create(ctx, f.purchase("P-001", line("Widget", "10", "5", "0")))
	assert.True(t, apperror.HasCode(err, apperror.CodeDuplicate))
	assert.True(t, f.quantity(t, "widget").Equal(dec("10")))
}

func TestCreate_BeforeCreateHookCanReject(t *testing.T) {
	f := newFixture(t)
	f.svc.Hooks().On(domain.BeforeCreate, func(ctx context.Context, inv *invoice.Invoice) error {
		return apperror.NewValidation("closed period")
	})

	err := f.svc.Create(context.Background(), f.purchase("P-001", line("Widget", "1", "1", "0")))
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestCreate_GeneratesMissingNumber(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("without a numerator the number is required", func(t *testing.T) {
		err := f.svc.Create(ctx, f.purchase("", line("Widget", "1", "1", "0")))
		assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
	})

	f.svc.WithNumerator(pkgnumerator.NewMemory())

	first := f.purchase("", line("Widget", "1", "1", "0"))
	require.NoError(t, f.svc.Create(ctx, first))
	assert.Equal(t, "PUR-2026-00001", first.Number)

	second := f.purchase("  ", line("Widget", "1", "1", "0"))
	require.NoError(t, f.svc.Create(ctx, second))
	assert.Equal(t, "PUR-2026-00002", second.Number)

	sale := f.sale("", line("Widget", "1", "2", "0"))
	require.NoError(t, f.svc.Create(ctx, sale))
	assert.Equal(t, "SAL-2026-00001", sale.Number)

	kept := f.purchase("P-777", line("Widget", "1", "1", "0"))
	require.NoError(t, f.svc.Create(ctx, kept))
	assert.Equal(t, "P-777", kept.Number)
}

func TestDeletePurchase_RemovesEmptiedProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inv := f.purchase("P-001", line("Widget", "10", "5", "0"))
	require.NoError(t, f.svc.Create(ctx, inv))

	var deleted *invoice.Invoice
	f.svc.Hooks().On(domain.AfterDelete, func(ctx context.Context, inv *invoice.Invoice) error {
		deleted = inv
		return nil
	})

	require.NoError(t, f.svc.Delete(ctx, invoice.TypePurchase, inv.ID))
	require.NotNil(t, deleted)
	assert.Equal(t, "P-001", deleted.Number)

	_, err := f.products.FindProduct(ctx, "widget")
	assert.True(t, apperror.IsNotFound(err))

	_, err = f.svc.GetByID(ctx, invoice.TypePurchase, inv.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestDeletePurchase_TinyQuantity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inv := f.purchase("P-TINY", line("Dust", "0.0000001", "3", "0"))
	require.NoError(t, f.svc.Create(ctx, inv))
	assert.True(t, f.quantity(t, "dust").Equal(dec("0.0000001")))

	require.NoError(t, f.svc.Delete(ctx, invoice.TypePurchase, inv.ID))
	_, err := f.products.FindProduct(ctx, "dust")
	assert.True(t, apperror.IsNotFound(err))
}

func TestDelete_WrongTypeIsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inv := f.purchase("P-001", line("Widget", "10", "5", "0"))
	require.NoError(t, f.svc.Create(ctx, inv))

	err := f.svc.Delete(ctx, invoice.TypeSale, inv.ID)
	assert.True(t, apperror.IsNotFound(err))
	assert.True(t, f.quantity(t, "widget").Equal(dec("10")))
}

func TestReplaceItems_ReversesOldAndAppliesNew(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inv := f.purchase("P-001", line("Widget", "10", "5", "0"))
	require.NoError(t, f.svc.Create(ctx, inv))

	updated, err := f.svc.ReplaceItems(ctx, invoice.TypePurchase, inv.ID, []invoice.Line{
		line("Bolt", "3", "2", "10"),
	})
	require.NoError(t, err)
	assert.True(t, updated.Total.Equal(dec("6.6")))
	assert.Equal(t, 2, updated.Version)

	_, err = f.products.FindProduct(ctx, "widget")
	assert.True(t, apperror.IsNotFound(err))
	assert.True(t, f.quantity(t, "bolt").Equal(dec("3")))
}

func TestReplaceItems_InvalidItemKeepsLedger(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inv := f.purchase("P-001", line("Widget", "10", "5", "0"))
	require.NoError(t, f.svc.Create(ctx, inv))

	_, err := f.svc.ReplaceItems(ctx, invoice.TypePurchase, inv.ID, []invoice.Line{
		line("Bolt", "1", "-2", "0"),
	})
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidInvoiceItem))
	assert.True(t, f.quantity(t, "widget").Equal(dec("10")))
}

func TestUpdateHeader_PatchesWithoutTouchingStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inv := f.purchase("P-001", line("Widget", "10", "5", "0"))
	require.NoError(t, f.svc.Create(ctx, inv))

	paid := invoice.StatusPaid
	notes := "settled by transfer"
	updated, err := f.svc.UpdateHeader(ctx, invoice.TypePurchase, inv.ID, invoice.HeaderPatch{
		Status: &paid,
		Notes:  &notes,
	})
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusPaid, updated.Status)
	assert.Equal(t, notes, updated.Notes)
	assert.True(t, f.quantity(t, "widget").Equal(dec("10")))

	early := inv.Date.Add(-48 * time.Hour)
	_, err = f.svc.UpdateHeader(ctx, invoice.TypePurchase, inv.ID, invoice.HeaderPatch{DueDate: &early})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestUpdateHeader_DateKeepsLedgerSnapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inv := f.purchase("P-001", line("Widget", "10", "5", "0"))
	require.NoError(t, f.svc.Create(ctx, inv))

	later := inv.Date.AddDate(0, 0, 7)
	updated, err := f.svc.UpdateHeader(ctx, invoice.TypePurchase, inv.ID, invoice.HeaderPatch{Date: &later})
	require.NoError(t, err)
	assert.True(t, updated.Date.Equal(later))

	p, err := f.products.FindProduct(ctx, "widget")
	require.NoError(t, err)
	assert.True(t, p.LastPurchaseDate.Equal(inv.Date), "last purchase date %s", p.LastPurchaseDate)
	assert.Equal(t, 1, p.Version)
}

func TestList_PaginatesNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, n := range []string{"P-001", "P-002", "P-003"} {
		require.NoError(t, f.svc.Create(ctx, f.purchase(n, line("Widget", "1", "1", "0"))))
	}

	res, err := f.svc.List(ctx, invoice.TypePurchase, domain.ListFilter{Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, res.TotalCount)
	assert.True(t, res.HasMore)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "P-003", res.Items[0].Number)

	res, err = f.svc.List(ctx, invoice.TypePurchase, domain.ListFilter{Search: "002"})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "P-002", res.Items[0].Number)
	assert.False(t, res.HasMore)
}

// conflictingTx fails the first attempts as if a product row changed underneath.
type conflictingTx struct {
	failures int
	calls    int
}

func (c *conflictingTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	c.calls++
	if c.calls <= c.failures {
		return apperror.NewConcurrentModification("product", "widget")
	}
	return fn(ctx)
}

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type noParties struct{}

func (noParties) GetByID(ctx context.Context, kind counterparty.Kind, cpID id.ID) (*counterparty.Counterparty, error) {
	return nil, errors.New("unused")
}

func TestDelete_RetriesConflicts(t *testing.T) {
	store := memory.New()
	repo := memory.NewInvoiceRepo(store)
	products := memory.NewProductRepo(store)
	ctx := context.Background()

	inv := invoice.New(invoice.TypeSale)
	inv.Number = "S-001"
	inv.CounterpartyID = id.New()
	inv.SetLines([]invoice.Line{line("Widget", "1", "1", "0")})
	require.NoError(t, repo.Create(ctx, inv))

	t.Run("succeeds within the attempt budget", func(t *testing.T) {
		txm := &conflictingTx{failures: invoice.DefaultMaxAttempts - 1}
		svc := invoice.NewService(repo, noParties{}, stock.NewReconciler(products, passthroughTx{}), txm)

		require.NoError(t, svc.Delete(ctx, invoice.TypeSale, inv.ID))
		assert.Equal(t, invoice.DefaultMaxAttempts, txm.calls)
	})

	t.Run("gives up after the attempt budget", func(t *testing.T) {
		txm := &conflictingTx{failures: 100}
		svc := invoice.NewService(repo, noParties{}, stock.NewReconciler(products, passthroughTx{}), txm)

		err := svc.Delete(ctx, invoice.TypeSale, id.New())
		assert.True(t, apperror.IsConcurrentModification(err))
		assert.Equal(t, invoice.DefaultMaxAttempts, txm.calls)
	})
}
