package stock_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicing/internal/domain"
	"invoicing/internal/domain/registers/stock"
)

type fakeCatalog struct {
	products []stock.Product
	records  []stock.PurchaseRecord
	filter   stock.ProductFilter
	keys     []string
}

func (f *fakeCatalog) ListProducts(ctx context.Context, filter stock.ProductFilter) ([]stock.Product, error) {
	f.filter = filter
	return f.products, nil
}

func (f *fakeCatalog) PurchaseHistory(ctx context.Context, keys []string) ([]stock.PurchaseRecord, error) {
	f.keys = keys
	return f.records, nil
}

func TestCatalogService_GroupsHistoryByKey(t *testing.T) {
	fake := &fakeCatalog{
		products: []stock.Product{
			{Key: "bolt", Description: "Bolt"},
			{Key: "nut", Description: "Nut"},
		},
		records: []stock.PurchaseRecord{
			{Key: "bolt", InvoiceNumber: "P-2", Quantity: dec("1")},
			{Key: "bolt", InvoiceNumber: "P-1", Quantity: dec("2")},
		},
	}
	svc := stock.NewCatalogService(fake, fake)

	entries, err := svc.List(context.Background(), stock.ProductFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, []string{"bolt", "nut"}, fake.keys)
	assert.Equal(t, domain.MaxListLimit, fake.filter.Limit)

	require.Len(t, entries[0].Purchases, 2)
	assert.Equal(t, "P-2", entries[0].Purchases[0].InvoiceNumber)
	assert.NotNil(t, entries[1].Purchases)
	assert.Empty(t, entries[1].Purchases)
}

func TestCatalogService_EmptyCatalogSkipsHistory(t *testing.T) {
	fake := &fakeCatalog{}
	svc := stock.NewCatalogService(fake, fake)

	entries, err := svc.List(context.Background(), stock.ProductFilter{Limit: 10_000})
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Nil(t, fake.keys)
	assert.Equal(t, domain.MaxListLimit, fake.filter.Limit)
}
