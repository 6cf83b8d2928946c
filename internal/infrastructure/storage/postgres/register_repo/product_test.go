package register_repo

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicing/internal/domain/registers/stock"
)

const returning = "RETURNING description_key, description, total_quantity, average_unit_price, " +
	"last_purchase_price, last_purchase_date, supplier_id, supplier_name, tax_rate, version, created_at, updated_at"

func TestInsertQuery_DoesNothingOnConflict(t *testing.T) {
	repo := NewProductRepo(nil)

	sql, args, err := repo.insertQuery(&stock.Product{Key: "widget", Description: "Widget"}).ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"INSERT INTO products (description_key,description,total_quantity,average_unit_price,"+
			"last_purchase_price,last_purchase_date,supplier_id,supplier_name,tax_rate,version,created_at,updated_at) "+
			"VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,now(),now()) "+
			"ON CONFLICT (description_key) DO NOTHING "+returning,
		sql)
	assert.Len(t, args, 10)
	assert.Equal(t, 1, args[9])
}

func TestUpdateQuery_ChecksVersion(t *testing.T) {
	repo := NewProductRepo(nil)

	sql, args, err := repo.updateQuery(&stock.Product{
		Key:           "widget",
		TotalQuantity: decimal.NewFromInt(4),
		Version:       7,
	}).ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"UPDATE products SET total_quantity = $1, average_unit_price = $2, last_purchase_price = $3, "+
			"last_purchase_date = $4, supplier_id = $5, supplier_name = $6, tax_rate = $7, "+
			"version = version + 1, updated_at = now() "+
			"WHERE description_key = $8 AND version = $9 "+returning,
		sql)
	assert.Equal(t, "widget", args[7])
	assert.Equal(t, 7, args[8])
}

func TestHistoryQuery(t *testing.T) {
	sql, args, err := historyQuery([]string{"bolt", "nut"}).ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT l.description_key, i.id::text AS invoice_id, i.invoice_number, l.quantity, l.unit_price, i.date "+
			"FROM invoice_lines l JOIN invoices i ON i.id = l.invoice_id "+
			"WHERE i.invoice_type = $1 AND l.description_key IN ($2,$3) "+
			"ORDER BY i.created_at DESC, i.id DESC, l.line_no",
		sql)
	assert.Equal(t, []any{"purchase", "bolt", "nut"}, args)
}

func TestListQuery_Search(t *testing.T) {
	sql, args, err := listQuery(stock.ProductFilter{Search: "wid", Limit: 500}).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "FROM products WHERE description ILIKE $1 ORDER BY lower(description) LIMIT 500")
	assert.Equal(t, []any{"%wid%"}, args)
}
