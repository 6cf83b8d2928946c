package postgres

import (
	"regexp"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSchema_NumericColumnsKeepScale(t *testing.T) {
	assert.NotRegexp(t, `numeric\s*\(`, schema, "a fixed scale rounds stored quantities and averages")

	for _, col := range []string{
		"quantity", "unit_price", "tax_rate", "total",
		"total_quantity", "average_unit_price", "last_purchase_price",
		"subtotal", "tax_amount",
	} {
		re := regexp.MustCompile(`(?m)^\s+` + col + `\s+numeric\s+NOT NULL`)
		assert.Regexp(t, re, schema, col)
	}
}

func TestNumeric_KeepsSmallQuantities(t *testing.T) {
	tests := []string{"0.0000001", "0.6666666666666667", "12.5", "3"}
	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			d := decimal.RequireFromString(in)
			n := Numeric(d)

			assert.True(t, n.Valid)
			got := decimal.NewFromBigInt(n.Int, n.Exp)
			assert.True(t, d.Equal(got), "want %s, got %s", d, got)
		})
	}
}
