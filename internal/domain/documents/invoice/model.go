// Package invoice provides purchase and sale invoices.
package invoice

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"invoicing/internal/core/apperror"
	"invoicing/internal/core/entity"
	"invoicing/internal/core/id"
	"invoicing/internal/core/types"
	"invoicing/internal/core/validation"
	"invoicing/internal/domain/catalogs/counterparty"
	"invoicing/internal/domain/registers/stock"
)

// Type distinguishes purchase invoices from sale invoices.
type Type string

const (
	TypePurchase Type = "purchase"
	TypeSale     Type = "sale"
)

// CounterpartyKind is the kind of counterparty an invoice of this type refers to.
func (t Type) CounterpartyKind() counterparty.Kind {
	if t == TypeSale {
		return counterparty.KindClient
	}
	return counterparty.KindSupplier
}

// NumberPrefix starts the generated numbers of this type.
func (t Type) NumberPrefix() string {
	if t == TypeSale {
		return "SAL"
	}
	return "PUR"
}

// Status is the payment status of an invoice.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusOverdue   Status = "overdue"
	StatusCancelled Status = "cancelled"
)

// DefaultPaymentMethod is applied to sale invoices created without one.
const DefaultPaymentMethod = "cash"

// Invoice is a purchase or sale invoice with its item lines.
type Invoice struct {
	entity.BaseEntity

	Type   Type   `db:"invoice_type" json:"invoiceType" validate:"oneof=purchase sale"`
	Number string `db:"invoice_number" json:"invoiceNumber" validate:"required,max=64"`

	// Counterparty is a supplier for purchases and a client for sales.
	// The name is a snapshot taken when the invoice was created.
	CounterpartyID   id.ID  `db:"counterparty_id" json:"counterpartyId"`
	CounterpartyName string `db:"counterparty_name" json:"counterpartyName"`

	Date          time.Time  `db:"date" json:"date"`
	DueDate       *time.Time `db:"due_date" json:"dueDate,omitempty"`
	Status        Status     `db:"status" json:"status" validate:"oneof=draft pending paid overdue cancelled"`
	PaymentMethod string     `db:"payment_method" json:"paymentMethod,omitempty" validate:"max=64"`
	Notes         string     `db:"notes" json:"notes" validate:"max=2000"`

	// Totals (calculated from lines)
	Subtotal  types.Money `db:"subtotal" json:"subtotal"`
	TaxAmount types.Money `db:"tax_amount" json:"taxAmount"`
	Total     types.Money `db:"total" json:"total"`

	Lines []Line `db:"-" json:"items"`
}

// Line is one item of an invoice.
type Line struct {
	ID          id.ID           `db:"id" json:"id"`
	InvoiceID   id.ID           `db:"invoice_id" json:"invoiceId"`
	InvoiceType Type            `db:"invoice_type" json:"invoiceType"`
	LineNo      int             `db:"line_no" json:"lineNo"`
	Description string          `db:"description" json:"description"`
	Quantity    types.Quantity  `db:"quantity" json:"quantity"`
	UnitPrice   types.Money     `db:"unit_price" json:"unitPrice"`
	TaxRate     decimal.Decimal `db:"tax_rate" json:"taxRate"`
	Total       types.Money     `db:"total" json:"total"`
}

// New creates an invoice of the given type with type defaults applied.
func New(t Type) *Invoice {
	inv := &Invoice{
		BaseEntity: entity.NewBaseEntity(),
		Type:       t,
		Date:       time.Now().UTC(),
	}
	inv.ApplyDefaults()
	return inv
}

// ApplyDefaults fills status and payment method when unset.
// Purchases start pending; sales are paid in cash unless told otherwise.
func (inv *Invoice) ApplyDefaults() {
	if inv.Status == "" {
		if inv.Type == TypeSale {
			inv.Status = StatusPaid
		} else {
			inv.Status = StatusPending
		}
	}
	if inv.Type == TypeSale && strings.TrimSpace(inv.PaymentMethod) == "" {
		inv.PaymentMethod = DefaultPaymentMethod
	}
}

// SetLines replaces the item lines, numbering them and recalculating totals.
func (inv *Invoice) SetLines(lines []Line) {
	inv.Lines = make([]Line, len(lines))
	for i, l := range lines {
		if id.IsNil(l.ID) {
			l.ID = id.New()
		}
		l.InvoiceID = inv.ID
		l.InvoiceType = inv.Type
		l.LineNo = i + 1
		l.Total = l.Quantity.Mul(l.UnitPrice)
		inv.Lines[i] = l
	}
	inv.recalculateTotals()
}

// recalculateTotals updates invoice totals from lines.
func (inv *Invoice) recalculateTotals() {
	subtotal := decimal.Zero
	tax := decimal.Zero
	for _, l := range inv.Lines {
		subtotal = subtotal.Add(l.Total)
		tax = tax.Add(types.Percent(l.Total, l.TaxRate))
	}
	inv.Subtotal = subtotal
	inv.TaxAmount = tax
	inv.Total = subtotal.Add(tax)
}

// Items converts the lines into ledger items.
func (inv *Invoice) Items() []stock.Item {
	return LinesToItems(inv.Lines)
}

// LinesToItems converts invoice lines into ledger items.
func LinesToItems(lines []Line) []stock.Item {
	items := make([]stock.Item, len(lines))
	for i, l := range lines {
		items[i] = stock.Item{
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			TaxRate:     l.TaxRate,
		}
	}
	return items
}

// Validate implements entity.Validatable.
func (inv *Invoice) Validate(ctx context.Context) error {
	inv.Number = strings.TrimSpace(inv.Number)
	if err := validation.Struct(inv); err != nil {
		return err
	}

	if id.IsNil(inv.CounterpartyID) {
		return apperror.NewValidation(inv.Type.CounterpartyKind().Label() + " is required").
			WithDetail("field", counterpartyField(inv.Type))
	}

	if inv.Date.IsZero() {
		return apperror.NewValidation("date is required").
			WithDetail("field", "date")
	}

	if inv.DueDate != nil && inv.DueDate.Before(inv.Date) {
		return apperror.NewValidation("due date must not be before invoice date").
			WithDetail("field", "dueDate")
	}

	if len(inv.Lines) == 0 {
		return apperror.NewValidation("at least one item is required").
			WithDetail("field", "items")
	}

	return stock.ValidateItems(inv.Items())
}

func counterpartyField(t Type) string {
	if t == TypeSale {
		return "clientId"
	}
	return "supplierId"
}
