package dto

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"invoicing/internal/core/apperror"
	"invoicing/internal/core/id"
	"invoicing/internal/core/types"
	"invoicing/internal/domain/documents/invoice"
)

// --- Request DTOs ---

// ItemRequest is one invoice line as sent by the dashboard.
type ItemRequest struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	TaxRate     float64 `json:"taxRate"`
}

// CreateInvoiceRequest is the request body for creating a purchase or sale invoice.
// The counterparty is taken from supplierId/clientId, or from the supplier/client
// reference when the id field is empty.
type CreateInvoiceRequest struct {
	InvoiceNumber string        `json:"invoiceNumber"`
	SupplierID    string        `json:"supplierId"`
	Supplier      *Ref          `json:"supplier"`
	ClientID      string        `json:"clientId"`
	Client        *Ref          `json:"client"`
	Date          *Date         `json:"date"`
	DueDate       *Date         `json:"dueDate"`
	Status        string        `json:"status"`
	PaymentMethod string        `json:"paymentMethod"`
	Notes         string        `json:"notes"`
	Items         []ItemRequest `json:"items"`
}

// ToEntity converts DTO to a domain invoice of type t.
func (r *CreateInvoiceRequest) ToEntity(t invoice.Type) (*invoice.Invoice, error) {
	inv := invoice.New(t)
	inv.Number = r.InvoiceNumber
	inv.Status = invoice.Status(r.Status)
	inv.Notes = r.Notes
	if t == invoice.TypeSale {
		inv.PaymentMethod = r.PaymentMethod
	}
	if r.Date != nil && !r.Date.IsZero() {
		inv.Date = r.Date.Time
	}
	inv.DueDate = r.DueDate.Ptr()
	inv.ApplyDefaults()

	partyID, err := r.counterpartyID(t)
	if err != nil {
		return nil, err
	}
	inv.CounterpartyID = partyID

	lines, err := ToLines(r.Items)
	if err != nil {
		return nil, err
	}
	inv.Lines = lines
	return inv, nil
}

func (r *CreateInvoiceRequest) counterpartyID(t invoice.Type) (id.ID, error) {
	raw, ref, field := r.SupplierID, r.Supplier, "supplierId"
	if t == invoice.TypeSale {
		raw, ref, field = r.ClientID, r.Client, "clientId"
	}
	if raw == "" && ref != nil {
		raw = ref.ID
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return id.ID{}, nil
	}
	parsed, err := id.Parse(raw)
	if err != nil {
		return id.ID{}, apperror.NewValidation("invalid "+field).
			WithDetail("field", field).
			WithDetail("value", raw)
	}
	return parsed, nil
}

// ToLines converts request items to invoice lines, rejecting non-finite numbers.
func ToLines(items []ItemRequest) ([]invoice.Line, error) {
	lines := make([]invoice.Line, len(items))
	for i, item := range items {
		lineNo := i + 1
		qty, err := finite(lineNo, "quantity", item.Quantity)
		if err != nil {
			return nil, err
		}
		price, err := finite(lineNo, "unitPrice", item.UnitPrice)
		if err != nil {
			return nil, err
		}
		rate, err := finite(lineNo, "taxRate", item.TaxRate)
		if err != nil {
			return nil, err
		}
		lines[i] = invoice.Line{
			Description: item.Description,
			Quantity:    qty,
			UnitPrice:   price,
			TaxRate:     rate,
		}
	}
	return lines, nil
}

func finite(lineNo int, field string, v float64) (decimal.Decimal, error) {
	d, err := types.FromFloat(v)
	if err != nil {
		return decimal.Zero, apperror.NewInvalidInvoiceItem(lineNo, field, field+" must be a finite number")
	}
	return d, nil
}

// UpdateInvoiceRequest changes header fields. Omitted fields keep their value.
type UpdateInvoiceRequest struct {
	InvoiceNumber *string `json:"invoiceNumber"`
	Date          *Date   `json:"date"`
	DueDate       *Date   `json:"dueDate"`
	Status        *string `json:"status"`
	PaymentMethod *string `json:"paymentMethod"`
	Notes         *string `json:"notes"`
}

// ToPatch converts DTO to a header patch.
func (r *UpdateInvoiceRequest) ToPatch() invoice.HeaderPatch {
	patch := invoice.HeaderPatch{
		Number:        r.InvoiceNumber,
		PaymentMethod: r.PaymentMethod,
		Notes:         r.Notes,
	}
	if r.Date != nil && !r.Date.IsZero() {
		d := r.Date.Time
		patch.Date = &d
	}
	if r.DueDate != nil {
		patch.DueDate = r.DueDate.Ptr()
	}
	if r.Status != nil {
		s := invoice.Status(*r.Status)
		patch.Status = &s
	}
	return patch
}

// ReplaceItemsRequest is the request body for swapping the items of an invoice.
type ReplaceItemsRequest struct {
	Items []ItemRequest `json:"items" binding:"required"`
}

// --- Response DTOs ---

// LineResponse is one invoice item.
type LineResponse struct {
	ID          string          `json:"id"`
	LineNo      int             `json:"lineNo"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	TaxRate     decimal.Decimal `json:"taxRate"`
	Total       decimal.Decimal `json:"total"`
}

// InvoiceResponse is the response for a purchase or sale invoice.
// Purchases carry supplier fields, sales carry client fields.
type InvoiceResponse struct {
	ID            string         `json:"id"`
	InvoiceType   string         `json:"invoiceType"`
	InvoiceNumber string         `json:"invoiceNumber"`
	SupplierID    string         `json:"supplierId,omitempty"`
	Supplier      *PartySummary  `json:"supplier,omitempty"`
	ClientID      string         `json:"clientId,omitempty"`
	Client        *PartySummary  `json:"client,omitempty"`
	Date          time.Time      `json:"date"`
	DueDate       *time.Time     `json:"dueDate,omitempty"`
	Status        string         `json:"status"`
	PaymentMethod string         `json:"paymentMethod,omitempty"`
	Notes         string         `json:"notes"`
	Subtotal      types.Money    `json:"subtotal"`
	TaxAmount     types.Money    `json:"taxAmount"`
	Total         types.Money    `json:"total"`
	Items         []LineResponse `json:"items,omitempty"`
	Version       int            `json:"version"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// FromInvoice converts domain invoice to response DTO. Items are included
// only when the invoice was loaded with its lines.
func FromInvoice(inv *invoice.Invoice) InvoiceResponse {
	resp := InvoiceResponse{
		ID:            inv.ID.String(),
		InvoiceType:   string(inv.Type),
		InvoiceNumber: inv.Number,
		Date:          inv.Date,
		DueDate:       inv.DueDate,
		Status:        string(inv.Status),
		PaymentMethod: inv.PaymentMethod,
		Notes:         inv.Notes,
		Subtotal:      inv.Subtotal,
		TaxAmount:     inv.TaxAmount,
		Total:         inv.Total,
		Version:       inv.Version,
		CreatedAt:     inv.CreatedAt,
		UpdatedAt:     inv.UpdatedAt,
	}

	party := &PartySummary{ID: inv.CounterpartyID.String(), Name: inv.CounterpartyName}
	if inv.Type == invoice.TypeSale {
		resp.ClientID, resp.Client = party.ID, party
	} else {
		resp.SupplierID, resp.Supplier = party.ID, party
	}

	if len(inv.Lines) > 0 {
		resp.Items = make([]LineResponse, len(inv.Lines))
		for i, l := range inv.Lines {
			resp.Items[i] = LineResponse{
				ID:          l.ID.String(),
				LineNo:      l.LineNo,
				Description: l.Description,
				Quantity:    l.Quantity,
				UnitPrice:   l.UnitPrice,
				TaxRate:     l.TaxRate,
				Total:       l.Total,
			}
		}
	}
	return resp
}

// FromInvoices converts a list, never returning nil.
func FromInvoices(items []*invoice.Invoice) []InvoiceResponse {
	out := make([]InvoiceResponse, len(items))
	for i, inv := range items {
		out[i] = FromInvoice(inv)
	}
	return out
}
