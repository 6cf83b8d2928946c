package handlers

import (
	"github.com/gin-gonic/gin"

	"invoicing/internal/domain/documents/invoice"
	"invoicing/internal/infrastructure/http/v1/dto"
)

// InvoiceHandler serves either purchase or sale invoices.
type InvoiceHandler struct {
	*BaseHandler
	service *invoice.Service
	typ     invoice.Type
}

// NewInvoiceHandler creates a handler bound to one invoice type.
func NewInvoiceHandler(base *BaseHandler, service *invoice.Service, typ invoice.Type) *InvoiceHandler {
	return &InvoiceHandler{
		BaseHandler: base,
		service:     service,
		typ:         typ,
	}
}

// List handles GET /invoices/{type} - status, search, limit and skip.
func (h *InvoiceHandler) List(c *gin.Context) {
	var q dto.InvoiceQuery
	if !h.BindQuery(c, &q) {
		return
	}

	result, err := h.service.List(c.Request.Context(), h.typ, q.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Page(c, dto.FromInvoices(result.Items), dto.NewPagination(result))
}

// Get handles GET /invoices/{type}/:id - header with items.
func (h *InvoiceHandler) Get(c *gin.Context) {
	invID, ok := h.ParseID(c)
	if !ok {
		return
	}

	inv, err := h.service.GetByID(c.Request.Context(), h.typ, invID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromInvoice(inv))
}

// Create handles POST /invoices/{type}. The stock ledger is updated in the
// same transaction.
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req dto.CreateInvoiceRequest
	if !h.BindJSON(c, &req) {
		return
	}

	inv, err := req.ToEntity(h.typ)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Create(c.Request.Context(), inv); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromInvoice(inv))
}

// UpdateHeader handles PATCH /invoices/{type}/:id.
func (h *InvoiceHandler) UpdateHeader(c *gin.Context) {
	invID, ok := h.ParseID(c)
	if !ok {
		return
	}

	var req dto.UpdateInvoiceRequest
	if !h.BindJSON(c, &req) {
		return
	}

	inv, err := h.service.UpdateHeader(c.Request.Context(), h.typ, invID, req.ToPatch())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromInvoice(inv))
}

// ReplaceItems handles PUT /invoices/{type}/:id/items.
func (h *InvoiceHandler) ReplaceItems(c *gin.Context) {
	invID, ok := h.ParseID(c)
	if !ok {
		return
	}

	var req dto.ReplaceItemsRequest
	if !h.BindJSON(c, &req) {
		return
	}

	lines, err := dto.ToLines(req.Items)
	if err != nil {
		h.Error(c, err)
		return
	}

	inv, err := h.service.ReplaceItems(c.Request.Context(), h.typ, invID, lines)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromInvoice(inv))
}

// Delete handles DELETE /invoices/{type}/:id and reverses the stock effect.
func (h *InvoiceHandler) Delete(c *gin.Context) {
	invID, ok := h.ParseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), h.typ, invID); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, string(h.typ)+" invoice deleted")
}
