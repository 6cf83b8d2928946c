package handlers

import (
	"github.com/gin-gonic/gin"

	"invoicing/internal/domain/catalogs/counterparty"
	"invoicing/internal/infrastructure/http/v1/dto"
)

// CounterpartyHandler serves either suppliers or clients.
type CounterpartyHandler struct {
	*BaseHandler
	service *counterparty.Service
	kind    counterparty.Kind
}

// NewCounterpartyHandler creates a handler bound to one counterparty kind.
func NewCounterpartyHandler(base *BaseHandler, service *counterparty.Service, kind counterparty.Kind) *CounterpartyHandler {
	return &CounterpartyHandler{
		BaseHandler: base,
		service:     service,
		kind:        kind,
	}
}

// List handles GET /{kind} - newest first, optional search on name and email.
func (h *CounterpartyHandler) List(c *gin.Context) {
	var q dto.CounterpartyQuery
	if !h.BindQuery(c, &q) {
		return
	}

	items, err := h.service.List(c.Request.Context(), h.kind, q.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromCounterparties(items))
}

// Options handles GET /{kind}/list - id, name and email ordered by name.
func (h *CounterpartyHandler) Options(c *gin.Context) {
	options, err := h.service.Options(c.Request.Context(), h.kind)
	if err != nil {
		h.Error(c, err)
		return
	}
	if options == nil {
		options = []counterparty.Option{}
	}
	h.OK(c, options)
}

// Get handles GET /{kind}/:id.
func (h *CounterpartyHandler) Get(c *gin.Context) {
	cpID, ok := h.ParseID(c)
	if !ok {
		return
	}

	cp, err := h.service.GetByID(c.Request.Context(), h.kind, cpID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromCounterparty(cp))
}

// Create handles POST /{kind}.
func (h *CounterpartyHandler) Create(c *gin.Context) {
	var req dto.CounterpartyRequest
	if !h.BindJSON(c, &req) {
		return
	}

	cp := req.ToEntity(h.kind)
	if err := h.service.Create(c.Request.Context(), cp); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromCounterparty(cp))
}

// Update handles PUT /{kind}/:id - replaces the editable fields.
func (h *CounterpartyHandler) Update(c *gin.Context) {
	cpID, ok := h.ParseID(c)
	if !ok {
		return
	}

	var req dto.CounterpartyRequest
	if !h.BindJSON(c, &req) {
		return
	}

	updated, err := h.service.UpdateFields(c.Request.Context(), h.kind, cpID, req.ApplyTo)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromCounterparty(updated))
}

// Delete handles DELETE /{kind}/:id.
func (h *CounterpartyHandler) Delete(c *gin.Context) {
	cpID, ok := h.ParseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), h.kind, cpID); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, h.kind.Label()+" deleted")
}
