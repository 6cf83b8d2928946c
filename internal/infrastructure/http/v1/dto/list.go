package dto

import (
	"invoicing/internal/domain"
)

// CounterpartyQuery holds the supplier and client listing parameters.
type CounterpartyQuery struct {
	Search string `form:"search"`
	PaginationRequest
}

// ToFilter converts query to a list filter.
func (q CounterpartyQuery) ToFilter() domain.ListFilter {
	return domain.ListFilter{Search: q.Search, Limit: q.Limit, Offset: q.Skip}
}

// InvoiceQuery holds the invoice listing parameters.
type InvoiceQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=draft pending paid overdue cancelled"`
	Search string `form:"search"`
	PaginationRequest
}

// ToFilter converts query to a list filter.
func (q InvoiceQuery) ToFilter() domain.ListFilter {
	return domain.ListFilter{Search: q.Search, Status: q.Status, Limit: q.Limit, Offset: q.Skip}
}
