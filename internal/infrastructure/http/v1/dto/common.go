// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"invoicing/internal/domain"
)

// --- Envelope ---

// Response wraps every successful payload.
type Response struct {
	Success    bool        `json:"success"`
	Data       any         `json:"data,omitempty"`
	Message    string      `json:"message,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// OK wraps data in a success envelope.
func OK(data any) Response {
	return Response{Success: true, Data: data}
}

// Message is a success envelope without data.
func Message(msg string) Response {
	return Response{Success: true, Message: msg}
}

// --- Pagination ---

// PaginationRequest contains limit/skip query parameters.
type PaginationRequest struct {
	Limit int `form:"limit" binding:"omitempty,min=0"`
	Skip  int `form:"skip" binding:"omitempty,min=0"`
}

// Pagination describes one page of a listing.
type Pagination struct {
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
	Skip    int   `json:"skip"`
	HasMore bool  `json:"hasMore"`
}

// NewPagination creates pagination metadata from a list result.
func NewPagination[T any](r domain.ListResult[T]) *Pagination {
	return &Pagination{
		Total:   r.TotalCount,
		Limit:   r.Limit,
		Skip:    r.Offset,
		HasMore: r.HasMore,
	}
}

// --- Error Response ---

// ErrorResponse for error details.
type ErrorResponse struct {
	Success bool           `json:"success"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// --- Dates ---

// Date accepts either a calendar date ("2024-05-01") or an RFC 3339 timestamp.
// Calendar dates are read as UTC midnight.
type Date struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339Nano} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("invalid date %q", s)
}

// Ptr returns nil for an unset date.
func (d *Date) Ptr() *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}

// --- References ---

// Ref is a counterparty reference sent either as a bare id string or as an
// object with an "id" field.
type Ref struct {
	ID   string
	Name string
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Ref) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		return nil
	case len(data) > 0 && data[0] == '"':
		return json.Unmarshal(data, &r.ID)
	default:
		var obj struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return fmt.Errorf("reference must be an id or an object: %w", err)
		}
		r.ID, r.Name = obj.ID, obj.Name
		return nil
	}
}

// PartySummary is the embedded supplier or client of an invoice.
type PartySummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
