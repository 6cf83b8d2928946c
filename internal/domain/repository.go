// Package domain provides the listing and hook types shared by domain services.
package domain

import (
	"context"
)

// List limits shared by every listing endpoint.
const (
	DefaultListLimit = 100
	MaxListLimit     = 500
)

// ListFilter contains common filtering options for list operations.
type ListFilter struct {
	// Search is a case-insensitive substring matched against searchable fields
	Search string

	// Status filters invoices by status; ignored elsewhere
	Status string

	// Pagination
	Limit  int
	Offset int
}

// Clamp applies the default limit when none is set, caps it at MaxListLimit
// and drops negative offsets.
func (f ListFilter) Clamp(defaultLimit int) ListFilter {
	if f.Limit <= 0 {
		f.Limit = defaultLimit
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// ListResult contains paginated results.
type ListResult[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
	HasMore    bool  `json:"hasMore"`
}

// NewListResult fills pagination fields from the filter that produced items.
func NewListResult[T any](items []T, total int64, f ListFilter) ListResult[T] {
	if items == nil {
		items = []T{}
	}
	return ListResult[T]{
		Items:      items,
		TotalCount: total,
		Limit:      f.Limit,
		Offset:     f.Offset,
		HasMore:    int64(f.Offset+f.Limit) < total,
	}
}

// --- Hooks ---

// HookEvent represents lifecycle event type.
type HookEvent string

const (
	BeforeCreate HookEvent = "before_create"
	AfterCreate  HookEvent = "after_create"
	AfterDelete  HookEvent = "after_delete"
)

// Hook is a function that runs at specific lifecycle points.
type Hook[T any] func(ctx context.Context, entity T) error

// HookRegistry stores lifecycle hooks for an entity type.
type HookRegistry[T any] struct {
	hooks map[HookEvent][]Hook[T]
}

// NewHookRegistry creates an empty hook registry.
func NewHookRegistry[T any]() *HookRegistry[T] {
	return &HookRegistry[T]{
		hooks: make(map[HookEvent][]Hook[T]),
	}
}

// On registers a hook for the specified event.
func (r *HookRegistry[T]) On(event HookEvent, hook Hook[T]) {
	r.hooks[event] = append(r.hooks[event], hook)
}

// Run executes all hooks for the specified event, stopping at the first error.
func (r *HookRegistry[T]) Run(ctx context.Context, event HookEvent, entity T) error {
	for _, hook := range r.hooks[event] {
		if err := hook(ctx, entity); err != nil {
			return err
		}
	}
	return nil
}
