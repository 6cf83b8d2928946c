// Package tx decouples domain services from the storage engine's transactions.
package tx

import (
	"context"
)

// Manager runs a unit of work atomically.
//
// Implementations live in infrastructure/storage (postgres and memory).
type Manager interface {
	// RunInTransaction executes fn within a transaction.
	// If fn returns an error, every write made through ctx is rolled back.
	//
	// Nested calls reuse the existing transaction from context.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
