// Package id provides UUIDv7 identifiers for invoices, lines and counterparties.
package id

import (
	"github.com/google/uuid"
)

// ID is the identifier type of every stored entity except products,
// which are keyed by their normalized description.
type ID = uuid.UUID

// New generates a time-ordered UUIDv7.
func New() ID {
	v, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return v
}

// Parse converts string to ID with validation.
func Parse(s string) (ID, error) {
	return uuid.Parse(s)
}

// IsNil checks if ID is zero-value.
func IsNil(v ID) bool {
	return v == uuid.Nil
}
