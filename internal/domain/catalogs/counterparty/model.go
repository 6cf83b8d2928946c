// Package counterparty provides suppliers and clients.
package counterparty

import (
	"context"
	"strings"

	"invoicing/internal/core/entity"
	"invoicing/internal/core/validation"
)

// Kind tells suppliers from clients.
type Kind string

const (
	KindSupplier Kind = "supplier"
	KindClient   Kind = "client"
)

// Counterparty is a supplier or a client.
type Counterparty struct {
	entity.BaseEntity

	Kind    Kind   `db:"kind" json:"kind" validate:"oneof=supplier client"`
	Name    string `db:"name" json:"name" validate:"required,max=200"`
	Email   string `db:"email" json:"email" validate:"omitempty,email,max=200"`
	Phone   string `db:"phone" json:"phone" validate:"max=50"`
	Address string `db:"address" json:"address" validate:"max=500"`
	TaxID   string `db:"tax_id" json:"taxId" validate:"max=50"`
}

// New creates a counterparty of the given kind.
func New(kind Kind, name string) *Counterparty {
	return &Counterparty{
		BaseEntity: entity.NewBaseEntity(),
		Kind:       kind,
		Name:       name,
	}
}

// Option is the short form used by invoice forms.
type Option struct {
	ID    string `db:"id" json:"id"`
	Name  string `db:"name" json:"name"`
	Email string `db:"email" json:"email"`
}

// Validate implements entity.Validatable interface.
func (c *Counterparty) Validate(ctx context.Context) error {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	return validation.Struct(c)
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindSupplier || k == KindClient
}

// Label names the kind in errors and logs.
func (k Kind) Label() string {
	if k == KindClient {
		return "client"
	}
	return "supplier"
}
