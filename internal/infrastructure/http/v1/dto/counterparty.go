package dto

import (
	"time"

	"invoicing/internal/domain/catalogs/counterparty"
)

// --- Request DTOs ---

// CounterpartyRequest is the request body for creating or replacing a supplier or client.
type CounterpartyRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	TaxID   string `json:"taxId"`
}

// ToEntity converts DTO to domain entity.
func (r *CounterpartyRequest) ToEntity(kind counterparty.Kind) *counterparty.Counterparty {
	cp := counterparty.New(kind, r.Name)
	r.ApplyTo(cp)
	return cp
}

// ApplyTo applies the request to an existing entity.
func (r *CounterpartyRequest) ApplyTo(cp *counterparty.Counterparty) {
	cp.Name = r.Name
	cp.Email = r.Email
	cp.Phone = r.Phone
	cp.Address = r.Address
	cp.TaxID = r.TaxID
}

// --- Response DTOs ---

// CounterpartyResponse is the response for a supplier or client.
type CounterpartyResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	TaxID     string    `json:"taxId"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FromCounterparty converts domain entity to response DTO.
func FromCounterparty(cp *counterparty.Counterparty) CounterpartyResponse {
	return CounterpartyResponse{
		ID:        cp.ID.String(),
		Name:      cp.Name,
		Email:     cp.Email,
		Phone:     cp.Phone,
		Address:   cp.Address,
		TaxID:     cp.TaxID,
		Version:   cp.Version,
		CreatedAt: cp.CreatedAt,
		UpdatedAt: cp.UpdatedAt,
	}
}

// FromCounterparties converts a list, never returning nil.
func FromCounterparties(items []*counterparty.Counterparty) []CounterpartyResponse {
	out := make([]CounterpartyResponse, len(items))
	for i, cp := range items {
		out[i] = FromCounterparty(cp)
	}
	return out
}
