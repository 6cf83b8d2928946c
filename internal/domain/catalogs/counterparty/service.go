package counterparty

import (
	"context"
	"fmt"

	"invoicing/internal/core/id"
	"invoicing/internal/core/tx"
	"invoicing/internal/domain"
	"invoicing/pkg/logger"
)

// Service provides business operations for suppliers and clients.
type Service struct {
	repo Repository
	txm  tx.Manager
}

// NewService creates a new counterparty service.
func NewService(repo Repository, txm tx.Manager) *Service {
	return &Service{repo: repo, txm: txm}
}

// Create validates and stores a new counterparty.
func (s *Service) Create(ctx context.Context, c *Counterparty) error {
	if err := c.Validate(ctx); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return fmt.Errorf("create %s: %w", c.Kind.Label(), err)
	}

	logger.Info(ctx, "counterparty created", "kind", c.Kind, "id", c.ID, "name", c.Name)
	return nil
}

// GetByID retrieves a counterparty of the given kind.
func (s *Service) GetByID(ctx context.Context, kind Kind, cpID id.ID) (*Counterparty, error) {
	return s.repo.GetByID(ctx, kind, cpID)
}

// UpdateFields replaces the editable fields of an existing counterparty.
func (s *Service) UpdateFields(ctx context.Context, kind Kind, cpID id.ID, apply func(c *Counterparty)) (*Counterparty, error) {
	var updated *Counterparty
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetByID(ctx, kind, cpID)
		if err != nil {
			return err
		}

		apply(current)
		current.Kind = kind
		if err := current.Validate(ctx); err != nil {
			return err
		}
		current.Touch()

		if err := s.repo.Update(ctx, current); err != nil {
			return fmt.Errorf("update %s: %w", kind.Label(), err)
		}
		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "counterparty updated", "kind", kind, "id", cpID)
	return updated, nil
}

// Delete removes a counterparty. Invoices keep their name snapshot.
func (s *Service) Delete(ctx context.Context, kind Kind, cpID id.ID) error {
	if err := s.repo.Delete(ctx, kind, cpID); err != nil {
		return err
	}
	logger.Info(ctx, "counterparty deleted", "kind", kind, "id", cpID)
	return nil
}

// List returns counterparties newest first. Without a limit every row is returned,
// up to domain.MaxListLimit.
func (s *Service) List(ctx context.Context, kind Kind, filter domain.ListFilter) ([]*Counterparty, error) {
	return s.repo.List(ctx, kind, filter.Clamp(domain.MaxListLimit))
}

// Options returns the short list used to pick a counterparty.
func (s *Service) Options(ctx context.Context, kind Kind) ([]Option, error) {
	return s.repo.Options(ctx, kind)
}
