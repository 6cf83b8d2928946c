package invoice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"invoicing/internal/core/apperror"
	"invoicing/internal/core/id"
	"invoicing/internal/core/numerator"
	"invoicing/internal/core/tx"
	"invoicing/internal/domain"
	"invoicing/internal/domain/catalogs/counterparty"
	"invoicing/internal/domain/registers/stock"
	"invoicing/pkg/logger"
)

// DefaultMaxAttempts bounds how often a write is retried after losing an
// optimistic-lock race on a product.
const DefaultMaxAttempts = 3

// CounterpartyGetter resolves the supplier or client of an invoice.
type CounterpartyGetter interface {
	GetByID(ctx context.Context, kind counterparty.Kind, cpID id.ID) (*counterparty.Counterparty, error)
}

// Service provides business operations for purchase and sale invoices.
// Every write that changes items runs together with its ledger effect
// in a single transaction.
type Service struct {
	repo        Repository
	parties     CounterpartyGetter
	reconciler  *stock.Reconciler
	txm         tx.Manager
	numbers     numerator.Generator
	hooks       *domain.HookRegistry[*Invoice]
	maxAttempts int
}

// NewService creates a new invoice service.
func NewService(repo Repository, parties CounterpartyGetter, reconciler *stock.Reconciler, txm tx.Manager) *Service {
	return &Service{
		repo:        repo,
		parties:     parties,
		reconciler:  reconciler,
		txm:         txm,
		hooks:       domain.NewHookRegistry[*Invoice](),
		maxAttempts: DefaultMaxAttempts,
	}
}

// WithNumerator makes Create number invoices submitted without one.
func (s *Service) WithNumerator(g numerator.Generator) *Service {
	s.numbers = g
	return s
}

// Hooks returns the hook registry for registering callbacks.
func (s *Service) Hooks() *domain.HookRegistry[*Invoice] {
	return s.hooks
}

// Create validates, stores and applies a new invoice to the ledger.
// inv.Lines carry description, quantity, unit price and tax rate;
// identifiers and totals are computed here.
func (s *Service) Create(ctx context.Context, inv *Invoice) error {
	if err := s.hooks.Run(ctx, domain.BeforeCreate, inv); err != nil {
		return err
	}

	inv.ApplyDefaults()
	inv.SetLines(inv.Lines)
	if strings.TrimSpace(inv.Number) == "" && s.numbers != nil {
		// Drawn outside the write transaction; a failed create leaves a gap.
		number, err := s.numbers.Next(ctx, numerator.DefaultConfig(inv.Type.NumberPrefix()), inv.Date)
		if err != nil {
			return fmt.Errorf("generate invoice number: %w", err)
		}
		inv.Number = number
	}
	if err := inv.Validate(ctx); err != nil {
		return err
	}

	party, err := s.parties.GetByID(ctx, inv.Type.CounterpartyKind(), inv.CounterpartyID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return apperror.NewValidation(inv.Type.CounterpartyKind().Label()+" does not exist").
				WithDetail("field", counterpartyField(inv.Type)).
				WithDetail("id", inv.CounterpartyID.String())
		}
		return fmt.Errorf("resolve counterparty: %w", err)
	}
	inv.CounterpartyName = party.Name

	err = s.withRetry(ctx, "create", func(ctx context.Context) error {
		if err := s.repo.Create(ctx, inv); err != nil {
			return fmt.Errorf("create invoice: %w", err)
		}
		return s.apply(ctx, inv)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "invoice created",
		"type", inv.Type,
		"id", inv.ID,
		"number", inv.Number,
		"items", len(inv.Lines),
		"total", inv.Total.String(),
	)

	return s.hooks.Run(ctx, domain.AfterCreate, inv)
}

// GetByID retrieves an invoice with its lines.
func (s *Service) GetByID(ctx context.Context, t Type, invID id.ID) (*Invoice, error) {
	return s.repo.GetByID(ctx, t, invID)
}

// List returns invoice headers with pagination.
func (s *Service) List(ctx context.Context, t Type, filter domain.ListFilter) (domain.ListResult[*Invoice], error) {
	filter = filter.Clamp(domain.DefaultListLimit)

	items, total, err := s.repo.List(ctx, t, filter)
	if err != nil {
		return domain.ListResult[*Invoice]{}, fmt.Errorf("list invoices: %w", err)
	}
	return domain.NewListResult(items, total, filter), nil
}

// HeaderPatch holds the header fields to change. Nil fields are left as they are.
type HeaderPatch struct {
	Number        *string
	Date          *time.Time
	DueDate       *time.Time
	Status        *Status
	PaymentMethod *string
	Notes         *string
}

// UpdateHeader changes header fields. It has no ledger effect: products keep
// the last purchase date and supplier recorded when the items were applied.
// Replace the items to re-apply them with new header values.
func (s *Service) UpdateHeader(ctx context.Context, t Type, invID id.ID, patch HeaderPatch) (*Invoice, error) {
	var updated *Invoice
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		inv, err := s.repo.GetByID(ctx, t, invID)
		if err != nil {
			return err
		}

		patch.apply(inv)
		inv.ApplyDefaults()
		if err := inv.Validate(ctx); err != nil {
			return err
		}
		inv.Touch()

		if err := s.repo.UpdateHeader(ctx, inv); err != nil {
			return fmt.Errorf("update invoice: %w", err)
		}
		updated = inv
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "invoice header updated", "type", t, "id", invID)
	return updated, nil
}

func (p HeaderPatch) apply(inv *Invoice) {
	if p.Number != nil {
		inv.Number = *p.Number
	}
	if p.Date != nil {
		inv.Date = *p.Date
	}
	if p.DueDate != nil {
		inv.DueDate = p.DueDate
	}
	if p.Status != nil {
		inv.Status = *p.Status
	}
	if p.PaymentMethod != nil {
		inv.PaymentMethod = *p.PaymentMethod
	}
	if p.Notes != nil {
		inv.Notes = *p.Notes
	}
}

// ReplaceItems swaps the item set of an invoice: the old lines are reversed
// out of the ledger, then the new lines are stored and applied.
func (s *Service) ReplaceItems(ctx context.Context, t Type, invID id.ID, lines []Line) (*Invoice, error) {
	if len(lines) == 0 {
		return nil, apperror.NewValidation("at least one item is required").
			WithDetail("field", "items")
	}
	if err := stock.ValidateItems(LinesToItems(lines)); err != nil {
		return nil, err
	}

	var updated *Invoice
	err := s.withRetry(ctx, "replace_items", func(ctx context.Context) error {
		inv, err := s.repo.GetByID(ctx, t, invID)
		if err != nil {
			return err
		}

		if err := s.reverse(ctx, inv); err != nil {
			return err
		}

		inv.SetLines(lines)
		inv.Touch()
		if err := s.repo.ReplaceLines(ctx, inv); err != nil {
			return fmt.Errorf("replace lines: %w", err)
		}
		if err := s.repo.UpdateHeader(ctx, inv); err != nil {
			return fmt.Errorf("update totals: %w", err)
		}

		if err := s.apply(ctx, inv); err != nil {
			return err
		}
		updated = inv
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "invoice items replaced",
		"type", t,
		"id", invID,
		"items", len(updated.Lines),
		"total", updated.Total.String(),
	)
	return updated, nil
}

// Delete removes an invoice and reverses its ledger effect.
func (s *Service) Delete(ctx context.Context, t Type, invID id.ID) error {
	var deleted *Invoice
	err := s.withRetry(ctx, "delete", func(ctx context.Context) error {
		inv, err := s.repo.GetByID(ctx, t, invID)
		if err != nil {
			return err
		}

		if err := s.reverse(ctx, inv); err != nil {
			return err
		}

		if err := s.repo.Delete(ctx, t, invID); err != nil {
			return fmt.Errorf("delete invoice: %w", err)
		}
		deleted = inv
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "invoice deleted", "type", t, "id", invID, "number", deleted.Number)
	return s.hooks.Run(ctx, domain.AfterDelete, deleted)
}

func (s *Service) apply(ctx context.Context, inv *Invoice) error {
	var err error
	switch inv.Type {
	case TypePurchase:
		_, err = s.reconciler.ApplyPurchase(ctx, stock.PurchaseInput{
			Items:        inv.Items(),
			SupplierID:   inv.CounterpartyID.String(),
			SupplierName: inv.CounterpartyName,
			PurchaseDate: inv.Date,
		})
	case TypeSale:
		_, err = s.reconciler.ApplySale(ctx, inv.Items())
	}
	if err != nil {
		return fmt.Errorf("apply %s to stock: %w", inv.Type, err)
	}
	return nil
}

func (s *Service) reverse(ctx context.Context, inv *Invoice) error {
	var err error
	switch inv.Type {
	case TypePurchase:
		_, err = s.reconciler.ReversePurchase(ctx, inv.Items())
	case TypeSale:
		_, err = s.reconciler.ReverseSale(ctx, inv.Items())
	}
	if err != nil {
		return fmt.Errorf("reverse %s from stock: %w", inv.Type, err)
	}
	return nil
}

// withRetry runs fn in a transaction, starting over when a product update
// lost an optimistic-lock race.
func (s *Service) withRetry(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		err = s.txm.RunInTransaction(ctx, fn)
		if err == nil || !apperror.IsConcurrentModification(err) {
			return err
		}
		logger.Warn(ctx, "invoice write conflicted, retrying",
			"operation", op,
			"attempt", attempt,
			"error", err,
		)
	}
	return err
}
