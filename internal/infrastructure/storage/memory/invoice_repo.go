package memory

import (
	"context"
	"sort"
	"time"

	"invoicing/internal/core/apperror"
	"invoicing/internal/core/id"
	"invoicing/internal/domain"
	"invoicing/internal/domain/documents/invoice"
)

var _ invoice.Repository = (*InvoiceRepo)(nil)

// InvoiceRepo implements invoice.Repository.
type InvoiceRepo struct {
	s *Store
}

// NewInvoiceRepo creates an invoice repository over s.
func NewInvoiceRepo(s *Store) *InvoiceRepo {
	return &InvoiceRepo{s: s}
}

func (r *InvoiceRepo) Create(ctx context.Context, inv *invoice.Invoice) error {
	defer r.s.lock(ctx)()

	if _, ok := r.s.st.invoices[inv.ID]; ok {
		return apperror.NewDuplicate("invoice", "id", inv.ID.String())
	}
	if err := r.checkNumber(inv); err != nil {
		return err
	}

	header := *inv
	header.Lines = nil
	r.s.st.invoices[inv.ID] = header
	r.s.st.lines[inv.ID] = append([]invoice.Line(nil), inv.Lines...)
	return nil
}

// checkNumber enforces unique numbers per invoice type. Caller holds the lock.
func (r *InvoiceRepo) checkNumber(inv *invoice.Invoice) error {
	for _, other := range r.s.st.invoices {
		if other.ID != inv.ID && other.Type == inv.Type && other.Number == inv.Number {
			return apperror.NewDuplicate("invoice", "invoiceNumber", inv.Number)
		}
	}
	return nil
}

func (r *InvoiceRepo) GetByID(ctx context.Context, t invoice.Type, invID id.ID) (*invoice.Invoice, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	header, ok := r.s.st.invoices[invID]
	if !ok || header.Type != t {
		return nil, apperror.NewNotFound(string(t)+" invoice", invID.String())
	}

	lines := append([]invoice.Line(nil), r.s.st.lines[invID]...)
	sort.Slice(lines, func(i, j int) bool { return lines[i].LineNo < lines[j].LineNo })
	header.Lines = lines
	return &header, nil
}

func (r *InvoiceRepo) UpdateHeader(ctx context.Context, inv *invoice.Invoice) error {
	defer r.s.lock(ctx)()

	existing, ok := r.s.st.invoices[inv.ID]
	if !ok || existing.Type != inv.Type {
		return apperror.NewNotFound(string(inv.Type)+" invoice", inv.ID.String())
	}
	if existing.Version != inv.Version {
		return apperror.NewConcurrentModification("invoice", inv.ID.String())
	}
	if err := r.checkNumber(inv); err != nil {
		return err
	}

	inv.Version++
	header := *inv
	header.Lines = nil
	r.s.st.invoices[inv.ID] = header
	return nil
}

func (r *InvoiceRepo) ReplaceLines(ctx context.Context, inv *invoice.Invoice) error {
	defer r.s.lock(ctx)()

	if _, ok := r.s.st.invoices[inv.ID]; !ok {
		return apperror.NewNotFound(string(inv.Type)+" invoice", inv.ID.String())
	}
	r.s.st.lines[inv.ID] = append([]invoice.Line(nil), inv.Lines...)
	return nil
}

func (r *InvoiceRepo) Delete(ctx context.Context, t invoice.Type, invID id.ID) error {
	defer r.s.lock(ctx)()

	header, ok := r.s.st.invoices[invID]
	if !ok || header.Type != t {
		return apperror.NewNotFound(string(t)+" invoice", invID.String())
	}
	delete(r.s.st.invoices, invID)
	delete(r.s.st.lines, invID)
	return nil
}

func (r *InvoiceRepo) List(ctx context.Context, t invoice.Type, filter domain.ListFilter) ([]*invoice.Invoice, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched := make([]invoice.Invoice, 0)
	for _, inv := range r.s.st.invoices {
		if inv.Type != t {
			continue
		}
		if filter.Status != "" && string(inv.Status) != filter.Status {
			continue
		}
		if filter.Search != "" && !containsFold(inv.Number, filter.Search) && !containsFold(inv.CounterpartyName, filter.Search) {
			continue
		}
		matched = append(matched, inv)
	}
	newestFirst(matched,
		func(inv invoice.Invoice) time.Time { return inv.CreatedAt },
		func(inv invoice.Invoice) id.ID { return inv.ID },
	)

	out := make([]*invoice.Invoice, 0, filter.Limit)
	for _, inv := range page(matched, filter.Offset, filter.Limit) {
		out = append(out, &inv)
	}
	return out, int64(len(matched)), nil
}
