package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"invoicing/internal/core/apperror"
	"invoicing/internal/core/id"
	"invoicing/internal/domain"
	"invoicing/internal/domain/catalogs/counterparty"
)

var _ counterparty.Repository = (*CounterpartyRepo)(nil)

// CounterpartyRepo implements counterparty.Repository.
type CounterpartyRepo struct {
	s *Store
}

// NewCounterpartyRepo creates a counterparty repository over s.
func NewCounterpartyRepo(s *Store) *CounterpartyRepo {
	return &CounterpartyRepo{s: s}
}

func (r *CounterpartyRepo) Create(ctx context.Context, c *counterparty.Counterparty) error {
	defer r.s.lock(ctx)()

	if _, ok := r.s.st.counterparties[c.ID]; ok {
		return apperror.NewDuplicate(c.Kind.Label(), "id", c.ID.String())
	}
	r.s.st.counterparties[c.ID] = *c
	return nil
}

func (r *CounterpartyRepo) GetByID(ctx context.Context, kind counterparty.Kind, cpID id.ID) (*counterparty.Counterparty, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.st.counterparties[cpID]
	if !ok || c.Kind != kind {
		return nil, apperror.NewNotFound(kind.Label(), cpID.String())
	}
	return &c, nil
}

func (r *CounterpartyRepo) Update(ctx context.Context, c *counterparty.Counterparty) error {
	defer r.s.lock(ctx)()

	existing, ok := r.s.st.counterparties[c.ID]
	if !ok || existing.Kind != c.Kind {
		return apperror.NewNotFound(c.Kind.Label(), c.ID.String())
	}
	if existing.Version != c.Version {
		return apperror.NewConcurrentModification(c.Kind.Label(), c.ID.String())
	}

	c.Version++
	r.s.st.counterparties[c.ID] = *c
	return nil
}

func (r *CounterpartyRepo) Delete(ctx context.Context, kind counterparty.Kind, cpID id.ID) error {
	defer r.s.lock(ctx)()

	c, ok := r.s.st.counterparties[cpID]
	if !ok || c.Kind != kind {
		return apperror.NewNotFound(kind.Label(), cpID.String())
	}
	delete(r.s.st.counterparties, cpID)
	return nil
}

func (r *CounterpartyRepo) List(ctx context.Context, kind counterparty.Kind, filter domain.ListFilter) ([]*counterparty.Counterparty, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched := make([]counterparty.Counterparty, 0)
	for _, c := range r.s.st.counterparties {
		if c.Kind != kind {
			continue
		}
		if filter.Search != "" && !containsFold(c.Name, filter.Search) && !containsFold(c.Email, filter.Search) {
			continue
		}
		matched = append(matched, c)
	}
	newestFirst(matched,
		func(c counterparty.Counterparty) time.Time { return c.CreatedAt },
		func(c counterparty.Counterparty) id.ID { return c.ID },
	)

	out := make([]*counterparty.Counterparty, 0, len(matched))
	for _, c := range page(matched, filter.Offset, filter.Limit) {
		out = append(out, &c)
	}
	return out, nil
}

func (r *CounterpartyRepo) Options(ctx context.Context, kind counterparty.Kind) ([]counterparty.Option, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]counterparty.Option, 0)
	for _, c := range r.s.st.counterparties {
		if c.Kind == kind {
			out = append(out, counterparty.Option{ID: c.ID.String(), Name: c.Name, Email: c.Email})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}
