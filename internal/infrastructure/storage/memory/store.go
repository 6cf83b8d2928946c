// Package memory provides map-backed repositories for development and tests.
//
// Transactions are serialized: a transaction holds the store for its whole
// duration and restores a snapshot when its function fails. Writes made outside
// a transaction wait for the running transaction and are applied immediately.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"invoicing/internal/core/id"
	"invoicing/internal/core/tx"
	"invoicing/internal/domain/catalogs/counterparty"
	"invoicing/internal/domain/documents/invoice"
	"invoicing/internal/domain/registers/stock"
)

var _ tx.Manager = (*Store)(nil)

// Store holds every table in memory.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	st   state
}

type state struct {
	products       map[string]stock.Product
	counterparties map[id.ID]counterparty.Counterparty
	invoices       map[id.ID]invoice.Invoice
	lines          map[id.ID][]invoice.Line
}

// New creates an empty store.
func New() *Store {
	return &Store{st: state{
		products:       make(map[string]stock.Product),
		counterparties: make(map[id.ID]counterparty.Counterparty),
		invoices:       make(map[id.ID]invoice.Invoice),
		lines:          make(map[id.ID][]invoice.Line),
	}}
}

func (s state) clone() state {
	c := state{
		products:       make(map[string]stock.Product, len(s.products)),
		counterparties: make(map[id.ID]counterparty.Counterparty, len(s.counterparties)),
		invoices:       make(map[id.ID]invoice.Invoice, len(s.invoices)),
		lines:          make(map[id.ID][]invoice.Line, len(s.lines)),
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.counterparties {
		c.counterparties[k] = v
	}
	for k, v := range s.invoices {
		c.invoices[k] = v
	}
	for k, v := range s.lines {
		c.lines[k] = append([]invoice.Line(nil), v...)
	}
	return c
}

type txKey struct{}

// RunInTransaction implements tx.Manager.
func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx, _ := ctx.Value(txKey{}).(bool); inTx {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.st.clone()
	s.mu.RUnlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.mu.Lock()
		s.st = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// lock takes the write lock. Outside a transaction it first waits for the
// running one, so a rollback never discards the write.
func (s *Store) lock(ctx context.Context) (unlock func()) {
	if inTx, _ := ctx.Value(txKey{}).(bool); inTx {
		s.mu.Lock()
		return s.mu.Unlock
	}
	s.txMu.Lock()
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		s.txMu.Unlock()
	}
}

func now() time.Time {
	return time.Now().UTC()
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// newestFirst orders by creation time, then by the time-ordered id.
func newestFirst[T any](items []T, created func(T) time.Time, key func(T) id.ID) {
	sort.SliceStable(items, func(i, j int) bool {
		ci, cj := created(items[i]), created(items[j])
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return key(items[i]).String() > key(items[j]).String()
	})
}

func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
