package stock

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"invoicing/internal/core/apperror"
	"invoicing/internal/core/tx"
	"invoicing/internal/core/types"
	"invoicing/pkg/logger"
)

var tracer = otel.Tracer("invoicing/stock")

// Reconciler applies invoice lifecycle events to the product ledger.
//
// Each call handles one invoice's item list as a single batch: the whole list
// is validated before the first write, and all writes run in one transaction.
// Calling an operation twice for the same invoice event doubles its effect.
type Reconciler struct {
	store Store
	txm   tx.Manager
}

// NewReconciler creates a reconciler over the given store.
func NewReconciler(store Store, txm tx.Manager) *Reconciler {
	return &Reconciler{store: store, txm: txm}
}

// ApplyPurchase adds purchased quantities and folds unit prices into the
// weighted average. Unknown descriptions create new products.
func (r *Reconciler) ApplyPurchase(ctx context.Context, in PurchaseInput) (Outcome, error) {
	return r.run(ctx, "apply_purchase", in.Items, func(ctx context.Context, key string, item Item, p *Product) (*Product, error) {
		if p == nil {
			p = &Product{
				Key:              key,
				Description:      strings.TrimSpace(item.Description),
				TotalQuantity:    item.Quantity,
				AverageUnitPrice: item.UnitPrice,
			}
		} else {
			newQty := p.TotalQuantity.Add(item.Quantity)
			p.AverageUnitPrice = p.AverageUnitPrice.Mul(p.TotalQuantity).
				Add(item.UnitPrice.Mul(item.Quantity)).
				Div(newQty)
			p.TotalQuantity = newQty
		}
		p.LastPurchasePrice = item.UnitPrice
		p.LastPurchaseDate = in.PurchaseDate
		p.SupplierID = in.SupplierID
		p.SupplierName = in.SupplierName
		p.TaxRate = item.TaxRate
		return p, nil
	}, true)
}

// ReversePurchase undoes a purchase: quantity drops (floored at zero) and the
// product is deleted once it reaches zero. The average price is not recomputed.
func (r *Reconciler) ReversePurchase(ctx context.Context, items []Item) (Outcome, error) {
	return r.run(ctx, "reverse_purchase", items, func(ctx context.Context, key string, item Item, p *Product) (*Product, error) {
		p.TotalQuantity = floorZero(p.TotalQuantity.Sub(item.Quantity))
		if p.TotalQuantity.IsZero() {
			return nil, nil
		}
		return p, nil
	}, false)
}

// ApplySale depletes stock, floored at zero. Products are never created or
// deleted by sales; unknown descriptions are ignored.
func (r *Reconciler) ApplySale(ctx context.Context, items []Item) (Outcome, error) {
	return r.run(ctx, "apply_sale", items, func(ctx context.Context, key string, item Item, p *Product) (*Product, error) {
		p.TotalQuantity = floorZero(p.TotalQuantity.Sub(item.Quantity))
		return p, nil
	}, false)
}

// ReverseSale returns sold quantities to stock for products that still exist.
func (r *Reconciler) ReverseSale(ctx context.Context, items []Item) (Outcome, error) {
	return r.run(ctx, "reverse_sale", items, func(ctx context.Context, key string, item Item, p *Product) (*Product, error) {
		p.TotalQuantity = p.TotalQuantity.Add(item.Quantity)
		return p, nil
	}, false)
}

// transition computes the next state of one product for one item.
// p is nil only when creates is set and the product does not exist.
// Returning nil deletes the product.
type transition func(ctx context.Context, key string, item Item, p *Product) (*Product, error)

func (r *Reconciler) run(ctx context.Context, op string, items []Item, next transition, creates bool) (Outcome, error) {
	if err := ValidateItems(items); err != nil {
		return Outcome{}, err
	}
	if len(items) == 0 {
		return Outcome{}, nil
	}

	ctx, span := tracer.Start(ctx, "stock."+op, trace.WithAttributes(
		attribute.Int("stock.items", len(items)),
	))
	defer span.End()

	var out Outcome
	err := r.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		b := newBatch()
		for _, item := range items {
			if err := r.step(ctx, op, item, next, creates, b); err != nil {
				return err
			}
		}
		out = b.outcome()
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return Outcome{}, err
	}

	logger.Info(ctx, "stock reconciled",
		"operation", op,
		"items", len(items),
		"touched", len(out.Products),
		"removed", len(out.Removed),
	)
	return out, nil
}

func (r *Reconciler) step(ctx context.Context, op string, item Item, next transition, creates bool, b *batch) error {
	key := Normalize(item.Description)

	current, err := r.store.FindProduct(ctx, key)
	switch {
	case apperror.IsNotFound(err):
		if !creates {
			logger.Debug(ctx, "product not in ledger, skipped", "operation", op, "key", key)
			return nil
		}
		current = nil
	case err != nil:
		return fmt.Errorf("find product %q: %w", key, err)
	}

	var version int
	var working *Product
	if current != nil {
		version = current.Version
		cp := *current
		working = &cp
	}

	updated, err := next(ctx, key, item, working)
	if err != nil {
		return err
	}

	if updated == nil {
		deleted, err := r.store.DeleteProduct(ctx, key, version)
		if err != nil {
			return fmt.Errorf("delete product %q: %w", key, err)
		}
		if !deleted {
			return apperror.NewConcurrentModification("product", key)
		}
		b.remove(key)
		logger.Debug(ctx, "product removed", "operation", op, "key", key)
		return nil
	}

	saved, err := r.store.PutProduct(ctx, updated)
	if err != nil {
		return fmt.Errorf("put product %q: %w", key, err)
	}
	b.put(*saved)
	logger.Debug(ctx, "product updated",
		"operation", op,
		"key", key,
		"quantity", saved.TotalQuantity.String(),
		"average_price", saved.AverageUnitPrice.String(),
	)
	return nil
}

// ValidateItems checks a whole batch. It returns the first offending line as
// an apperror with code INVALID_INVOICE_ITEM.
func ValidateItems(items []Item) error {
	for i, item := range items {
		lineNo := i + 1
		switch {
		case Normalize(item.Description) == "":
			return apperror.NewInvalidInvoiceItem(lineNo, "description", "description is required")
		case !item.Quantity.IsPositive():
			return apperror.NewInvalidInvoiceItem(lineNo, "quantity", "quantity must be positive")
		case item.UnitPrice.IsNegative():
			return apperror.NewInvalidInvoiceItem(lineNo, "unitPrice", "unit price must not be negative")
		case item.TaxRate.IsNegative() || item.TaxRate.GreaterThan(types.Hundred()):
			return apperror.NewInvalidInvoiceItem(lineNo, "taxRate", "tax rate must be between 0 and 100")
		}
	}
	return nil
}

func floorZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// batch tracks the final state of every key a batch touched.
type batch struct {
	order    []string
	products map[string]Product
	removed  map[string]bool
}

func newBatch() *batch {
	return &batch{products: make(map[string]Product), removed: make(map[string]bool)}
}

func (b *batch) see(key string) {
	if _, ok := b.products[key]; ok || b.removed[key] {
		return
	}
	b.order = append(b.order, key)
}

func (b *batch) put(p Product) {
	b.see(p.Key)
	b.products[p.Key] = p
	delete(b.removed, p.Key)
}

func (b *batch) remove(key string) {
	b.see(key)
	delete(b.products, key)
	b.removed[key] = true
}

func (b *batch) outcome() Outcome {
	var out Outcome
	for _, key := range b.order {
		if p, ok := b.products[key]; ok {
			out.Products = append(out.Products, p)
		} else if b.removed[key] {
			out.Removed = append(out.Removed, key)
		}
	}
	return out
}
