// Package seed loads demo suppliers, clients and invoices.
package seed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"invoicing/internal/app"
	"invoicing/internal/core/apperror"
	"invoicing/internal/core/id"
	"invoicing/internal/core/types"
	"invoicing/internal/domain"
	"invoicing/internal/domain/catalogs/counterparty"
	"invoicing/internal/domain/documents/invoice"
	"invoicing/pkg/logger"
)

type party struct {
	kind    counterparty.Kind
	name    string
	email   string
	phone   string
	address string
	taxID   string
}

var parties = []party{
	{counterparty.KindSupplier, "Northwind Supply", "orders@northwind.test", "+1 555 0100", "12 Harbor Road, Portland", "NW-448812"},
	{counterparty.KindSupplier, "Contoso Hardware", "sales@contoso.test", "+1 555 0101", "800 Mill Street, Denver", "CH-102938"},
	{counterparty.KindClient, "Fabrikam Studio", "billing@fabrikam.test", "+1 555 0200", "4 Market Square, Austin", ""},
	{counterparty.KindClient, "Adatum Cafe", "owner@adatum.test", "+1 555 0201", "77 Elm Avenue, Boston", ""},
}

// Result counts what Demo created.
type Result struct {
	Counterparties int
	Invoices       int
}

// Demo creates the demo counterparties that do not exist yet, matched by name,
// and one purchase and one sale when there are no invoices at all.
// Running it twice creates nothing the second time.
func Demo(ctx context.Context, svc *app.Services, now time.Time) (Result, error) {
	var res Result

	ids := make(map[string]id.ID, len(parties))
	for _, p := range parties {
		existing, err := svc.Counterparties.Options(ctx, p.kind)
		if err != nil {
			return res, fmt.Errorf("list %ss: %w", p.kind.Label(), err)
		}
		if found, ok := findOption(existing, p.name); ok {
			ids[p.name] = found
			continue
		}

		cp := counterparty.New(p.kind, p.name)
		cp.Email, cp.Phone, cp.Address, cp.TaxID = p.email, p.phone, p.address, p.taxID
		if err := svc.Counterparties.Create(ctx, cp); err != nil {
			return res, fmt.Errorf("seed %s %q: %w", p.kind.Label(), p.name, err)
		}
		ids[p.name] = cp.ID
		res.Counterparties++
	}

	for _, t := range []invoice.Type{invoice.TypePurchase, invoice.TypeSale} {
		page, err := svc.Invoices.List(ctx, t, domain.ListFilter{Limit: 1})
		if err != nil {
			return res, err
		}
		if page.TotalCount > 0 {
			logger.Info(ctx, "invoices present, demo invoices skipped", "type", t)
			return res, nil
		}
	}

	day := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	purchase := invoice.New(invoice.TypePurchase)
	purchase.Number = "PUR-0001"
	purchase.CounterpartyID = ids["Northwind Supply"]
	purchase.Date = day
	purchase.Lines = []invoice.Line{
		line("Copy paper A4 (box)", "20", "18.50", "20"),
		line("Ballpoint pens (pack of 10)", "50", "3.20", "20"),
		line("Stapler", "5", "12.00", "20"),
	}

	sale := invoice.New(invoice.TypeSale)
	sale.Number = "SAL-0001"
	sale.CounterpartyID = ids["Fabrikam Studio"]
	sale.Date = day.AddDate(0, 0, 1)
	sale.Lines = []invoice.Line{
		line("Copy paper A4 (box)", "4", "26.00", "20"),
		line("Ballpoint pens (pack of 10)", "10", "5.50", "20"),
	}

	for _, inv := range []*invoice.Invoice{purchase, sale} {
		if err := svc.Invoices.Create(ctx, inv); err != nil {
			if apperror.HasCode(err, apperror.CodeDuplicate) {
				continue
			}
			return res, fmt.Errorf("seed invoice %s: %w", inv.Number, err)
		}
		res.Invoices++
	}

	logger.Info(ctx, "demo data seeded",
		"counterparties", res.Counterparties,
		"invoices", res.Invoices,
	)
	return res, nil
}

func findOption(options []counterparty.Option, name string) (id.ID, bool) {
	for _, o := range options {
		if strings.EqualFold(o.Name, name) {
			parsed, err := id.Parse(o.ID)
			if err == nil {
				return parsed, true
			}
		}
	}
	return id.ID{}, false
}

func line(description, qty, price, tax string) invoice.Line {
	return invoice.Line{
		Description: description,
		Quantity:    types.MustDecimal(qty),
		UnitPrice:   types.MustDecimal(price),
		TaxRate:     types.MustDecimal(tax),
	}
}
