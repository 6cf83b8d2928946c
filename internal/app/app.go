// Package app assembles the domain services over one storage backend.
package app

import (
	"context"

	"invoicing/internal/core/numerator"
	"invoicing/internal/core/tx"
	"invoicing/internal/domain/catalogs/counterparty"
	"invoicing/internal/domain/documents/invoice"
	"invoicing/internal/domain/registers/stock"
	"invoicing/internal/domain/reports"
	"invoicing/internal/infrastructure/storage/memory"
	"invoicing/internal/infrastructure/storage/postgres"
	"invoicing/internal/infrastructure/storage/postgres/catalog_repo"
	"invoicing/internal/infrastructure/storage/postgres/document_repo"
	"invoicing/internal/infrastructure/storage/postgres/register_repo"
	"invoicing/internal/infrastructure/storage/postgres/report_repo"
	pkgnumerator "invoicing/pkg/numerator"
)

// ProductRepository is the full product ledger surface of a backend.
type ProductRepository interface {
	stock.Store
	stock.CatalogReader
	stock.HistoryReader
}

// ReportRepository adds table counts to the dashboard queries.
type ReportRepository interface {
	reports.Repository
	TableCounts(ctx context.Context) (map[string]int64, error)
}

// Repositories is one storage backend.
type Repositories struct {
	Name           string
	TxManager      tx.Manager
	Counterparties counterparty.Repository
	Invoices       invoice.Repository
	Products       ProductRepository
	Reports        ReportRepository
	Numbers        numerator.Generator

	// Ready reports whether the backend can serve requests.
	Ready func(ctx context.Context) error
}

// MemoryRepositories backs every repository with one in-memory store.
func MemoryRepositories(s *memory.Store) Repositories {
	return Repositories{
		Name:           "memory",
		TxManager:      s,
		Counterparties: memory.NewCounterpartyRepo(s),
		Invoices:       memory.NewInvoiceRepo(s),
		Products:       memory.NewProductRepo(s),
		Reports:        memory.NewReportRepo(s),
		Numbers:        pkgnumerator.NewMemory(),
		Ready:          func(context.Context) error { return nil },
	}
}

// PostgresRepositories backs every repository with the pool.
func PostgresRepositories(pool *postgres.Pool) Repositories {
	txm := postgres.NewTxManager(pool)
	numbers := pkgnumerator.NewFromContext(func(ctx context.Context) pkgnumerator.Querier {
		return txm.GetQuerier(ctx)
	}, nil)
	return Repositories{
		Name:           "postgres",
		TxManager:      txm,
		Counterparties: catalog_repo.NewCounterpartyRepo(txm),
		Invoices:       document_repo.NewInvoiceRepo(txm),
		Products:       register_repo.NewProductRepo(txm),
		Reports:        report_repo.NewReportRepo(txm),
		Numbers:        numbers,
		Ready:          pool.Ready,
	}
}

// Services holds the domain services the API calls.
type Services struct {
	Counterparties *counterparty.Service
	Invoices       *invoice.Service
	Reconciler     *stock.Reconciler
	Catalog        *stock.CatalogService
	Reports        *reports.Service
}

// NewServices wires the services over repos.
func NewServices(repos Repositories) *Services {
	parties := counterparty.NewService(repos.Counterparties, repos.TxManager)
	reconciler := stock.NewReconciler(repos.Products, repos.TxManager)
	invoices := invoice.NewService(repos.Invoices, parties, reconciler, repos.TxManager)
	if repos.Numbers != nil {
		invoices.WithNumerator(repos.Numbers)
	}
	return &Services{
		Counterparties: parties,
		Invoices:       invoices,
		Reconciler:     reconciler,
		Catalog:        stock.NewCatalogService(repos.Products, repos.Products),
		Reports:        reports.NewService(repos.Reports),
	}
}
