package reports

import (
	"time"

	"invoicing/internal/core/types"
)

// Period is a half-open date range [From, To).
type Period struct {
	From time.Time
	To   time.Time
}

// MonthOf returns the calendar month containing t, in t's location.
func MonthOf(t time.Time) Period {
	from := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return Period{From: from, To: from.AddDate(0, 1, 0)}
}

// Previous returns the calendar month before p.
func (p Period) Previous() Period {
	return Period{From: p.From.AddDate(0, -1, 0), To: p.From}
}

// Dashboard is the landing page summary.
type Dashboard struct {
	Overview       Overview       `json:"overview"`
	RecentActivity RecentActivity `json:"recentActivity"`
}

// Overview holds counts, all-time totals and month-over-month changes in percent.
type Overview struct {
	TotalSuppliers        int64       `json:"totalSuppliers"`
	TotalClients          int64       `json:"totalClients"`
	TotalPurchaseInvoices int64       `json:"totalPurchaseInvoices"`
	TotalSaleInvoices     int64       `json:"totalSaleInvoices"`
	TotalProducts         int64       `json:"totalProducts"`
	TotalPurchases        types.Money `json:"totalPurchases"`
	TotalSales            types.Money `json:"totalSales"`
	Profit                types.Money `json:"profit"`
	ProfitMargin          types.Money `json:"profitMargin"`
	PurchasesChange       int64       `json:"purchasesChange"`
	SalesChange           int64       `json:"salesChange"`
	ProfitChange          int64       `json:"profitChange"`
}

// RecentActivity lists the latest invoices of each type.
type RecentActivity struct {
	RecentPurchases []RecentInvoice `json:"recentPurchases"`
	RecentSales     []RecentInvoice `json:"recentSales"`
}

// RecentInvoice is a header summary.
type RecentInvoice struct {
	ID               string      `db:"id" json:"id"`
	InvoiceNumber    string      `db:"invoice_number" json:"invoiceNumber"`
	CounterpartyID   string      `db:"counterparty_id" json:"counterpartyId"`
	CounterpartyName string      `db:"counterparty_name" json:"counterpartyName"`
	Total            types.Money `db:"total" json:"total"`
	Date             time.Time   `db:"date" json:"date"`
}
