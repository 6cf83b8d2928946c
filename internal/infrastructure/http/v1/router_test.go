package v1_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicing/internal/app"
	v1 "invoicing/internal/infrastructure/http/v1"
	"invoicing/internal/infrastructure/http/v1/dto"
	"invoicing/internal/infrastructure/storage/memory"
)

type envelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Pagination *dto.Pagination `json:"pagination"`
	Code       string          `json:"code"`
	Details    map[string]any  `json:"details"`
}

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	repos := app.MemoryRepositories(memory.New())
	return v1.NewRouter(v1.RouterConfig{
		Services: app.NewServices(repos),
		Ready:    repos.Ready,
		Tables:   repos.Reports,
		Version:  "test",
		Storage:  repos.Name,
	})
}

func do(t *testing.T, r http.Handler, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func data[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v), string(env.Data))
	return v
}

func createSupplier(t *testing.T, r http.Handler, name string) string {
	t.Helper()
	w, env := do(t, r, http.MethodPost, "/api/suppliers", map[string]any{"name": name, "email": "orders@acme.test"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return data[dto.CounterpartyResponse](t, env).ID
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

func purchaseBody(supplierID, number string, items ...map[string]any) map[string]any {
	return map[string]any{
		"invoiceNumber": number,
		"supplierId":    supplierID,
		"date":          "2024-05-01",
		"items":         items,
	}
}

func TestHealth(t *testing.T) {
	r := newRouter(t)

	w, env := do(t, r, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w, _ = do(t, r, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPurchaseLifecycle(t *testing.T) {
	r := newRouter(t)
	supplierID := createSupplier(t, r, "Acme Supply")

	w, env := do(t, r, http.MethodPost, "/api/invoices/purchases", purchaseBody(supplierID, "P-001",
		map[string]any{"description": "Widget", "quantity": 10, "unitPrice": 5, "taxRate": 20},
	))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := data[dto.InvoiceResponse](t, env)
	assert.Equal(t, "pending", created.Status)
	assert.Equal(t, "Acme Supply", created.Supplier.Name)
	assertDecimal(t, "50", created.Subtotal)
	assertDecimal(t, "10", created.TaxAmount)
	assertDecimal(t, "60", created.Total)
	require.Len(t, created.Items, 1)

	_, env = do(t, r, http.MethodGet, "/api/products", nil)
	products := data[[]dto.ProductResponse](t, env)
	require.Len(t, products, 1)
	assert.Equal(t, "Widget", products[0].Description)
	assertDecimal(t, "10", products[0].TotalQuantity)
	require.Len(t, products[0].PurchaseHistory, 1)
	assert.Equal(t, "P-001", products[0].PurchaseHistory[0].InvoiceNumber)

	w, env = do(t, r, http.MethodGet, "/api/invoices/purchases?limit=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, int64(1), env.Pagination.Total)
	assert.False(t, env.Pagination.HasMore)

	w, env = do(t, r, http.MethodDelete, "/api/invoices/purchases/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, env.Success)

	_, env = do(t, r, http.MethodGet, "/api/products", nil)
	assert.Empty(t, data[[]dto.ProductResponse](t, env))
}

func TestCreatePurchase_InvalidItem(t *testing.T) {
	r := newRouter(t)
	supplierID := createSupplier(t, r, "Acme Supply")

	w, env := do(t, r, http.MethodPost, "/api/invoices/purchases", purchaseBody(supplierID, "P-001",
		map[string]any{"description": "Widget", "quantity": 10, "unitPrice": 5, "taxRate": 20},
		map[string]any{"description": "Bolt", "quantity": 0, "unitPrice": 1, "taxRate": 0},
	))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "INVALID_INVOICE_ITEM", env.Code)
	assert.EqualValues(t, 2, env.Details["lineNo"])
	assert.Equal(t, "quantity", env.Details["field"])

	_, env = do(t, r, http.MethodGet, "/api/products", nil)
	assert.Empty(t, data[[]dto.ProductResponse](t, env))

	_, env = do(t, r, http.MethodGet, "/api/invoices/purchases", nil)
	assert.Equal(t, int64(0), env.Pagination.Total)
}

func TestSale_ClientReferenceAndDepletion(t *testing.T) {
	r := newRouter(t)
	supplierID := createSupplier(t, r, "Acme Supply")
	w, _ := do(t, r, http.MethodPost, "/api/invoices/purchases", purchaseBody(supplierID, "P-001",
		map[string]any{"description": "Widget", "quantity": 10, "unitPrice": 5, "taxRate": 0},
	))
	require.Equal(t, http.StatusCreated, w.Code)

	w, env := do(t, r, http.MethodPost, "/api/clients", map[string]any{"name": "Jane Buyer"})
	require.Equal(t, http.StatusCreated, w.Code)
	client := data[dto.CounterpartyResponse](t, env)

	w, env = do(t, r, http.MethodPost, "/api/invoices/sales", map[string]any{
		"invoiceNumber": "S-001",
		"client":        map[string]any{"id": client.ID, "name": client.Name},
		"date":          "2024-05-02T10:00:00Z",
		"items": []map[string]any{
			{"description": " widget ", "quantity": 4, "unitPrice": 9, "taxRate": 0},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	sale := data[dto.InvoiceResponse](t, env)
	assert.Equal(t, "paid", sale.Status)
	assert.Equal(t, "cash", sale.PaymentMethod)
	assert.Equal(t, client.ID, sale.ClientID)

	_, env = do(t, r, http.MethodGet, "/api/products", nil)
	products := data[[]dto.ProductResponse](t, env)
	require.Len(t, products, 1)
	assertDecimal(t, "6", products[0].TotalQuantity)
}

func TestInvoice_ReplaceItemsAndPatch(t *testing.T) {
	r := newRouter(t)
	supplierID := createSupplier(t, r, "Acme Supply")
	_, env := do(t, r, http.MethodPost, "/api/invoices/purchases", purchaseBody(supplierID, "P-001",
		map[string]any{"description": "Widget", "quantity": 10, "unitPrice": 5, "taxRate": 0},
	))
	inv := data[dto.InvoiceResponse](t, env)

	w, env := do(t, r, http.MethodPut, "/api/invoices/purchases/"+inv.ID+"/items", map[string]any{
		"items": []map[string]any{{"description": "Gadget", "quantity": 2, "unitPrice": 3, "taxRate": 10}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assertDecimal(t, "6.6", data[dto.InvoiceResponse](t, env).Total)

	_, env = do(t, r, http.MethodGet, "/api/products", nil)
	products := data[[]dto.ProductResponse](t, env)
	require.Len(t, products, 1)
	assert.Equal(t, "Gadget", products[0].Description)

	w, env = do(t, r, http.MethodPatch, "/api/invoices/purchases/"+inv.ID, map[string]any{"status": "paid"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	patched := data[dto.InvoiceResponse](t, env)
	assert.Equal(t, "paid", patched.Status)
	assert.Equal(t, "P-001", patched.InvoiceNumber)
}

func TestCreatePurchase_GeneratesNumber(t *testing.T) {
	r := newRouter(t)
	supplierID := createSupplier(t, r, "Acme Supply")
	item := map[string]any{"description": "Widget", "quantity": 1, "unitPrice": 2, "taxRate": 0}

	for _, want := range []string{"PUR-2024-00001", "PUR-2024-00002"} {
		w, env := do(t, r, http.MethodPost, "/api/invoices/purchases", purchaseBody(supplierID, "", item))
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.Equal(t, want, data[dto.InvoiceResponse](t, env).InvoiceNumber)
	}
}

func TestInvoice_NotFoundAndBadID(t *testing.T) {
	r := newRouter(t)

	w, env := do(t, r, http.MethodGet, "/api/invoices/sales/0190a4d2-7c1e-7a3b-9f00-000000000000", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "NOT_FOUND", env.Code)

	w, env = do(t, r, http.MethodDelete, "/api/invoices/sales/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Code)
}

func TestCounterparties(t *testing.T) {
	r := newRouter(t)

	w, env := do(t, r, http.MethodPost, "/api/suppliers", map[string]any{"name": "Bad", "email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Code)

	id := createSupplier(t, r, "Zeta Parts")
	createSupplier(t, r, "Alpha Tools")

	_, env = do(t, r, http.MethodGet, "/api/suppliers/list", nil)
	options := data[[]map[string]string](t, env)
	require.Len(t, options, 2)
	assert.Equal(t, "Alpha Tools", options[0]["name"])

	w, env = do(t, r, http.MethodPut, "/api/suppliers/"+id, map[string]any{"name": "Zeta Parts Ltd", "phone": "555"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Zeta Parts Ltd", data[dto.CounterpartyResponse](t, env).Name)

	_, env = do(t, r, http.MethodGet, "/api/suppliers?search=zeta", nil)
	assert.Len(t, data[[]dto.CounterpartyResponse](t, env), 1)

	w, _ = do(t, r, http.MethodGet, "/api/clients/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = do(t, r, http.MethodDelete, "/api/suppliers/"+id, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	_, env = do(t, r, http.MethodGet, "/api/check-tables", nil)
	tables := data[map[string]map[string]int64](t, env)
	assert.Equal(t, int64(1), tables["suppliers"]["count"])
	assert.Equal(t, int64(0), tables["clients"]["count"])
}

func TestDashboardStats(t *testing.T) {
	r := newRouter(t)

	w, env := do(t, r, http.MethodGet, "/api/dashboard/stats", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	stats := data[map[string]any](t, env)
	assert.Contains(t, stats, "overview")
	assert.Contains(t, stats, "recentActivity")
}

func TestRecovery(t *testing.T) {
	r := newRouter(t)
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w, env := do(t, r, http.MethodGet, "/boom", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "INTERNAL_ERROR", env.Code)
	assert.NotEmpty(t, env.Details["request_id"])
}
