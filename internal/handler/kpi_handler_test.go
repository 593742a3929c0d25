package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"supplier-kpi-service/internal/dashboard"
	"supplier-kpi-service/internal/model"
	"supplier-kpi-service/internal/store"
	"supplier-kpi-service/pkg/config"

	"github.com/labstack/echo/v4"
)

type memStore struct {
	data store.Dataset
	err  error
}

func (m *memStore) GetSuppliers(ctx context.Context) ([]model.Supplier, error) {
	return m.data.Suppliers, m.err
}

func (m *memStore) GetInvoices(ctx context.Context, f store.InvoiceFilter) ([]model.Invoice, error) {
	allowed := map[string]bool{}
	for _, id := range f.SupplierIDs {
		allowed[id] = true
	}
	out := []model.Invoice{}
	for _, inv := range m.data.Invoices {
		if (f.StartDate == "" || inv.InvoiceDate >= f.StartDate) &&
			(f.EndDate == "" || inv.InvoiceDate <= f.EndDate) &&
			(len(allowed) == 0 || allowed[inv.SupplierID]) {
			out = append(out, inv)
		}
	}
	return out, m.err
}

func (m *memStore) GetOutstanding(ctx context.Context, ids []string) ([]model.Outstanding, error) {
	allowed := map[string]bool{}
	for _, id := range ids {
		allowed[id] = true
	}
	out := []model.Outstanding{}
	for _, o := range m.data.Outstanding {
		if len(allowed) == 0 || allowed[o.SupplierID] {
			out = append(out, o)
		}
	}
	return out, m.err
}

func (m *memStore) GetDateRange(ctx context.Context) (store.DateRange, error) {
	return store.DateRange{MinDate: "2025-01-05", MaxDate: "2025-03-02"}, m.err
}

func testData() store.Dataset {
	return store.Dataset{
		Suppliers: []model.Supplier{
			{SupplierID: "SUP001", SupplierName: "Acme Metals", Country: "USA", Category: "Raw Materials"},
			{SupplierID: "SUP002", SupplierName: "Boxly", Country: "India", Category: "Packaging"},
			{SupplierID: "SUP003", SupplierName: "Circuitry", Country: "Japan", Category: "Electronics"},
		},
		Invoices: []model.Invoice{
			{InvoiceID: "INV001", SupplierID: "SUP001", InvoiceDate: "2025-01-05", DeliveryDelayDays: -2, IsAccurate: true, PaymentDays: 28, InvoiceAmount: 1000},
			{InvoiceID: "INV002", SupplierID: "SUP001", InvoiceDate: "2025-01-15", DeliveryDelayDays: 0, IsAccurate: true, PaymentDays: 32, InvoiceAmount: 2000},
			{InvoiceID: "INV003", SupplierID: "SUP002", InvoiceDate: "2025-02-11", DeliveryDelayDays: 3, IsRejected: true, PaymentDays: 35, InvoiceAmount: 1500},
			{InvoiceID: "INV004", SupplierID: "SUP002", InvoiceDate: "2025-02-20", DeliveryDelayDays: -1, IsAccurate: true, PaymentDays: 30, InvoiceAmount: 500},
			{InvoiceID: "INV005", SupplierID: "SUP003", InvoiceDate: "2025-03-02", DeliveryDelayDays: 5, IsAccurate: true, PaymentDays: 40, InvoiceAmount: 750},
		},
		Outstanding: []model.Outstanding{
			{SupplierID: "SUP001", OutstandingAmount: 5000},
			{SupplierID: "SUP002", OutstandingAmount: 10000},
			{SupplierID: "SUP003", OutstandingAmount: 7500},
		},
	}
}

func newServer(s store.Store) *echo.Echo {
	svc := dashboard.NewService(s, config.KPIConfig{TopN: 10, HistogramBins: 30, DrillDownLimit: 20})
	h := NewKPIHandler(svc)
	h.now = func() time.Time { return time.Date(2025, 3, 7, 9, 0, 0, 0, time.UTC) }

	e := echo.New()
	e.GET("/health", h.Health)
	h.Register(e.Group("/api"))
	return e
}

func get(t *testing.T, e *echo.Echo, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("invalid JSON %q: %v", rec.Body.String(), err)
	}
}

func TestHealth(t *testing.T) {
	rec := get(t, newServer(&memStore{data: testData()}), "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("health = %d %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Status    string          `json:"status"`
		Suppliers int             `json:"suppliers"`
		DateRange store.DateRange `json:"date_range"`
	}
	decode(t, rec, &body)
	if body.Status != "success" || body.Suppliers != 3 || body.DateRange.MinDate != "2025-01-05" || body.DateRange.MaxDate != "2025-03-02" {
		t.Errorf("health body = %+v", body)
	}

	rec = get(t, newServer(&memStore{data: testData(), err: errors.New("db down")}), "/health")
	if rec.Code != http.StatusServiceUnavailable || !strings.Contains(rec.Body.String(), "unavailable") {
		t.Errorf("failing store health = %d %s", rec.Code, rec.Body.String())
	}
}

func TestOverall(t *testing.T) {
	rec := get(t, newServer(&memStore{data: testData()}), "/api/kpis/overall")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		KPIs     map[string]float64 `json:"kpis"`
		Invoices int                `json:"invoices"`
	}
	decode(t, rec, &body)
	if body.Invoices != 5 {
		t.Errorf("invoices = %d", body.Invoices)
	}
	want := map[string]float64{
		"on_time_delivery":  60,
		"invoice_accuracy":  80,
		"rejection_rate":    20,
		"avg_payment_days":  33,
		"avg_outstanding":   7500,
		"total_outstanding": 22500,
	}
	for k, v := range want {
		if body.KPIs[k] != v {
			t.Errorf("%s = %v, want %v", k, body.KPIs[k], v)
		}
	}
}

func TestOverallWithFilters(t *testing.T) {
	e := newServer(&memStore{data: testData()})

	rec := get(t, e, "/api/kpis/overall?supplier=Boxly&start_date=2025-02-15")
	var body struct {
		KPIs     map[string]float64 `json:"kpis"`
		Invoices int                `json:"invoices"`
	}
	decode(t, rec, &body)
	if body.Invoices != 1 || body.KPIs["on_time_delivery"] != 100 || body.KPIs["total_outstanding"] != 10000 {
		t.Errorf("filtered overall = %+v", body)
	}

	rec = get(t, e, "/api/kpis/overall?supplier=Acme+Metals&category=Packaging")
	decode(t, rec, &body)
	if body.Invoices != 0 || body.KPIs["total_outstanding"] != 0 {
		t.Errorf("empty intersection must yield empty results, got %+v", body)
	}
}

func TestSupplierBreakdownSorted(t *testing.T) {
	rec := get(t, newServer(&memStore{data: testData()}), "/api/kpis/suppliers?sort=total_amount&order=desc")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Suppliers []struct {
			SupplierID  string  `json:"supplier_id"`
			TotalAmount float64 `json:"total_amount"`
		} `json:"suppliers"`
		Count int `json:"count"`
	}
	decode(t, rec, &body)
	if body.Count != 3 || body.Suppliers[0].SupplierID != "SUP001" || body.Suppliers[2].SupplierID != "SUP003" {
		t.Errorf("sorted breakdown = %+v", body)
	}
}

func TestBadRequests(t *testing.T) {
	e := newServer(&memStore{data: testData()})

	for _, target := range []string{
		"/api/kpis/overall?start_date=01-01-2025",
		"/api/kpis/overall?start_date=2025-03-01&end_date=2025-01-01",
		"/api/kpis/suppliers?sort=colour",
		"/api/kpis/suppliers?order=sideways",
		"/api/kpis/top?metric=supplier_name",
		"/api/kpis/top?limit=0",
		"/api/kpis/payment-days?bins=abc",
	} {
		rec := get(t, e, target)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"error"`) {
			t.Errorf("%s: body = %s", target, rec.Body.String())
		}
	}
}

func TestSupplierDetail(t *testing.T) {
	e := newServer(&memStore{data: testData()})

	rec := get(t, e, "/api/kpis/suppliers/SUP001?limit=1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var detail struct {
		Supplier struct {
			SupplierID     string  `json:"supplier_id"`
			OnTimeDelivery float64 `json:"on_time_delivery"`
		} `json:"supplier"`
		Invoices []model.Invoice `json:"invoices"`
	}
	decode(t, rec, &detail)
	if detail.Supplier.SupplierID != "SUP001" || detail.Supplier.OnTimeDelivery != 100 || len(detail.Invoices) != 1 {
		t.Errorf("detail = %+v", detail)
	}

	if rec := get(t, e, "/api/kpis/suppliers/SUP999"); rec.Code != http.StatusNotFound {
		t.Errorf("unknown supplier status = %d", rec.Code)
	}
}

func TestTopTrendsCategoriesHistogram(t *testing.T) {
	e := newServer(&memStore{data: testData()})

	var top struct {
		Metric    string `json:"metric"`
		Suppliers []struct {
			SupplierID string `json:"supplier_id"`
		} `json:"suppliers"`
	}
	decode(t, get(t, e, "/api/kpis/top?limit=1"), &top)
	if top.Metric != "on_time_delivery" || len(top.Suppliers) != 1 || top.Suppliers[0].SupplierID != "SUP001" {
		t.Errorf("top = %+v", top)
	}

	var trends struct {
		Trends []struct {
			Month string `json:"month"`
		} `json:"trends"`
	}
	decode(t, get(t, e, "/api/kpis/trends"), &trends)
	if len(trends.Trends) != 3 || trends.Trends[0].Month != "2025-01" {
		t.Errorf("trends = %+v", trends)
	}

	var cats struct {
		Categories []struct {
			Category string `json:"category"`
		} `json:"categories"`
	}
	decode(t, get(t, e, "/api/kpis/categories"), &cats)
	if len(cats.Categories) != 3 || cats.Categories[0].Category != "Electronics" {
		t.Errorf("categories = %+v", cats)
	}

	var hist struct {
		Bins []struct {
			Count int `json:"count"`
		} `json:"bins"`
	}
	decode(t, get(t, e, "/api/kpis/payment-days?bins=4"), &hist)
	total := 0
	for _, b := range hist.Bins {
		total += b.Count
	}
	if len(hist.Bins) != 4 || total != 5 {
		t.Errorf("histogram = %+v", hist)
	}
}

func TestRegistryEndpoints(t *testing.T) {
	e := newServer(&memStore{data: testData()})

	var cats struct {
		Categories []string `json:"categories"`
	}
	decode(t, get(t, e, "/api/categories"), &cats)
	if strings.Join(cats.Categories, "|") != "Raw Materials|Packaging|Electronics" {
		t.Errorf("categories = %v", cats.Categories)
	}

	var r store.DateRange
	decode(t, get(t, e, "/api/date-range"), &r)
	if r.MinDate != "2025-01-05" || r.MaxDate != "2025-03-02" {
		t.Errorf("date range = %+v", r)
	}

	var sup struct {
		Count int `json:"count"`
	}
	decode(t, get(t, e, "/api/suppliers"), &sup)
	if sup.Count != 3 {
		t.Errorf("supplier count = %d", sup.Count)
	}
}

func TestExports(t *testing.T) {
	e := newServer(&memStore{data: testData()})

	tests := []struct {
		path, contentType, filename, prefix string
	}{
		{"/api/export/suppliers.csv", "text/csv", "supplier_kpis_20250307.csv", "supplier_id,supplier_name"},
		{"/api/export/invoices.csv", "text/csv", "invoice_details_20250307.csv", "invoice_id,supplier_id"},
		{"/api/export/suppliers.pdf", "application/pdf", "supplier_kpis_20250307.pdf", "%PDF-"},
	}
	for _, tt := range tests {
		rec := get(t, e, tt.path)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d", tt.path, rec.Code)
			continue
		}
		if ct := rec.Header().Get(echo.HeaderContentType); ct != tt.contentType {
			t.Errorf("%s: content type = %q", tt.path, ct)
		}
		if cd := rec.Header().Get(echo.HeaderContentDisposition); !strings.Contains(cd, tt.filename) {
			t.Errorf("%s: disposition = %q", tt.path, cd)
		}
		if !strings.HasPrefix(rec.Body.String(), tt.prefix) {
			t.Errorf("%s: body starts %q", tt.path, rec.Body.String()[:min(20, rec.Body.Len())])
		}
	}
}

func TestStoreFailureIs500(t *testing.T) {
	e := newServer(&memStore{data: testData(), err: errors.New("db down")})

	rec := get(t, e, "/api/kpis/overall")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "db down") {
		t.Error("internal error details leaked to the client")
	}
}
