package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"supplier-kpi-service/internal/dashboard"
	"supplier-kpi-service/internal/kpi"
	"supplier-kpi-service/internal/model"
)

func sampleReport() dashboard.Report {
	invoices := []model.Invoice{
		{InvoiceID: "INV00001", SupplierID: "SUP001", InvoiceDate: "2025-01-10", DueDate: "2025-02-09",
			PaymentDate: "2025-02-12", ExpectedDeliveryDate: "2025-01-20", ActualDeliveryDate: "2025-01-18",
			InvoiceAmount: 1200.5, IsAccurate: true, PaymentDays: 33, DeliveryDelayDays: -2},
		{InvoiceID: "INV00002", SupplierID: "SUP002", InvoiceDate: "2025-02-01", InvoiceAmount: 800,
			IsRejected: true, PaymentDays: 32, DeliveryDelayDays: 4},
	}
	suppliers := []model.Supplier{
		{SupplierID: "SUP001", SupplierName: "Acme, Metals", Country: "USA", Category: "Raw Materials"},
		{SupplierID: "SUP002", SupplierName: "Müller Verpackung", Country: "Germany", Category: "Packaging"},
	}
	outstanding := []model.Outstanding{{SupplierID: "SUP001", OutstandingAmount: 5000}}
	return dashboard.Report{
		Filter:       dashboard.Filter{StartDate: "2025-01-01"},
		Suppliers:    suppliers,
		Invoices:     invoices,
		Outstanding:  outstanding,
		Overall:      kpi.OverallKPIs(invoices, outstanding),
		SupplierKPIs: kpi.SupplierKPIs(invoices, outstanding, suppliers),
	}
}

var generated = time.Date(2025, 3, 7, 14, 30, 0, 0, time.UTC)

func TestFilename(t *testing.T) {
	tests := []struct {
		kind, format, want string
	}{
		{KindSuppliers, FormatCSV, "supplier_kpis_20250307.csv"},
		{KindSuppliers, FormatPDF, "supplier_kpis_20250307.pdf"},
		{KindInvoices, FormatCSV, "invoice_details_20250307.csv"},
	}
	for _, tt := range tests {
		got, err := Filename(tt.kind, tt.format, generated)
		if err != nil || got != tt.want {
			t.Errorf("Filename(%s, %s) = %q, %v; want %q", tt.kind, tt.format, got, err, tt.want)
		}
	}

	for _, bad := range [][2]string{{KindInvoices, FormatPDF}, {KindSuppliers, "xlsx"}, {"orders", FormatCSV}} {
		if _, err := Filename(bad[0], bad[1], generated); !errors.Is(err, ErrUnknownFormat) {
			t.Errorf("Filename(%s, %s) error = %v", bad[0], bad[1], err)
		}
	}
}

func TestSuppliersCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, KindSuppliers, FormatCSV, sampleReport(), generated); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want header + 2", len(records))
	}
	if strings.Join(records[0], ",") != strings.Join(SupplierColumns, ",") {
		t.Errorf("header = %v", records[0])
	}

	acme := records[1]
	want := []string{"SUP001", "Acme, Metals", "USA", "Raw Materials", "100.00", "100.00", "0.00", "33.00", "5000.00", "1", "1200.50"}
	for i := range want {
		if acme[i] != want[i] {
			t.Errorf("column %s = %q, want %q", SupplierColumns[i], acme[i], want[i])
		}
	}
}

func TestInvoicesCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, KindInvoices, FormatCSV, sampleReport(), generated); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(records) != 3 || len(records[0]) != len(InvoiceColumns) {
		t.Fatalf("unexpected shape: %v", records)
	}
	first := strings.Join(records[1], ",")
	if first != "INV00001,SUP001,2025-01-10,2025-02-09,2025-02-12,2025-01-20,2025-01-18,1200.5,1,0,33,-2" {
		t.Errorf("first invoice row = %s", first)
	}
	if records[2][8] != "0" || records[2][9] != "1" {
		t.Errorf("flags = %v", records[2][8:10])
	}
}

func TestInvoicesCSVKeepsAmountPrecision(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{1234.5678, "1234.5678"},
		{0.125, "0.125"},
		{800, "800"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		if err := WriteInvoicesCSV(&buf, []model.Invoice{{InvoiceID: "INV1", SupplierID: "SUP001", InvoiceAmount: tt.amount}}); err != nil {
			t.Fatalf("WriteInvoicesCSV failed: %v", err)
		}
		records, err := csv.NewReader(&buf).ReadAll()
		if err != nil {
			t.Fatalf("output is not valid CSV: %v", err)
		}
		if got := records[1][7]; got != tt.want {
			t.Errorf("amount %v written as %q, want %q", tt.amount, got, tt.want)
		}
	}
}

func TestEmptyCSVHasHeader(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSuppliersCSV(&buf, nil); err != nil {
		t.Fatalf("WriteSuppliersCSV failed: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != strings.Join(SupplierColumns, ",") {
		t.Errorf("empty export = %q", got)
	}
}

func TestSuppliersPDF(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, KindSuppliers, FormatPDF, sampleReport(), generated); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Errorf("output does not look like a PDF: %q", buf.Bytes()[:min(16, buf.Len())])
	}
	if buf.Len() < 500 {
		t.Errorf("PDF suspiciously small: %d bytes", buf.Len())
	}
}

func TestWriteRejectsUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, KindInvoices, FormatPDF, sampleReport(), generated); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("error = %v", err)
	}
	if buf.Len() != 0 {
		t.Error("nothing should be written for an unknown format")
	}
}

func TestContentType(t *testing.T) {
	if ContentType(FormatPDF) != "application/pdf" || ContentType(FormatCSV) != "text/csv" {
		t.Error("unexpected content types")
	}
}
