// Package export renders dashboard reports as downloadable CSV and PDF files.
package export

import (
	"errors"
	"fmt"
	"io"
	"time"

	"supplier-kpi-service/internal/dashboard"
	"supplier-kpi-service/prometheus"

	"github.com/shopspring/decimal"
)

// Export kinds and formats
const (
	KindSuppliers = "suppliers"
	KindInvoices  = "invoices"

	FormatCSV = "csv"
	FormatPDF = "pdf"
)

// ErrUnknownFormat is returned for a kind/format pair that has no writer
var ErrUnknownFormat = errors.New("unknown export format")

// ContentType returns the MIME type for a format
func ContentType(format string) string {
	switch format {
	case FormatPDF:
		return "application/pdf"
	default:
		return "text/csv"
	}
}

// Filename returns the attachment name for an export produced at t
func Filename(kind, format string, t time.Time) (string, error) {
	if err := check(kind, format); err != nil {
		return "", err
	}
	stem := "supplier_kpis"
	if kind == KindInvoices {
		stem = "invoice_details"
	}
	return fmt.Sprintf("%s_%s.%s", stem, t.Format("20060102"), format), nil
}

// Write renders one export of report to w
func Write(w io.Writer, kind, format string, report dashboard.Report, generated time.Time) error {
	if err := check(kind, format); err != nil {
		return err
	}

	var err error
	switch {
	case kind == KindSuppliers && format == FormatCSV:
		err = WriteSuppliersCSV(w, report.SupplierKPIs)
	case kind == KindSuppliers && format == FormatPDF:
		err = WriteSuppliersPDF(w, report, generated)
	case kind == KindInvoices && format == FormatCSV:
		err = WriteInvoicesCSV(w, report.Invoices)
	}
	if err != nil {
		return err
	}

	prometheus.RecordExport(kind, format)
	return nil
}

func check(kind, format string) error {
	switch {
	case kind == KindSuppliers && (format == FormatCSV || format == FormatPDF):
		return nil
	case kind == KindInvoices && format == FormatCSV:
		return nil
	}
	return fmt.Errorf("%w: %s/%s", ErrUnknownFormat, kind, format)
}

// fixed2 prints v with exactly two decimals
func fixed2(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
