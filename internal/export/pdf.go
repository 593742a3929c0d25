package export

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"supplier-kpi-service/internal/dashboard"

	"github.com/jung-kurt/gofpdf"
)

type pdfColumn struct {
	title string
	width float64
	align string
}

var supplierPDFColumns = []pdfColumn{
	{"Supplier", 52, "L"},
	{"Country", 22, "L"},
	{"Category", 28, "L"},
	{"On-Time %", 20, "R"},
	{"Accuracy %", 21, "R"},
	{"Rejection %", 22, "R"},
	{"Avg Pay Days", 23, "R"},
	{"Avg Outstanding", 30, "R"},
	{"Invoices", 17, "R"},
	{"Total Amount", 30, "R"},
}

// WriteSuppliersPDF renders the overall KPIs and the supplier table on landscape A4
func WriteSuppliersPDF(w io.Writer, report dashboard.Report, generated time.Time) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Supplier KPI Report", true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "Supplier KPI Report")
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, "Generated: "+generated.Format("2006-01-02 15:04"))
	pdf.Ln(6)
	pdf.Cell(0, 6, "Period: "+period(report.Filter))
	pdf.Ln(10)

	o := report.Overall
	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 7, "Overall")
	pdf.Ln(7)
	pdf.SetFont("Arial", "", 10)
	for _, line := range [][2]string{
		{"On-Time Delivery", fixed2(o.OnTimeDelivery) + "%"},
		{"Invoice Accuracy", fixed2(o.InvoiceAccuracy) + "%"},
		{"Rejection Rate", fixed2(o.RejectionRate) + "%"},
		{"Avg Payment Days", fixed2(o.AvgPaymentDays)},
		{"Avg Outstanding", fixed2(o.AvgOutstanding)},
		{"Total Outstanding", fixed2(o.TotalOutstanding)},
	} {
		pdf.CellFormat(45, 6, line[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(35, 6, line[1], "", 1, "R", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(230, 236, 245)
	for _, col := range supplierPDFColumns {
		pdf.CellFormat(col.width, 7, col.title, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, r := range report.SupplierKPIs {
		values := []string{
			tr(r.SupplierName),
			tr(r.Country),
			tr(r.Category),
			fixed2(r.OnTimeDelivery),
			fixed2(r.InvoiceAccuracy),
			fixed2(r.RejectionRate),
			fixed2(r.AvgPaymentDays),
			fixed2(r.AvgOutstanding),
			strconv.Itoa(r.TotalInvoices),
			fixed2(r.TotalAmount),
		}
		for i, col := range supplierPDFColumns {
			pdf.CellFormat(col.width, 6, values[i], "1", 0, col.align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render PDF: %w", err)
	}
	return nil
}

func period(f dashboard.Filter) string {
	start, end := f.StartDate, f.EndDate
	if start == "" {
		start = "beginning"
	}
	if end == "" {
		end = "latest"
	}
	return start + " to " + end
}
