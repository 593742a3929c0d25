package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"supplier-kpi-service/internal/kpi"
	"supplier-kpi-service/internal/model"

	"github.com/shopspring/decimal"
)

// SupplierColumns is the header of the supplier KPI export
var SupplierColumns = []string{
	kpi.FieldSupplierID,
	kpi.FieldSupplierName,
	kpi.FieldCountry,
	kpi.FieldCategory,
	kpi.MetricOnTimeDelivery,
	kpi.MetricInvoiceAccuracy,
	kpi.MetricRejectionRate,
	kpi.MetricAvgPaymentDays,
	kpi.MetricAvgOutstanding,
	kpi.MetricTotalInvoices,
	kpi.MetricTotalAmount,
}

// InvoiceColumns is the header of the invoice detail export and of invoice imports
var InvoiceColumns = []string{
	"invoice_id",
	"supplier_id",
	"invoice_date",
	"due_date",
	"payment_date",
	"expected_delivery_date",
	"actual_delivery_date",
	"invoice_amount",
	"is_accurate",
	"is_rejected",
	"payment_days",
	"delivery_delay_days",
}

// WriteSuppliersCSV writes one row per supplier breakdown entry
func WriteSuppliersCSV(w io.Writer, rows []kpi.SupplierSummary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(SupplierColumns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			r.SupplierID,
			r.SupplierName,
			r.Country,
			r.Category,
			fixed2(r.OnTimeDelivery),
			fixed2(r.InvoiceAccuracy),
			fixed2(r.RejectionRate),
			fixed2(r.AvgPaymentDays),
			fixed2(r.AvgOutstanding),
			strconv.Itoa(r.TotalInvoices),
			fixed2(r.TotalAmount),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write supplier %s: %w", r.SupplierID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteInvoicesCSV writes the invoice records; amounts keep full precision and
// flags are written as 0/1
func WriteInvoicesCSV(w io.Writer, invoices []model.Invoice) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(InvoiceColumns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, inv := range invoices {
		record := []string{
			inv.InvoiceID,
			inv.SupplierID,
			inv.InvoiceDate,
			inv.DueDate,
			inv.PaymentDate,
			inv.ExpectedDeliveryDate,
			inv.ActualDeliveryDate,
			full(inv.InvoiceAmount),
			flag(inv.IsAccurate),
			flag(inv.IsRejected),
			strconv.Itoa(inv.PaymentDays),
			strconv.Itoa(inv.DeliveryDelayDays),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write invoice %s: %w", inv.InvoiceID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// full prints v with the shortest decimal that parses back to the same float
func full(v float64) string {
	return decimal.NewFromFloat(v).String()
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
