// Package kpi computes supplier performance indicators over in-memory record sets.
//
// Every function is pure: inputs are never mutated and identical inputs give
// identical outputs. Empty inputs yield zero rather than an error.
package kpi

import "supplier-kpi-service/internal/model"

// Summary holds the six scalar KPIs. Percentages are on a 0-100 scale and
// every value is rounded to 2 decimals.
type Summary struct {
	OnTimeDelivery   float64 `json:"on_time_delivery"`
	InvoiceAccuracy  float64 `json:"invoice_accuracy"`
	RejectionRate    float64 `json:"rejection_rate"`
	AvgPaymentDays   float64 `json:"avg_payment_days"`
	AvgOutstanding   float64 `json:"avg_outstanding"`
	TotalOutstanding float64 `json:"total_outstanding"`
}

// Map returns the summary keyed by metric name
func (s Summary) Map() map[string]float64 {
	return map[string]float64{
		MetricOnTimeDelivery:   s.OnTimeDelivery,
		MetricInvoiceAccuracy:  s.InvoiceAccuracy,
		MetricRejectionRate:    s.RejectionRate,
		MetricAvgPaymentDays:   s.AvgPaymentDays,
		MetricAvgOutstanding:   s.AvgOutstanding,
		MetricTotalOutstanding: s.TotalOutstanding,
	}
}

// SupplierSummary is one row of the per-supplier breakdown
type SupplierSummary struct {
	SupplierID   string `json:"supplier_id"`
	SupplierName string `json:"supplier_name"`
	Country      string `json:"country"`
	Category     string `json:"category"`
	Summary
	TotalInvoices int     `json:"total_invoices"`
	TotalAmount   float64 `json:"total_amount"`
}

// OnTimeDelivery is the share of invoices delivered no later than expected
func OnTimeDelivery(invoices []model.Invoice) float64 {
	count := 0
	for _, inv := range invoices {
		if inv.OnTime() {
			count++
		}
	}
	return percentage(count, len(invoices))
}

// InvoiceAccuracy is the share of invoices flagged accurate
func InvoiceAccuracy(invoices []model.Invoice) float64 {
	count := 0
	for _, inv := range invoices {
		if inv.IsAccurate {
			count++
		}
	}
	return percentage(count, len(invoices))
}

// RejectionRate is the share of invoices flagged rejected
func RejectionRate(invoices []model.Invoice) float64 {
	count := 0
	for _, inv := range invoices {
		if inv.IsRejected {
			count++
		}
	}
	return percentage(count, len(invoices))
}

// AvgPaymentDays is the mean of payment_days
func AvgPaymentDays(invoices []model.Invoice) float64 {
	if len(invoices) == 0 {
		return 0.0
	}
	days := make([]float64, len(invoices))
	for i, inv := range invoices {
		days[i] = float64(inv.PaymentDays)
	}
	return Round2(Mean(days))
}

// AvgOutstanding is the mean outstanding amount
func AvgOutstanding(records []model.Outstanding) float64 {
	if len(records) == 0 {
		return 0.0
	}
	return Round2(Mean(outstandingAmounts(records)))
}

// TotalOutstanding is the sum of outstanding amounts
func TotalOutstanding(records []model.Outstanding) float64 {
	if len(records) == 0 {
		return 0.0
	}
	return Round2(Sum(outstandingAmounts(records)))
}

// TotalAmount is the sum of invoice amounts, 0 when there are none
func TotalAmount(invoices []model.Invoice) float64 {
	if len(invoices) == 0 {
		return 0
	}
	amounts := make([]float64, len(invoices))
	for i, inv := range invoices {
		amounts[i] = inv.InvoiceAmount
	}
	return Round2(Sum(amounts))
}

func outstandingAmounts(records []model.Outstanding) []float64 {
	amounts := make([]float64, len(records))
	for i, r := range records {
		amounts[i] = r.OutstandingAmount
	}
	return amounts
}

// OverallKPIs computes the six metrics once over the full (already filtered) sets
func OverallKPIs(invoices []model.Invoice, outstanding []model.Outstanding) Summary {
	return Summary{
		OnTimeDelivery:   OnTimeDelivery(invoices),
		InvoiceAccuracy:  InvoiceAccuracy(invoices),
		RejectionRate:    RejectionRate(invoices),
		AvgPaymentDays:   AvgPaymentDays(invoices),
		AvgOutstanding:   AvgOutstanding(outstanding),
		TotalOutstanding: TotalOutstanding(outstanding),
	}
}

// SupplierKPIs returns one row per supplier, in supplier order. Records are
// matched to suppliers by exact id; a supplier without records gets a zero row.
func SupplierKPIs(invoices []model.Invoice, outstanding []model.Outstanding, suppliers []model.Supplier) []SupplierSummary {
	invoicesBySupplier := make(map[string][]model.Invoice)
	for _, inv := range invoices {
		invoicesBySupplier[inv.SupplierID] = append(invoicesBySupplier[inv.SupplierID], inv)
	}
	outstandingBySupplier := make(map[string][]model.Outstanding)
	for _, o := range outstanding {
		outstandingBySupplier[o.SupplierID] = append(outstandingBySupplier[o.SupplierID], o)
	}

	rows := make([]SupplierSummary, 0, len(suppliers))
	for _, s := range suppliers {
		subset := invoicesBySupplier[s.SupplierID]
		rows = append(rows, SupplierSummary{
			SupplierID:    s.SupplierID,
			SupplierName:  s.SupplierName,
			Country:       s.Country,
			Category:      s.Category,
			Summary:       OverallKPIs(subset, outstandingBySupplier[s.SupplierID]),
			TotalInvoices: len(subset),
			TotalAmount:   TotalAmount(subset),
		})
	}
	return rows
}
