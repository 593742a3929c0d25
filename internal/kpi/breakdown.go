package kpi

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"supplier-kpi-service/internal/model"
)

// Metric and column names shared by sorting, top-N and exports
const (
	MetricOnTimeDelivery   = "on_time_delivery"
	MetricInvoiceAccuracy  = "invoice_accuracy"
	MetricRejectionRate    = "rejection_rate"
	MetricAvgPaymentDays   = "avg_payment_days"
	MetricAvgOutstanding   = "avg_outstanding"
	MetricTotalOutstanding = "total_outstanding"
	MetricTotalInvoices    = "total_invoices"
	MetricTotalAmount      = "total_amount"

	FieldSupplierID   = "supplier_id"
	FieldSupplierName = "supplier_name"
	FieldCountry      = "country"
	FieldCategory     = "category"
)

var (
	// ErrUnknownField is returned when sorting or ranking by a column that does not exist
	ErrUnknownField = errors.New("unknown field")

	// ErrSupplierNotFound is returned by drill-down for an id outside the breakdown
	ErrSupplierNotFound = errors.New("supplier not found")
)

// NumericValue returns a numeric column of a supplier row
func (s SupplierSummary) NumericValue(field string) (float64, bool) {
	switch field {
	case MetricOnTimeDelivery:
		return s.OnTimeDelivery, true
	case MetricInvoiceAccuracy:
		return s.InvoiceAccuracy, true
	case MetricRejectionRate:
		return s.RejectionRate, true
	case MetricAvgPaymentDays:
		return s.AvgPaymentDays, true
	case MetricAvgOutstanding:
		return s.AvgOutstanding, true
	case MetricTotalOutstanding:
		return s.TotalOutstanding, true
	case MetricTotalInvoices:
		return float64(s.TotalInvoices), true
	case MetricTotalAmount:
		return s.TotalAmount, true
	}
	return 0, false
}

// TextValue returns a text column of a supplier row
func (s SupplierSummary) TextValue(field string) (string, bool) {
	switch field {
	case FieldSupplierID:
		return s.SupplierID, true
	case FieldSupplierName:
		return s.SupplierName, true
	case FieldCountry:
		return s.Country, true
	case FieldCategory:
		return s.Category, true
	}
	return "", false
}

// SortSuppliers returns a copy of rows stably sorted by field
func SortSuppliers(rows []SupplierSummary, field string, descending bool) ([]SupplierSummary, error) {
	sorted := make([]SupplierSummary, len(rows))
	copy(sorted, rows)

	var less func(a, b SupplierSummary) bool
	if _, ok := (SupplierSummary{}).NumericValue(field); ok {
		less = func(a, b SupplierSummary) bool {
			av, _ := a.NumericValue(field)
			bv, _ := b.NumericValue(field)
			return av < bv
		}
	} else if _, ok := (SupplierSummary{}).TextValue(field); ok {
		less = func(a, b SupplierSummary) bool {
			av, _ := a.TextValue(field)
			bv, _ := b.TextValue(field)
			return strings.ToLower(av) < strings.ToLower(bv)
		}
	} else {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		if descending {
			return less(sorted[j], sorted[i])
		}
		return less(sorted[i], sorted[j])
	})
	return sorted, nil
}

// TopSuppliers returns the n rows with the highest value of metric
func TopSuppliers(rows []SupplierSummary, metric string, n int) ([]SupplierSummary, error) {
	if _, ok := (SupplierSummary{}).NumericValue(metric); !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, metric)
	}
	sorted, err := SortSuppliers(rows, metric, true)
	if err != nil {
		return nil, err
	}
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted, nil
}

// TrendPoint is one month of the performance trend
type TrendPoint struct {
	Month           string  `json:"month"`
	Invoices        int     `json:"invoices"`
	OnTimeDelivery  float64 `json:"on_time_delivery"`
	InvoiceAccuracy float64 `json:"invoice_accuracy"`
	RejectionRate   float64 `json:"rejection_rate"`
}

// MonthlyTrends groups invoices by invoice month, oldest first
func MonthlyTrends(invoices []model.Invoice) []TrendPoint {
	byMonth := make(map[string][]model.Invoice)
	for _, inv := range invoices {
		month := inv.Month()
		if month == "" {
			continue
		}
		byMonth[month] = append(byMonth[month], inv)
	}

	months := make([]string, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Strings(months)

	points := make([]TrendPoint, 0, len(months))
	for _, m := range months {
		subset := byMonth[m]
		points = append(points, TrendPoint{
			Month:           m,
			Invoices:        len(subset),
			OnTimeDelivery:  OnTimeDelivery(subset),
			InvoiceAccuracy: InvoiceAccuracy(subset),
			RejectionRate:   RejectionRate(subset),
		})
	}
	return points
}

// CategoryPoint is the mean supplier performance of one category
type CategoryPoint struct {
	Category        string  `json:"category"`
	Suppliers       int     `json:"suppliers"`
	OnTimeDelivery  float64 `json:"on_time_delivery"`
	InvoiceAccuracy float64 `json:"invoice_accuracy"`
	RejectionRate   float64 `json:"rejection_rate"`
}

// CategoryPerformance averages supplier rows per category, categories in alphabetical order
func CategoryPerformance(rows []SupplierSummary) []CategoryPoint {
	byCategory := make(map[string][]SupplierSummary)
	for _, r := range rows {
		byCategory[r.Category] = append(byCategory[r.Category], r)
	}

	categories := make([]string, 0, len(byCategory))
	for c := range byCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	points := make([]CategoryPoint, 0, len(categories))
	for _, c := range categories {
		group := byCategory[c]
		onTime := make([]float64, len(group))
		accuracy := make([]float64, len(group))
		rejection := make([]float64, len(group))
		for i, r := range group {
			onTime[i] = r.OnTimeDelivery
			accuracy[i] = r.InvoiceAccuracy
			rejection[i] = r.RejectionRate
		}
		points = append(points, CategoryPoint{
			Category:        c,
			Suppliers:       len(group),
			OnTimeDelivery:  Round2(Mean(onTime)),
			InvoiceAccuracy: Round2(Mean(accuracy)),
			RejectionRate:   Round2(Mean(rejection)),
		})
	}
	return points
}

// Bin is one histogram bucket [Lower, Upper); the last bucket also includes Upper
type Bin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// PaymentDaysHistogram buckets payment_days into equal-width bins between
// the observed min and max. A constant sample uses a unit range around the value.
func PaymentDaysHistogram(invoices []model.Invoice, bins int) []Bin {
	if len(invoices) == 0 || bins <= 0 {
		return []Bin{}
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, inv := range invoices {
		d := float64(inv.PaymentDays)
		lo = math.Min(lo, d)
		hi = math.Max(hi, d)
	}
	if lo == hi {
		lo -= 0.5
		hi += 0.5
	}

	step := (hi - lo) / float64(bins)
	edges := make([]float64, bins+1)
	for i := range edges {
		edges[i] = lo + float64(i)*step
	}
	edges[bins] = hi

	result := make([]Bin, bins)
	for i := range result {
		result[i] = Bin{Lower: edges[i], Upper: edges[i+1]}
	}

	norm := float64(bins) / (hi - lo)
	for _, inv := range invoices {
		d := float64(inv.PaymentDays)
		idx := int((d - lo) * norm)
		if idx >= bins {
			idx = bins - 1
		}
		// floating point can land one bucket off near an edge
		if idx > 0 && d < edges[idx] {
			idx--
		}
		if idx < bins-1 && d >= edges[idx+1] {
			idx++
		}
		result[idx].Count++
	}
	return result
}

// Detail is the drill-down view of one supplier
type Detail struct {
	Supplier SupplierSummary `json:"supplier"`
	Invoices []model.Invoice `json:"invoices"`
}

// SupplierDetail returns the supplier's row and at most limit of its invoices,
// in input order. A non-positive limit returns all of them.
func SupplierDetail(rows []SupplierSummary, invoices []model.Invoice, supplierID string, limit int) (Detail, error) {
	for _, r := range rows {
		if r.SupplierID != supplierID {
			continue
		}
		detail := Detail{Supplier: r, Invoices: []model.Invoice{}}
		for _, inv := range invoices {
			if inv.SupplierID != supplierID {
				continue
			}
			if limit > 0 && len(detail.Invoices) == limit {
				break
			}
			detail.Invoices = append(detail.Invoices, inv)
		}
		return detail, nil
	}
	return Detail{}, fmt.Errorf("%w: %q", ErrSupplierNotFound, supplierID)
}

// Categories returns the distinct supplier categories in first-seen order
func Categories(suppliers []model.Supplier) []string {
	seen := make(map[string]bool)
	categories := []string{}
	for _, s := range suppliers {
		if !seen[s.Category] {
			seen[s.Category] = true
			categories = append(categories, s.Category)
		}
	}
	return categories
}
