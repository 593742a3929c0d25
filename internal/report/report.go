// Package report prints dashboard reports as terminal tables.
package report

import (
	"fmt"
	"io"
	"strconv"

	"supplier-kpi-service/internal/dashboard"
	"supplier-kpi-service/internal/kpi"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5B8DEF")).
			MarginBottom(1)

	subtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			Padding(0, 1)

	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	numericStyle = cellStyle.Align(lipgloss.Right)

	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#444444"))
)

// OverallTable renders the six headline KPIs as a two column table
func OverallTable(s kpi.Summary) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers("KPI", "Value").
		Row("On-Time Delivery", percent(s.OnTimeDelivery)).
		Row("Invoice Accuracy", percent(s.InvoiceAccuracy)).
		Row("Rejection Rate", percent(s.RejectionRate)).
		Row("Avg Payment Days", number(s.AvgPaymentDays)).
		Row("Avg Outstanding", number(s.AvgOutstanding)).
		Row("Total Outstanding", number(s.TotalOutstanding)).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 1:
				return numericStyle
			}
			return cellStyle
		})
	return t.Render()
}

// SupplierTable renders the per-supplier breakdown in row order
func SupplierTable(rows []kpi.SupplierSummary) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers("ID", "Supplier", "Category", "On-Time %", "Accuracy %", "Rejection %", "Pay Days", "Avg Outstanding", "Invoices", "Amount").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col >= 3:
				return numericStyle
			}
			return cellStyle
		})

	for _, r := range rows {
		t.Row(
			r.SupplierID,
			r.SupplierName,
			r.Category,
			number(r.OnTimeDelivery),
			number(r.InvoiceAccuracy),
			number(r.RejectionRate),
			number(r.AvgPaymentDays),
			number(r.AvgOutstanding),
			strconv.Itoa(r.TotalInvoices),
			number(r.TotalAmount),
		)
	}
	return t.Render()
}

// Write prints the full report: title, filter summary, overall and supplier tables
func Write(w io.Writer, r dashboard.Report) error {
	body := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Supplier Performance"),
		subtleStyle.Render(describe(r)),
		"",
		OverallTable(r.Overall),
		"",
		SupplierTable(r.SupplierKPIs),
	)
	_, err := fmt.Fprintln(w, body)
	return err
}

func describe(r dashboard.Report) string {
	start, end := r.Filter.StartDate, r.Filter.EndDate
	if start == "" {
		start = "*"
	}
	if end == "" {
		end = "*"
	}
	return fmt.Sprintf("%s .. %s | %d suppliers | %d invoices", start, end, len(r.Suppliers), len(r.Invoices))
}

func number(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func percent(v float64) string {
	return number(v) + "%"
}
