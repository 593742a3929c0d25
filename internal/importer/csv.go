// Package importer loads supplier, invoice and outstanding records from CSV files.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"supplier-kpi-service/internal/model"
	"supplier-kpi-service/internal/store"
)

// ErrMissingColumn is returned when a required header is absent
var ErrMissingColumn = errors.New("missing column")

// record is one CSV row addressed by header name
type record struct {
	line   int
	index  map[string]int
	values []string
}

func (r record) str(col string) string {
	i, ok := r.index[col]
	if !ok || i >= len(r.values) {
		return ""
	}
	return strings.TrimSpace(r.values[i])
}

func (r record) float(col string) (float64, error) {
	v, err := strconv.ParseFloat(r.str(col), 64)
	if err != nil {
		return 0, fmt.Errorf("line %d: %s: %w", r.line, col, err)
	}
	return v, nil
}

// optInt parses an integer column, returning 0 for an absent or empty value
func (r record) optInt(col string) (int, error) {
	s := r.str(col)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("line %d: %s: %w", r.line, col, err)
	}
	return v, nil
}

func (r record) flag(col string) (bool, error) {
	v, err := strconv.ParseBool(r.str(col))
	if err != nil {
		return false, fmt.Errorf("line %d: %s: %w", r.line, col, err)
	}
	return v, nil
}

// readRows parses a headed CSV stream, handing each row to parse
func readRows[T any](r io.Reader, required []string, parse func(record) (T, error)) ([]T, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}

	index := make(map[string]int, len(headers))
	for i, h := range headers {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, col := range required {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}

	out := []T{}
	line := 1
	for {
		values, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		item, err := parse(record{line: line, index: index, values: values})
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

// ReadSuppliers parses a supplier registry
func ReadSuppliers(r io.Reader) ([]model.Supplier, error) {
	return readRows(r, []string{"supplier_id", "supplier_name"}, func(rec record) (model.Supplier, error) {
		s := model.Supplier{
			SupplierID:   rec.str("supplier_id"),
			SupplierName: rec.str("supplier_name"),
			Country:      rec.str("country"),
			Category:     rec.str("category"),
		}
		if s.SupplierID == "" {
			return s, fmt.Errorf("line %d: empty supplier_id", rec.line)
		}
		return s, nil
	})
}

// ReadInvoices parses invoice records. Derived day counts are taken from the
// file when present and recomputed from the dates when they parse.
func ReadInvoices(r io.Reader) ([]model.Invoice, error) {
	required := []string{"invoice_id", "supplier_id", "invoice_date", "invoice_amount", "is_accurate", "is_rejected"}
	return readRows(r, required, func(rec record) (model.Invoice, error) {
		inv := model.Invoice{
			InvoiceID:            rec.str("invoice_id"),
			SupplierID:           rec.str("supplier_id"),
			InvoiceDate:          rec.str("invoice_date"),
			DueDate:              rec.str("due_date"),
			PaymentDate:          rec.str("payment_date"),
			ExpectedDeliveryDate: rec.str("expected_delivery_date"),
			ActualDeliveryDate:   rec.str("actual_delivery_date"),
		}
		if inv.InvoiceID == "" {
			return inv, fmt.Errorf("line %d: empty invoice_id", rec.line)
		}

		var err error
		if inv.InvoiceAmount, err = rec.float("invoice_amount"); err != nil {
			return inv, err
		}
		if inv.IsAccurate, err = rec.flag("is_accurate"); err != nil {
			return inv, err
		}
		if inv.IsRejected, err = rec.flag("is_rejected"); err != nil {
			return inv, err
		}
		if inv.PaymentDays, err = rec.optInt("payment_days"); err != nil {
			return inv, err
		}
		if inv.DeliveryDelayDays, err = rec.optInt("delivery_delay_days"); err != nil {
			return inv, err
		}
		inv.DeriveDays()
		return inv, nil
	})
}

// ReadOutstanding parses outstanding balances
func ReadOutstanding(r io.Reader) ([]model.Outstanding, error) {
	return readRows(r, []string{"supplier_id", "outstanding_amount"}, func(rec record) (model.Outstanding, error) {
		o := model.Outstanding{SupplierID: rec.str("supplier_id")}
		var err error
		if o.OutstandingAmount, err = rec.float("outstanding_amount"); err != nil {
			return o, err
		}
		if o.AgingDays, err = rec.optInt("aging_days"); err != nil {
			return o, err
		}
		return o, nil
	})
}

// Files names the three CSV inputs of an import. Empty paths are skipped.
type Files struct {
	Suppliers   string
	Invoices    string
	Outstanding string
}

// Load reads every named file into a dataset
func Load(files Files) (store.Dataset, error) {
	const op = "importer.Load"
	var data store.Dataset
	var err error

	if data.Suppliers, err = readFile(files.Suppliers, ReadSuppliers); err != nil {
		return data, fmt.Errorf("%s: suppliers: %w", op, err)
	}
	if data.Invoices, err = readFile(files.Invoices, ReadInvoices); err != nil {
		return data, fmt.Errorf("%s: invoices: %w", op, err)
	}
	if data.Outstanding, err = readFile(files.Outstanding, ReadOutstanding); err != nil {
		return data, fmt.Errorf("%s: outstanding: %w", op, err)
	}
	return data, nil
}

func readFile[T any](path string, read func(io.Reader) ([]T, error)) ([]T, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return read(f)
}
