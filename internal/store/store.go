// Package store reads supplier, invoice and outstanding records through gorm.
package store

import (
	"context"
	"fmt"
	"time"

	"supplier-kpi-service/internal/model"
	"supplier-kpi-service/pkg/logger"
	"supplier-kpi-service/prometheus"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// InvoiceFilter restricts invoice queries. Zero values mean no restriction.
// Date bounds are inclusive ISO dates compared against invoice_date.
type InvoiceFilter struct {
	StartDate   string
	EndDate     string
	SupplierIDs []string
}

// DateRange is the span of invoice dates present in the store
type DateRange struct {
	MinDate string `json:"min_date"`
	MaxDate string `json:"max_date"`
}

// Dataset is a full snapshot of the three record sets
type Dataset struct {
	Suppliers   []model.Supplier
	Invoices    []model.Invoice
	Outstanding []model.Outstanding
}

// Store is the read side consumed by the dashboard
type Store interface {
	GetSuppliers(ctx context.Context) ([]model.Supplier, error)
	GetInvoices(ctx context.Context, filter InvoiceFilter) ([]model.Invoice, error)
	GetOutstanding(ctx context.Context, supplierIDs []string) ([]model.Outstanding, error)
	GetDateRange(ctx context.Context) (DateRange, error)
}

const batchSize = 500

// GormStore implements Store on top of a gorm connection
type GormStore struct {
	db  *gorm.DB
	log *zap.Logger
}

// New creates a store bound to db
func New(db *gorm.DB) *GormStore {
	return &GormStore{db: db, log: logger.Named("store")}
}

// GetSuppliers returns the supplier registry ordered by id
func (s *GormStore) GetSuppliers(ctx context.Context) ([]model.Supplier, error) {
	const op = "GetSuppliers"
	defer prometheus.TrackDBOperation("query")(time.Now())

	suppliers := []model.Supplier{}
	if err := s.db.WithContext(ctx).Order("supplier_id").Find(&suppliers).Error; err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Debug("Suppliers loaded", zap.Int("count", len(suppliers)))
	return suppliers, nil
}

// GetInvoices returns invoices matching filter ordered by invoice id
func (s *GormStore) GetInvoices(ctx context.Context, filter InvoiceFilter) ([]model.Invoice, error) {
	const op = "GetInvoices"
	defer prometheus.TrackDBOperation("query")(time.Now())

	query := s.db.WithContext(ctx).Model(&model.Invoice{})
	if filter.StartDate != "" {
		query = query.Where("invoice_date >= ?", filter.StartDate)
	}
	if filter.EndDate != "" {
		query = query.Where("invoice_date <= ?", filter.EndDate)
	}
	if len(filter.SupplierIDs) > 0 {
		query = query.Where("supplier_id IN ?", filter.SupplierIDs)
	}

	invoices := []model.Invoice{}
	if err := query.Order("invoice_id").Find(&invoices).Error; err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Debug("Invoices loaded",
		zap.String("start_date", filter.StartDate),
		zap.String("end_date", filter.EndDate),
		zap.Strings("supplier_ids", filter.SupplierIDs),
		zap.Int("count", len(invoices)))
	return invoices, nil
}

// GetOutstanding returns outstanding balances, optionally for a set of suppliers
func (s *GormStore) GetOutstanding(ctx context.Context, supplierIDs []string) ([]model.Outstanding, error) {
	const op = "GetOutstanding"
	defer prometheus.TrackDBOperation("query")(time.Now())

	query := s.db.WithContext(ctx).Model(&model.Outstanding{})
	if len(supplierIDs) > 0 {
		query = query.Where("supplier_id IN ?", supplierIDs)
	}

	records := []model.Outstanding{}
	if err := query.Order("id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return records, nil
}

// GetDateRange returns the earliest and latest invoice dates, empty when there are no invoices
func (s *GormStore) GetDateRange(ctx context.Context) (DateRange, error) {
	const op = "GetDateRange"
	defer prometheus.TrackDBOperation("query")(time.Now())

	var row struct {
		MinDate *string
		MaxDate *string
	}
	err := s.db.WithContext(ctx).Model(&model.Invoice{}).
		Select("MIN(invoice_date) AS min_date, MAX(invoice_date) AS max_date").
		Scan(&row).Error
	if err != nil {
		return DateRange{}, fmt.Errorf("%s: %w", op, err)
	}

	var r DateRange
	if row.MinDate != nil {
		r.MinDate = *row.MinDate
	}
	if row.MaxDate != nil {
		r.MaxDate = *row.MaxDate
	}
	return r, nil
}

// Replace swaps the stored snapshot for data in a single transaction
func (s *GormStore) Replace(ctx context.Context, data Dataset) error {
	const op = "Replace"
	defer prometheus.TrackDBOperation("replace")(time.Now())

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		for _, m := range []interface{}{&model.Outstanding{}, &model.Invoice{}, &model.Supplier{}} {
			if err := all.Delete(m).Error; err != nil {
				return fmt.Errorf("clear %T: %w", m, err)
			}
		}

		if len(data.Suppliers) > 0 {
			if err := tx.CreateInBatches(data.Suppliers, batchSize).Error; err != nil {
				return fmt.Errorf("insert suppliers: %w", err)
			}
		}
		if len(data.Invoices) > 0 {
			if err := tx.CreateInBatches(data.Invoices, batchSize).Error; err != nil {
				return fmt.Errorf("insert invoices: %w", err)
			}
		}
		if len(data.Outstanding) > 0 {
			if err := tx.CreateInBatches(data.Outstanding, batchSize).Error; err != nil {
				return fmt.Errorf("insert outstanding: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("Snapshot replaced",
		zap.Int("suppliers", len(data.Suppliers)),
		zap.Int("invoices", len(data.Invoices)),
		zap.Int("outstanding", len(data.Outstanding)))
	return nil
}
