// Package dashboard resolves user filters into store queries and assembles KPI reports.
package dashboard

import (
	"context"
	"errors"
	"fmt"

	"supplier-kpi-service/internal/kpi"
	"supplier-kpi-service/internal/model"
	"supplier-kpi-service/internal/store"
	"supplier-kpi-service/pkg/config"
	"supplier-kpi-service/pkg/logger"
	"supplier-kpi-service/prometheus"

	"go.uber.org/zap"
)

// Selector values that mean "no restriction"
const (
	AllSuppliers  = "All Suppliers"
	AllCategories = "All Categories"
)

var (
	// ErrInvalidDate is returned for a date that is not YYYY-MM-DD
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidRange is returned when the start date is after the end date
	ErrInvalidRange = errors.New("start date after end date")
)

// Filter is the dashboard selection. Empty fields select everything.
type Filter struct {
	StartDate     string   `json:"start_date,omitempty"`
	EndDate       string   `json:"end_date,omitempty"`
	SupplierNames []string `json:"suppliers,omitempty"`
	SupplierIDs   []string `json:"supplier_ids,omitempty"`
	Category      string   `json:"category,omitempty"`
}

// Validate checks date formats and ordering
func (f Filter) Validate() error {
	if f.StartDate != "" && !model.ValidDate(f.StartDate) {
		return fmt.Errorf("%w: start_date %q", ErrInvalidDate, f.StartDate)
	}
	if f.EndDate != "" && !model.ValidDate(f.EndDate) {
		return fmt.Errorf("%w: end_date %q", ErrInvalidDate, f.EndDate)
	}
	if f.StartDate != "" && f.EndDate != "" && f.StartDate > f.EndDate {
		return fmt.Errorf("%w: %s > %s", ErrInvalidRange, f.StartDate, f.EndDate)
	}
	return nil
}

// Report is everything a dashboard view needs for one filter
type Report struct {
	Filter       Filter                `json:"filter"`
	Suppliers    []model.Supplier      `json:"suppliers"`
	Invoices     []model.Invoice       `json:"-"`
	Outstanding  []model.Outstanding   `json:"-"`
	Overall      kpi.Summary           `json:"overall"`
	SupplierKPIs []kpi.SupplierSummary `json:"supplier_kpis"`
}

// Service builds reports from a store
type Service struct {
	store store.Store
	cfg   config.KPIConfig
	log   *zap.Logger
}

// NewService creates a dashboard service
func NewService(s store.Store, cfg config.KPIConfig) *Service {
	return &Service{store: s, cfg: cfg, log: logger.Named("dashboard")}
}

// Config returns the KPI defaults the service was built with
func (s *Service) Config() config.KPIConfig {
	return s.cfg
}

// Store exposes the underlying record store
func (s *Service) Store() store.Store {
	return s.store
}

// Build loads the records selected by f and computes overall and per-supplier KPIs
func (s *Service) Build(ctx context.Context, f Filter) (Report, error) {
	const op = "dashboard.Build"

	if err := f.Validate(); err != nil {
		return Report{}, err
	}

	registry, err := s.store.GetSuppliers(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("%s: %w", op, err)
	}

	selected, restricted := resolve(registry, f)
	report := Report{
		Filter:       f,
		Suppliers:    selected,
		Invoices:     []model.Invoice{},
		Outstanding:  []model.Outstanding{},
		SupplierKPIs: []kpi.SupplierSummary{},
	}

	log := logger.Ctx(ctx).With(zap.String("component", "dashboard"))
	if restricted && len(selected) == 0 {
		log.Info("Filter selects no suppliers", zap.Any("filter", f))
		return report, nil
	}

	var ids []string
	if restricted {
		ids = make([]string, len(selected))
		for i, sup := range selected {
			ids[i] = sup.SupplierID
		}
	}

	report.Invoices, err = s.store.GetInvoices(ctx, store.InvoiceFilter{
		StartDate:   f.StartDate,
		EndDate:     f.EndDate,
		SupplierIDs: ids,
	})
	if err != nil {
		return Report{}, fmt.Errorf("%s: %w", op, err)
	}

	report.Outstanding, err = s.store.GetOutstanding(ctx, ids)
	if err != nil {
		return Report{}, fmt.Errorf("%s: %w", op, err)
	}

	report.Overall = kpi.OverallKPIs(report.Invoices, report.Outstanding)
	report.SupplierKPIs = kpi.SupplierKPIs(report.Invoices, report.Outstanding, report.Suppliers)

	prometheus.RecordComputation("overall")
	prometheus.RecordComputation("suppliers")
	prometheus.UpdateOverallKPIs(report.Overall.Map())

	log.Debug("Report built",
		zap.Int("suppliers", len(report.Suppliers)),
		zap.Int("invoices", len(report.Invoices)),
		zap.Int("outstanding", len(report.Outstanding)))
	return report, nil
}

// resolve narrows the registry by names, ids and category. restricted is
// false when no selector applies and the full registry is returned.
func resolve(registry []model.Supplier, f Filter) ([]model.Supplier, bool) {
	var allowed map[string]bool
	narrow := func(keep func(model.Supplier) bool) {
		next := make(map[string]bool)
		for _, sup := range registry {
			if (allowed == nil || allowed[sup.SupplierID]) && keep(sup) {
				next[sup.SupplierID] = true
			}
		}
		allowed = next
	}

	if names := selectedNames(f.SupplierNames); len(names) > 0 {
		narrow(func(s model.Supplier) bool { return names[s.SupplierName] })
	}
	if len(f.SupplierIDs) > 0 {
		want := make(map[string]bool, len(f.SupplierIDs))
		for _, id := range f.SupplierIDs {
			want[id] = true
		}
		narrow(func(s model.Supplier) bool { return want[s.SupplierID] })
	}
	if f.Category != "" && f.Category != AllCategories {
		narrow(func(s model.Supplier) bool { return s.Category == f.Category })
	}

	if allowed == nil {
		return registry, false
	}
	selected := []model.Supplier{}
	for _, sup := range registry {
		if allowed[sup.SupplierID] {
			selected = append(selected, sup)
		}
	}
	return selected, true
}

func selectedNames(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		if n == AllSuppliers {
			return nil
		}
		if n != "" {
			set[n] = true
		}
	}
	return set
}
