package handler

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"supplier-kpi-service/internal/dashboard"
	"supplier-kpi-service/internal/export"
	"supplier-kpi-service/internal/kpi"
	"supplier-kpi-service/pkg/logger"
	"supplier-kpi-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

var errInvalidParam = errors.New("invalid parameter")

// KPIHandler serves the dashboard API
type KPIHandler struct {
	svc *dashboard.Service
	now func() time.Time
}

// NewKPIHandler creates a handler backed by svc
func NewKPIHandler(svc *dashboard.Service) *KPIHandler {
	return &KPIHandler{svc: svc, now: time.Now}
}

// Register mounts the KPI routes on g
func (h *KPIHandler) Register(g *echo.Group) {
	g.GET("/suppliers", h.ListSuppliers)
	g.GET("/categories", h.ListCategories)
	g.GET("/date-range", h.GetDateRange)

	kpis := g.Group("/kpis")
	kpis.GET("/overall", h.Overall)
	kpis.GET("/suppliers", h.SupplierBreakdown)
	kpis.GET("/suppliers/:id", h.SupplierDetail)
	kpis.GET("/top", h.Top)
	kpis.GET("/trends", h.Trends)
	kpis.GET("/categories", h.CategoryPerformance)
	kpis.GET("/payment-days", h.PaymentDays)

	exports := g.Group("/export")
	exports.GET("/suppliers.csv", h.Export(export.KindSuppliers, export.FormatCSV))
	exports.GET("/suppliers.pdf", h.Export(export.KindSuppliers, export.FormatPDF))
	exports.GET("/invoices.csv", h.Export(export.KindInvoices, export.FormatCSV))
}

// ListSuppliers returns the supplier registry
func (h *KPIHandler) ListSuppliers(c echo.Context) error {
	suppliers, err := h.svc.Store().GetSuppliers(c.Request().Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"suppliers": suppliers, "count": len(suppliers)})
}

// ListCategories returns the distinct supplier categories
func (h *KPIHandler) ListCategories(c echo.Context) error {
	suppliers, err := h.svc.Store().GetSuppliers(c.Request().Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"categories": kpi.Categories(suppliers)})
}

// GetDateRange returns the first and last invoice dates
func (h *KPIHandler) GetDateRange(c echo.Context) error {
	r, err := h.svc.Store().GetDateRange(c.Request().Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, r)
}

// Overall returns the six headline KPIs for the filter
func (h *KPIHandler) Overall(c echo.Context) error {
	report, err := h.build(c)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"filter":   report.Filter,
		"kpis":     report.Overall,
		"invoices": len(report.Invoices),
	})
}

// SupplierBreakdown returns one KPI row per selected supplier, optionally sorted
func (h *KPIHandler) SupplierBreakdown(c echo.Context) error {
	desc, err := parseOrder(c.QueryParam("order"))
	if err != nil {
		return h.fail(c, err)
	}

	report, err := h.build(c)
	if err != nil {
		return h.fail(c, err)
	}

	rows := report.SupplierKPIs
	if field := c.QueryParam("sort"); field != "" {
		if rows, err = kpi.SortSuppliers(rows, field, desc); err != nil {
			return h.fail(c, err)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"suppliers": rows, "count": len(rows)})
}

// SupplierDetail returns one supplier's KPIs and its first invoices
func (h *KPIHandler) SupplierDetail(c echo.Context) error {
	limit, err := positiveInt(c, "limit", h.svc.Config().DrillDownLimit)
	if err != nil {
		return h.fail(c, err)
	}

	report, err := h.build(c)
	if err != nil {
		return h.fail(c, err)
	}

	detail, err := kpi.SupplierDetail(report.SupplierKPIs, report.Invoices, c.Param("id"), limit)
	if err != nil {
		return h.fail(c, err)
	}
	prometheus.RecordComputation("detail")
	return c.JSON(http.StatusOK, detail)
}

// Top returns the best suppliers by a metric
func (h *KPIHandler) Top(c echo.Context) error {
	limit, err := positiveInt(c, "limit", h.svc.Config().TopN)
	if err != nil {
		return h.fail(c, err)
	}
	metric := c.QueryParam("metric")
	if metric == "" {
		metric = kpi.MetricOnTimeDelivery
	}

	report, err := h.build(c)
	if err != nil {
		return h.fail(c, err)
	}

	top, err := kpi.TopSuppliers(report.SupplierKPIs, metric, limit)
	if err != nil {
		return h.fail(c, err)
	}
	prometheus.RecordComputation("top")
	return c.JSON(http.StatusOK, echo.Map{"metric": metric, "suppliers": top})
}

// Trends returns monthly delivery, accuracy and rejection rates
func (h *KPIHandler) Trends(c echo.Context) error {
	report, err := h.build(c)
	if err != nil {
		return h.fail(c, err)
	}
	prometheus.RecordComputation("trends")
	return c.JSON(http.StatusOK, echo.Map{"trends": kpi.MonthlyTrends(report.Invoices)})
}

// CategoryPerformance returns mean supplier KPIs per category
func (h *KPIHandler) CategoryPerformance(c echo.Context) error {
	report, err := h.build(c)
	if err != nil {
		return h.fail(c, err)
	}
	prometheus.RecordComputation("categories")
	return c.JSON(http.StatusOK, echo.Map{"categories": kpi.CategoryPerformance(report.SupplierKPIs)})
}

// PaymentDays returns the payment-days distribution
func (h *KPIHandler) PaymentDays(c echo.Context) error {
	bins, err := positiveInt(c, "bins", h.svc.Config().HistogramBins)
	if err != nil {
		return h.fail(c, err)
	}

	report, err := h.build(c)
	if err != nil {
		return h.fail(c, err)
	}
	prometheus.RecordComputation("payment_days")
	return c.JSON(http.StatusOK, echo.Map{"bins": kpi.PaymentDaysHistogram(report.Invoices, bins)})
}

// Export returns a handler that streams one export as an attachment
func (h *KPIHandler) Export(kind, format string) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		report, err := h.build(c)
		if err != nil {
			return h.fail(c, err)
		}

		now := h.now()
		name, err := export.Filename(kind, format, now)
		if err != nil {
			return h.fail(c, err)
		}

		var buf bytes.Buffer
		if err := export.Write(&buf, kind, format, report, now); err != nil {
			return h.fail(c, err)
		}

		log.Info("Export generated",
			zap.String("kind", kind),
			zap.String("format", format),
			zap.Int("bytes", buf.Len()))
		c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
		return c.Blob(http.StatusOK, export.ContentType(format), buf.Bytes())
	}
}

func (h *KPIHandler) build(c echo.Context) (dashboard.Report, error) {
	return h.svc.Build(c.Request().Context(), filterFromQuery(c))
}

// fail maps err to a status code and writes a JSON error body
func (h *KPIHandler) fail(c echo.Context, err error) error {
	log := logger.FromContext(c)

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, dashboard.ErrInvalidDate),
		errors.Is(err, dashboard.ErrInvalidRange),
		errors.Is(err, kpi.ErrUnknownField),
		errors.Is(err, export.ErrUnknownFormat),
		errors.Is(err, errInvalidParam):
		status = http.StatusBadRequest
	case errors.Is(err, kpi.ErrSupplierNotFound):
		status = http.StatusNotFound
	}

	if status == http.StatusInternalServerError {
		log.Error("Failed to load supplier data", zap.Error(err))
		return c.JSON(status, echo.Map{"error": "failed to load supplier data"})
	}
	log.Warn("Rejected request", zap.Int("status", status), zap.Error(err))
	return c.JSON(status, echo.Map{"error": err.Error()})
}

func filterFromQuery(c echo.Context) dashboard.Filter {
	q := c.QueryParams()
	return dashboard.Filter{
		StartDate:     q.Get("start_date"),
		EndDate:       q.Get("end_date"),
		SupplierNames: q["supplier"],
		SupplierIDs:   q["supplier_id"],
		Category:      q.Get("category"),
	}
}

func parseOrder(order string) (bool, error) {
	switch order {
	case "", "asc":
		return false, nil
	case "desc":
		return true, nil
	}
	return false, fmt.Errorf("%w: order must be asc or desc", errInvalidParam)
}

func positiveInt(c echo.Context, name string, def int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", errInvalidParam, name)
	}
	return n, nil
}
