package handler

import (
	"net/http"

	"supplier-kpi-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const version = "1.0.0"

// Health reports whether the loaded snapshot can be read, with its size and
// invoice date range. Used for the root and health endpoints.
func (h *KPIHandler) Health(c echo.Context) error {
	ctx := c.Request().Context()

	suppliers, err := h.svc.Store().GetSuppliers(ctx)
	if err != nil {
		logger.FromContext(c).Error("Health check failed", zap.Error(err))
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unavailable", "version": version})
	}
	r, err := h.svc.Store().GetDateRange(ctx)
	if err != nil {
		logger.FromContext(c).Error("Health check failed", zap.Error(err))
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unavailable", "version": version})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status":     "success",
		"version":    version,
		"suppliers":  len(suppliers),
		"date_range": r,
	})
}
