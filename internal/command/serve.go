package command

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"supplier-kpi-service/internal/dashboard"
	"supplier-kpi-service/internal/handler"
	"supplier-kpi-service/internal/middleware"
	"supplier-kpi-service/internal/store"
	"supplier-kpi-service/pkg/config"
	"supplier-kpi-service/pkg/database"
	"supplier-kpi-service/pkg/logger"
	"supplier-kpi-service/pkg/metrics"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the KPI HTTP API",
		Example: `  # Serve on SERVER_PORT (default 8085)
  supplier-kpi serve

  # Serve a local SQLite file with auth enabled
  DB_DRIVER=sqlite DB_PATH=data/suppliers.db AUTH_ENABLED=true supplier-kpi serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	log := a.log
	log.Info("Starting supplier KPI service...", zap.String("environment", a.cfg.Server.Env))

	conn, err := a.openDB()
	if err != nil {
		return err
	}
	defer database.Close(conn)

	svc := dashboard.NewService(store.New(conn), a.cfg.KPI)
	e := newServer(a.cfg, svc)

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		port := a.cfg.Server.Port
		log.Info("Starting server", zap.String("port", port), zap.Bool("auth_enabled", a.cfg.Auth.Enabled))
		if err := e.Start(":" + port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// newServer builds the echo instance with middleware and all routes
func newServer(cfg *config.Config, svc *dashboard.Service) *echo.Echo {
	httpMetrics := metrics.NewHTTPMetrics("supplier-kpi-service")

	e := echo.New()
	e.HideBanner = true

	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(httpMetrics.Middleware())

	// Request logging middleware
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			logger.FromContext(c).Info("HTTP Request",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.Int("status", c.Response().Status),
				zap.Float64("duration_s", time.Since(start).Seconds()),
				zap.String("ip", c.RealIP()),
			)
			return err
		}
	})

	kpiHandler := handler.NewKPIHandler(svc)

	// Public routes
	e.GET("/", kpiHandler.Health)
	e.GET("/health", kpiHandler.Health)
	e.GET("/metrics", echo.WrapHandler(metrics.GetPrometheusHandler()))

	api := e.Group("/api")
	if cfg.Auth.Enabled {
		api.Use(middleware.AuthMiddleware)
	}
	kpiHandler.Register(api)

	return e
}
