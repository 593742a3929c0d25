// Package command wires the supplier KPI service into a cobra CLI.
package command

import (
	"fmt"
	"os"

	"supplier-kpi-service/internal/dashboard"
	"supplier-kpi-service/internal/store"
	"supplier-kpi-service/pkg/config"
	"supplier-kpi-service/pkg/database"
	"supplier-kpi-service/pkg/jwtutil"
	"supplier-kpi-service/pkg/logger"
	"supplier-kpi-service/prometheus"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var version = "1.0.0"

// app carries state shared by every subcommand once configuration is loaded
type app struct {
	cfg *config.Config
	log *zap.Logger
}

// NewRootCommand builds the full command tree
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "supplier-kpi",
		Short: "Supplier performance KPI service",
		Long: `Supplier KPI computes delivery, accuracy, rejection, payment and
outstanding-balance indicators over supplier invoice data.

Run the HTTP API with "serve", load data with "import", and
inspect results from the terminal with "report" and "export".

Configuration comes from the environment and an optional .env file
(DB_DRIVER, DB_PATH, DB_HOST, SERVER_PORT, AUTH_ENABLED, ...).`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}

	root.AddCommand(
		newServeCommand(a),
		newMigrateCommand(a),
		newImportCommand(a),
		newReportCommand(a),
		newExportCommand(a),
		newTokenCommand(a),
	)
	return root
}

// Execute runs the CLI and exits non-zero on failure
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		logger.GetLogger().Error("Command execution failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func (a *app) setup() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := logger.InitLogger(cfg); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	jwtutil.Initialize(&cfg.JWT)
	prometheus.InitMetrics(cfg)

	a.cfg = cfg
	a.log = logger.GetLogger()
	return nil
}

// openDB connects and migrates; the caller closes the returned handle
func (a *app) openDB() (*gorm.DB, error) {
	conn, err := database.InitDB(a.cfg)
	if err != nil {
		return nil, err
	}
	a.log.Info("Database connection established and migrations completed", a.cfg.LogConfig()...)
	return conn, nil
}

// withService opens the database and hands a dashboard service to fn
func (a *app) withService(fn func(*dashboard.Service) error) error {
	conn, err := a.openDB()
	if err != nil {
		return err
	}
	defer database.Close(conn)
	return fn(dashboard.NewService(store.New(conn), a.cfg.KPI))
}
