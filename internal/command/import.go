package command

import (
	"fmt"

	"supplier-kpi-service/internal/importer"
	"supplier-kpi-service/internal/store"
	"supplier-kpi-service/pkg/database"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newImportCommand(a *app) *cobra.Command {
	var files importer.Files

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace stored data with the contents of CSV files",
		Long: `Import reads suppliers, invoices and outstanding balances from CSV files
with header-named columns and replaces the stored snapshot in one transaction.

Invoice payment_days and delivery_delay_days are recomputed from the dates
when both dates of a pair are present.`,
		Example: `  supplier-kpi import --suppliers suppliers.csv --invoices invoices.csv --outstanding outstanding.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := importer.Load(files)
			if err != nil {
				return err
			}

			conn, err := a.openDB()
			if err != nil {
				return err
			}
			defer database.Close(conn)

			if err := store.New(conn).Replace(cmd.Context(), data); err != nil {
				return fmt.Errorf("import failed: %w", err)
			}

			a.log.Info("Import completed",
				zap.Int("suppliers", len(data.Suppliers)),
				zap.Int("invoices", len(data.Invoices)),
				zap.Int("outstanding", len(data.Outstanding)))
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d suppliers, %d invoices, %d outstanding records\n",
				len(data.Suppliers), len(data.Invoices), len(data.Outstanding))
			return nil
		},
	}

	cmd.Flags().StringVar(&files.Suppliers, "suppliers", "", "Supplier registry CSV")
	cmd.Flags().StringVar(&files.Invoices, "invoices", "", "Invoice CSV")
	cmd.Flags().StringVar(&files.Outstanding, "outstanding", "", "Outstanding balances CSV")
	for _, name := range []string{"suppliers", "invoices", "outstanding"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}
