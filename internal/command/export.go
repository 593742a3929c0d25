package command

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"supplier-kpi-service/internal/dashboard"
	"supplier-kpi-service/internal/export"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newExportCommand(a *app) *cobra.Command {
	var (
		filters filterFlags
		kind    string
		format  string
		out     string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write supplier KPIs or invoice details to a CSV or PDF file",
		Example: `  # supplier_kpis_YYYYMMDD.pdf in the current directory
  supplier-kpi export --kind suppliers --format pdf

  # Invoice details for one supplier to stdout
  supplier-kpi export --kind invoices --supplier-id SUP001 --out -`,
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			name, err := export.Filename(kind, format, now)
			if err != nil {
				return err
			}
			if out == "" {
				out = name
			}

			return a.withService(func(svc *dashboard.Service) error {
				r, err := svc.Build(cmd.Context(), filters.filter())
				if err != nil {
					return err
				}

				var buf bytes.Buffer
				if err := export.Write(&buf, kind, format, r, now); err != nil {
					return err
				}

				if out == "-" {
					_, err := cmd.OutOrStdout().Write(buf.Bytes())
					return err
				}
				if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
					return fmt.Errorf("failed to write %s: %w", out, err)
				}
				a.log.Info("Export written", zap.String("path", out), zap.Int("bytes", buf.Len()))
				fmt.Fprintln(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}

	filters.bind(cmd)
	cmd.Flags().StringVar(&kind, "kind", export.KindSuppliers, "What to export: suppliers or invoices")
	cmd.Flags().StringVar(&format, "format", export.FormatCSV, "Output format: csv or pdf (pdf for suppliers only)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output path, - for stdout (default: dated file name)")
	return cmd
}
