package command

import (
	"supplier-kpi-service/internal/dashboard"
	"supplier-kpi-service/internal/kpi"
	"supplier-kpi-service/internal/report"

	"github.com/spf13/cobra"
)

func newReportCommand(a *app) *cobra.Command {
	var (
		filters filterFlags
		sortBy  string
		desc    bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print overall and per-supplier KPIs as tables",
		Example: `  supplier-kpi report --start-date 2025-01-01 --category Packaging --sort on_time_delivery --desc`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withService(func(svc *dashboard.Service) error {
				r, err := svc.Build(cmd.Context(), filters.filter())
				if err != nil {
					return err
				}
				if sortBy != "" {
					if r.SupplierKPIs, err = kpi.SortSuppliers(r.SupplierKPIs, sortBy, desc); err != nil {
						return err
					}
				}
				return report.Write(cmd.OutOrStdout(), r)
			})
		},
	}

	filters.bind(cmd)
	cmd.Flags().StringVar(&sortBy, "sort", "", "Sort supplier rows by a column (e.g. on_time_delivery)")
	cmd.Flags().BoolVar(&desc, "desc", false, "Sort descending")
	return cmd
}
