package command

import (
	"supplier-kpi-service/internal/dashboard"

	"github.com/spf13/cobra"
)

// filterFlags binds the dashboard filter to command flags
type filterFlags struct {
	startDate   string
	endDate     string
	suppliers   []string
	supplierIDs []string
	category    string
}

func (f *filterFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.startDate, "start-date", "", "First invoice date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.endDate, "end-date", "", "Last invoice date (YYYY-MM-DD)")
	cmd.Flags().StringArrayVar(&f.suppliers, "supplier", nil, "Supplier name (repeatable)")
	cmd.Flags().StringArrayVar(&f.supplierIDs, "supplier-id", nil, "Supplier id (repeatable)")
	cmd.Flags().StringVar(&f.category, "category", "", "Supplier category")
}

func (f *filterFlags) filter() dashboard.Filter {
	return dashboard.Filter{
		StartDate:     f.startDate,
		EndDate:       f.endDate,
		SupplierNames: f.suppliers,
		SupplierIDs:   f.supplierIDs,
		Category:      f.category,
	}
}
