package dashboards

import (
	"github.com/spf13/cobra"
)

func NewDashboardsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboards",
		Short: "Manage CloudWatch dashboards of EBS volume metrics",
	}

	cmd.AddCommand(NewSyncCmd())
	cmd.AddCommand(NewListCmd())
	cmd.AddCommand(NewShowCmd())

	return cmd
}
