package volumes

import (
	"github.com/spf13/cobra"
)

func NewVolumesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "volumes",
		Short: "Inspect the EBS volume inventory",
	}
	cmd.AddCommand(NewListCmd())
	cmd.AddCommand(NewTagsCmd())
	return cmd
}

