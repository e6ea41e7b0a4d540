package dashboards

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/AD7six/ebs-dash/internal/awsclient"
	"github.com/AD7six/ebs-dash/internal/commands/cmdutil"
	"github.com/AD7six/ebs-dash/internal/sharding"
)

func NewListCmd() *cobra.Command {
	var (
		all      bool
		settings cmdutil.SettingsFlags
		store    cmdutil.StoreFlags
		output   cmdutil.OutputFlags
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the dashboards under the prefix",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := output.Validate(); err != nil {
				return err
			}
			s, err := settings.Load()
			if err != nil {
				return err
			}
			ctx, cancel := settings.Context(cmd)
			defer cancel()

			clients, err := awsclient.New(ctx, s)
			if err != nil {
				return err
			}
			prefix := sharding.NamePrefix(s.DashboardPrefix)
			if all {
				prefix = ""
			}
			names, err := store.Build(clients, s).ListDashboards(ctx, prefix)
			if err != nil {
				return err
			}
			return output.Write(cmd.OutOrStdout(), names, func(w io.Writer) error {
				for _, n := range names {
					if _, err := fmt.Fprintln(w, n); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "List every dashboard, not only those under the prefix")
	settings.Register(cmd, true)
	store.Register(cmd)
	output.Register(cmd)

	return cmd
}
