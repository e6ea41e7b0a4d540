package dashboards

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AD7six/ebs-dash/internal/awsclient"
	"github.com/AD7six/ebs-dash/internal/commands/cmdutil"
	"github.com/AD7six/ebs-dash/internal/storage"
)

func NewShowCmd() *cobra.Command {
	var (
		settings cmdutil.SettingsFlags
		store    cmdutil.StoreFlags
	)
	cmd := &cobra.Command{
		Use:   "show NAME",
		Short: "Print the body of a dashboard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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
			body, err := store.Build(clients, s).GetDashboard(ctx, args[0])
			if err != nil {
				return err
			}
			indented, err := storage.IndentJSON(body)
			if err != nil {
				return fmt.Errorf("dashboard %s has an invalid body: %w", args[0], err)
			}
			_, err = cmd.OutOrStdout().Write(indented)
			return err
		},
	}

	settings.Register(cmd, false)
	store.Register(cmd)

	return cmd
}
