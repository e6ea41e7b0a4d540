package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/AD7six/ebs-dash/internal/commands/config"
	"github.com/AD7six/ebs-dash/internal/commands/dashboards"
	"github.com/AD7six/ebs-dash/internal/commands/version"
	"github.com/AD7six/ebs-dash/internal/commands/volumes"
	"github.com/AD7six/ebs-dash/internal/logging"
)

func main() {
	var logLevel string

	root := &cobra.Command{
		Use:          "ebs-dash",
		Short:        "CloudWatch dashboards for EBS volumes, grouped by tag",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if logLevel != "" {
				if _, err := logging.ParseLevel(logLevel); err != nil {
					return err
				}
			}
			logging.InitLogger(logLevel)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error (default from LOG_LEVEL, then info)")

	root.AddCommand(dashboards.NewDashboardsCmd())
	root.AddCommand(volumes.NewVolumesCmd())
	root.AddCommand(config.NewConfigCmd())
	root.AddCommand(version.NewVersionCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cobra.CheckErr(root.ExecuteContext(ctx))
}
