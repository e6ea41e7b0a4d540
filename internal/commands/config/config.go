package config

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	internalconfig "github.com/AD7six/ebs-dash/internal/config"
)

// NewConfigCmd returns a cobra command that displays current configuration.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show effective configuration",
		Long:  "Shows the current configuration values as ENV_VAR: value pairs.",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := internalconfig.LoadSettings()
			if err != nil {
				return err
			}

			displaySettings(cmd.OutOrStdout(), settings)
			return nil
		},
	}

	return cmd
}

// displaySettings prints each setting as "ENV_VAR: value" using the variable names LoadSettings reads
func displaySettings(w io.Writer, s *internalconfig.Settings) {
	fmt.Fprintf(w, "AWS_REGION: %s\n", s.Region)
	fmt.Fprintf(w, "DASHBOARD_PREFIX: %s\n", s.DashboardPrefix)
	fmt.Fprintf(w, "NAV_DASHBOARD_NAME: %s\n", s.NavDashboardName)
	fmt.Fprintf(w, "MAX_METRICS_PER_DASHBOARD: %d\n", s.MaxMetricsPerDashboard)
	fmt.Fprintf(w, "MAX_METRICS_PER_WIDGET: %d\n", s.MaxMetricsPerWidget)
	fmt.Fprintf(w, "MAX_DASHBOARD_NAME_LENGTH: %d\n", s.MaxDashboardNameLength)
	fmt.Fprintf(w, "PAGE_SIZE: %d\n", s.PageSize)
	fmt.Fprintf(w, "WIDGET_WIDTH: %d\n", s.WidgetWidth)
	fmt.Fprintf(w, "WIDGET_HEIGHT: %d\n", s.WidgetHeight)
	fmt.Fprintf(w, "METRIC_PERIOD: %d\n", s.MetricPeriod)
	fmt.Fprintf(w, "DATA_DIR: %s\n", s.DataDir)
	fmt.Fprintf(w, "CONCURRENCY: %d\n", s.Concurrency)
	fmt.Fprintf(w, "PUT_RATE_PER_SECOND: %g\n", s.PutRatePerSecond)
	fmt.Fprintf(w, "AWS_MAX_ATTEMPTS: %d\n", s.MaxAttempts)
	// HTTP_TIMEOUT is read as seconds, convert duration to whole seconds
	fmt.Fprintf(w, "HTTP_TIMEOUT: %d\n", int(s.HTTPTimeout.Seconds()))
}
