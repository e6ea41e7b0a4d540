package cmdutil

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/AD7six/ebs-dash/internal/config"
)

// SettingsFlags override values of the environment configuration.
type SettingsFlags struct {
	Region      string
	Prefix      string
	NavName     string
	Concurrency int
	Timeout     time.Duration
}

// Register adds the override flags to cmd. withWrites adds the flags that
// only matter to commands writing dashboards.
func (f *SettingsFlags) Register(cmd *cobra.Command, withWrites bool) {
	cmd.Flags().StringVar(&f.Region, "region", "", "AWS region (overrides AWS_REGION)")
	cmd.Flags().DurationVar(&f.Timeout, "timeout", 0, "Abort the run after this long, e.g. 10m (0 means no limit)")
	if !withWrites {
		return
	}
	cmd.Flags().StringVar(&f.Prefix, "prefix", "", "Dashboard name prefix (overrides DASHBOARD_PREFIX)")
	cmd.Flags().StringVar(&f.NavName, "nav-name", "", "Navigation dashboard name (overrides NAV_DASHBOARD_NAME)")
	cmd.Flags().IntVar(&f.Concurrency, "concurrency", 0, "Parallel dashboard updates (overrides CONCURRENCY)")
}

// Load loads the environment settings and applies the flags.
func (f *SettingsFlags) Load() (*config.Settings, error) {
	settings, err := config.LoadSettings()
	if err != nil {
		return nil, err
	}
	return settings.WithOverrides(config.Overrides{
		Region:          f.Region,
		DashboardPrefix: f.Prefix,
		NavDashboard:    f.NavName,
		Concurrency:     f.Concurrency,
	})
}

// Context returns the command context bounded by --timeout.
func (f *SettingsFlags) Context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if f.Timeout > 0 {
		return context.WithTimeout(ctx, f.Timeout)
	}
	return context.WithCancel(ctx)
}
