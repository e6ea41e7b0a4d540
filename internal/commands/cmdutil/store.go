package cmdutil

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/AD7six/ebs-dash/internal/awsclient"
	"github.com/AD7six/ebs-dash/internal/config"
	"github.com/AD7six/ebs-dash/internal/dashboards"
	"github.com/AD7six/ebs-dash/internal/logging"
	"github.com/AD7six/ebs-dash/internal/storage"
)

// StoreFlags selects where dashboards are read and written.
type StoreFlags struct {
	OutputDir string
	Local     bool
}

// Register adds the store flags to cmd.
func (f *StoreFlags) Register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.OutputDir, "output-dir", "", "Use JSON files in this directory instead of CloudWatch")
	cmd.Flags().BoolVar(&f.Local, "local", false, "Use JSON files under DATA_DIR/dashboards instead of CloudWatch")
	cmd.MarkFlagsMutuallyExclusive("output-dir", "local")
}

// Dir returns the directory of the file store, empty for CloudWatch.
func (f *StoreFlags) Dir(s *config.Settings) string {
	if f.Local {
		return filepath.Join(s.DataDir, "dashboards")
	}
	return f.OutputDir
}

// Build returns a file store when a directory is selected, otherwise the
// CloudWatch store.
func (f *StoreFlags) Build(clients *awsclient.Clients, s *config.Settings) dashboards.Store {
	if dir := f.Dir(s); dir != "" {
		logging.Logger.Info("using file dashboard store", "dir", dir)
		return storage.NewFileStore(dir)
	}
	return awsclient.NewDashboards(clients.CloudWatch, s.PutRatePerSecond)
}
