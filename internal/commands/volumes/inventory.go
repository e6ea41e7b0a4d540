package volumes

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/AD7six/ebs-dash/internal/awsclient"
	"github.com/AD7six/ebs-dash/internal/commands/cmdutil"
	"github.com/AD7six/ebs-dash/internal/inventory"
)

// inventoryFlags are the flags shared by the volume commands.
type inventoryFlags struct {
	settings cmdutil.SettingsFlags
	source   cmdutil.SourceFlags
	output   cmdutil.OutputFlags
}

func (f *inventoryFlags) register(cmd *cobra.Command) {
	f.settings.Register(cmd, false)
	f.source.Register(cmd)
	f.output.Register(cmd)
}

// open validates the flags and returns the source, its filter and a context
// bounded by --timeout. The caller must call cancel.
func (f *inventoryFlags) open(cmd *cobra.Command) (src inventory.Source, filter inventory.Filter, ctx context.Context, cancel context.CancelFunc, err error) {
	if err = f.output.Validate(); err != nil {
		return
	}
	if filter, err = f.source.Filter(); err != nil {
		return
	}
	settings, err := f.settings.Load()
	if err != nil {
		return
	}

	ctx, cancel = f.settings.Context(cmd)
	clients, err := awsclient.New(ctx, settings)
	if err != nil {
		cancel()
		return
	}
	src, regions, err := f.source.Build(clients, settings)
	if err == nil && regions != nil {
		err = inventory.ValidateRegion(ctx, regions, settings.Region)
	}
	if err != nil {
		cancel()
		return
	}
	return src, filter, ctx, cancel, nil
}
