package volumes

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AD7six/ebs-dash/internal/commands/cmdutil"
	"github.com/AD7six/ebs-dash/internal/inventory"
)

// NewListCmd lists volumes with their tags, honoring the tag and id filters.
func NewListCmd() *cobra.Command {
	f := &inventoryFlags{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List volumes and their tags",
		Example: `  ebs-dash volumes list --filter Team=platform
  ebs-dash volumes list --source csv --data-file volumes.csv -o yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, filter, ctx, cancel, err := f.open(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			w := cmd.OutOrStdout()
			if f.output.Format != cmdutil.FormatText {
				resources, err := inventory.Collect(ctx, src, filter)
				if err != nil {
					return err
				}
				return f.output.Write(w, resources, nil)
			}

			// Text output streams page by page.
			for res := range src.Resources(ctx, filter) {
				if res.Err != nil {
					return fmt.Errorf("%w: %w", inventory.ErrInventoryUnavailable, res.Err)
				}
				if _, err := fmt.Fprintln(w, formatResource(res.Resource)); err != nil {
					return err
				}
			}
			return ctx.Err()
		},
	}
	f.register(cmd)
	return cmd
}

// formatResource renders "vol-1  Env=prod, Team=platform" with sorted tags.
func formatResource(r inventory.Resource) string {
	keys := make([]string, 0, len(r.Tags))
	for k := range r.Tags {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+r.Tags[k])
	}
	line := r.ID
	if r.Region != "" {
		line += "  " + r.Region
	}
	return line + "  " + strings.Join(pairs, ", ")
}
