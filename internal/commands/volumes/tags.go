package volumes

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AD7six/ebs-dash/internal/inventory"
)

// NewTagsCmd lists the tag keys found on volumes with their distinct values,
// to help choose the keys to group dashboards by.
func NewTagsCmd() *cobra.Command {
	f := &inventoryFlags{}
	var namesOnly bool
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "List tag keys and their values",
		RunE: func(cmd *cobra.Command, args []string) error {
			src, filter, ctx, cancel, err := f.open(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			resources, err := inventory.Collect(ctx, src, filter)
			if err != nil {
				return err
			}
			summary := inventory.SummarizeTags(resources)

			var v any = summary
			if namesOnly {
				keys := make([]string, 0, len(summary))
				for _, tv := range summary {
					keys = append(keys, tv.Key)
				}
				v = keys
			}
			return f.output.Write(cmd.OutOrStdout(), v, func(w io.Writer) error {
				return writeTagsText(w, summary, namesOnly)
			})
		},
	}
	cmd.Flags().BoolVar(&namesOnly, "names-only", false, "Only list the tag keys")
	f.register(cmd)
	return cmd
}

func writeTagsText(w io.Writer, summary []inventory.TagValues, namesOnly bool) error {
	var b strings.Builder
	for _, tv := range summary {
		if namesOnly {
			fmt.Fprintln(&b, tv.Key)
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", tv.Key, strings.Join(tv.Values, ", "))
	}
	_, err := io.WriteString(w, b.String())
	return err
}
