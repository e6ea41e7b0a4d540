package dashboards

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AD7six/ebs-dash/internal/awsclient"
	"github.com/AD7six/ebs-dash/internal/commands/cmdutil"
	"github.com/AD7six/ebs-dash/internal/dashboards"
	"github.com/AD7six/ebs-dash/internal/utils"
)

type syncFlags struct {
	tagKeys     []string
	tagKeysFile string
	dryRun      bool
	noCleanup   bool
	noNav       bool

	settings cmdutil.SettingsFlags
	source   cmdutil.SourceFlags
	store    cmdutil.StoreFlags
	output   cmdutil.OutputFlags
}

func NewSyncCmd() *cobra.Command {
	f := &syncFlags{}
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Create, update and clean up dashboards grouped by tag values",
		Long: `Groups EBS volumes by the values of one or more tags, builds one chart per
volume and packs the charts into dashboards that stay under the metric limit.
Dashboards under the prefix that are no longer needed are deleted, then the
navigation dashboard is rebuilt.

With --filter or --volume-ids only the matching volumes are planned, so the
dashboards of every other group under the prefix count as stale and are
deleted. Add --no-cleanup to update a subset and keep the rest.`,
		Example: `  ebs-dash dashboards sync --tag-keys Team
  ebs-dash dashboards sync --tag-keys Team,Env --filter Backup=daily --dry-run
  ebs-dash dashboards sync --tag-keys Team --source csv --data-file s3://bucket/volumes.csv
  ebs-dash dashboards sync --tag-keys Team --output-dir data/dashboards`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, f)
		},
	}

	cmd.Flags().StringSliceVar(&f.tagKeys, "tag-keys", nil, "Tag keys to group volumes by, comma-separated")
	cmd.Flags().StringVar(&f.tagKeysFile, "tag-keys-file", "", "File listing tag keys to group by, one per line")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "Render dashboards and report changes without applying them")
	cmd.Flags().BoolVar(&f.noCleanup, "no-cleanup", false, "Do not delete stale dashboards")
	cmd.Flags().BoolVar(&f.noNav, "no-nav", false, "Do not rebuild the navigation dashboard")
	cmd.MarkFlagsMutuallyExclusive("tag-keys", "tag-keys-file")
	f.settings.Register(cmd, true)
	f.source.Register(cmd)
	f.store.Register(cmd)
	f.output.Register(cmd)

	return cmd
}

func (f *syncFlags) keys() ([]string, error) {
	if f.tagKeysFile != "" {
		keys, err := utils.ReadListFile(f.tagKeysFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read tag keys: %w", err)
		}
		return keys, nil
	}
	return utils.ParseCommaSeparatedAll(f.tagKeys), nil
}

func runSync(cmd *cobra.Command, f *syncFlags) error {
	if err := f.output.Validate(); err != nil {
		return err
	}
	keys, err := f.keys()
	if err != nil {
		return err
	}
	filter, err := f.source.Filter()
	if err != nil {
		return err
	}
	settings, err := f.settings.Load()
	if err != nil {
		return err
	}

	ctx, cancel := f.settings.Context(cmd)
	defer cancel()

	clients, err := awsclient.New(ctx, settings)
	if err != nil {
		return err
	}
	source, regions, err := f.source.Build(clients, settings)
	if err != nil {
		return err
	}
	engine := dashboards.NewEngine(settings, source, f.store.Build(clients, settings), regions)

	summary, err := engine.Run(ctx, dashboards.Options{
		TagKeys:   keys,
		Filter:    filter,
		DryRun:    f.dryRun,
		NoCleanup: f.noCleanup,
		NoNav:     f.noNav,
	})
	if err != nil {
		return err
	}

	if err := f.output.Write(cmd.OutOrStdout(), summary, func(w io.Writer) error {
		return writeSummaryText(w, summary)
	}); err != nil {
		return err
	}
	if !summary.OK() {
		return fmt.Errorf("%d dashboard change(s) failed", len(summary.Failed))
	}
	return nil
}

func writeSummaryText(w io.Writer, s dashboards.Summary) error {
	var b strings.Builder
	if s.DryRun {
		b.WriteString("Dry run, no changes were made\n")
	}
	fmt.Fprintf(&b, "Region:    %s\n", s.Region)
	fmt.Fprintf(&b, "Resources: %d (%d excluded, missing a tag key)\n", s.Resources, s.Excluded)
	fmt.Fprintf(&b, "Groups:    %d\n", s.Groups)
	fmt.Fprintf(&b, "Shards:    %d\n", s.Shards)
	writeNames(&b, "Created", s.Created)
	writeNames(&b, "Updated", s.Updated)
	writeNames(&b, "Deleted", s.Deleted)
	if len(s.Failed) > 0 {
		fmt.Fprintf(&b, "Failed (%d):\n", len(s.Failed))
		for _, f := range s.Failed {
			fmt.Fprintf(&b, "  %s (%s): %s\n", f.Dashboard, f.Operation, f.Error)
		}
	}
	if s.Navigation != "" {
		fmt.Fprintf(&b, "Navigation: %s\n", s.Navigation)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeNames(b *strings.Builder, label string, names []string) {
	fmt.Fprintf(b, "%s (%d)", label, len(names))
	if len(names) == 0 {
		b.WriteString("\n")
		return
	}
	b.WriteString(":\n")
	for _, n := range names {
		fmt.Fprintf(b, "  %s\n", n)
	}
}
