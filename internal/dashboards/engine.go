// Package dashboards runs one dashboard generation pass: collect resources,
// group them by tag, build and shard the widgets, reconcile the dashboard
// store and publish the navigation index.
package dashboards

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/AD7six/ebs-dash/internal/config"
	"github.com/AD7six/ebs-dash/internal/grouping"
	"github.com/AD7six/ebs-dash/internal/inventory"
	"github.com/AD7six/ebs-dash/internal/logging"
	"github.com/AD7six/ebs-dash/internal/navigation"
	"github.com/AD7six/ebs-dash/internal/reconcile"
	"github.com/AD7six/ebs-dash/internal/sharding"
	"github.com/AD7six/ebs-dash/internal/widgets"
)

var (
	ErrNoTagKeys      = errors.New("at least one tag key is required")
	ErrUnknownTagKeys = errors.New("no resource carries the tag key")
)

// Store is a dashboard store: CloudWatch or a directory of files.
type Store interface {
	reconcile.DashboardService
	GetDashboard(ctx context.Context, name string) ([]byte, error)
}

// Options contains the per-run choices of a sync.
type Options struct {
	TagKeys   []string         // Tag keys to group by, in order
	Filter    inventory.Filter // Resource filter pushed down to the source
	DryRun    bool             // Render and report, but change nothing
	NoCleanup bool             // Keep stale dashboards
	NoNav     bool             // Skip the navigation dashboard
}

// Plan is the desired state computed from the inventory.
type Plan struct {
	Resources int
	Excluded  []inventory.Resource // Missing a tag key
	Groups    []grouping.Group
	Shards    []sharding.Shard
	Documents []reconcile.Document
}

// Summary is the outcome of a run.
type Summary struct {
	Region            string `json:"region" yaml:"region"`
	Resources         int    `json:"resources" yaml:"resources"`
	Excluded          int    `json:"excluded" yaml:"excluded"`
	Groups            int    `json:"groups" yaml:"groups"`
	Shards            int    `json:"shards" yaml:"shards"`
	reconcile.Summary `yaml:",inline"`
	Navigation        string `json:"navigation,omitempty" yaml:"navigation,omitempty"`
}

// Engine runs sync passes against one source and one store.
type Engine struct {
	settings *config.Settings
	source   inventory.Source
	store    Store
	regions  inventory.RegionDescriber // nil skips region validation
}

// NewEngine returns an engine. regions may be nil when the run does not use
// the region's inventory, e.g. with construction data files.
func NewEngine(settings *config.Settings, source inventory.Source, store Store, regions inventory.RegionDescriber) *Engine {
	return &Engine{
		settings: settings,
		source:   source,
		store:    store,
		regions:  regions,
	}
}

// Plan validates the region, collects resources and renders every shard.
// Any error is fatal: nothing has been changed.
func (e *Engine) Plan(ctx context.Context, opts Options) (*Plan, error) {
	if len(opts.TagKeys) == 0 {
		return nil, ErrNoTagKeys
	}
	if e.regions != nil {
		if err := inventory.ValidateRegion(ctx, e.regions, e.settings.Region); err != nil {
			return nil, err
		}
	}

	resources, err := inventory.Collect(ctx, e.source, opts.Filter)
	if err != nil {
		return nil, err
	}
	logging.Logger.Info("collected resources", "count", len(resources))
	if missing := inventory.MissingTagKeys(resources, opts.TagKeys); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTagKeys, strings.Join(missing, ", "))
	}

	grouped := grouping.Group(resources, opts.TagKeys)
	for _, r := range grouped.Excluded {
		logging.Logger.Debug("resource excluded, missing a tag key", "resource", r.ID)
	}

	builder, err := widgets.NewBuilder(widgets.Options{
		Template:   widgets.VolumeTemplate(),
		Region:     e.settings.Region,
		Width:      e.settings.WidgetWidth,
		Height:     e.settings.WidgetHeight,
		Period:     e.settings.MetricPeriod,
		MaxMetrics: e.settings.MaxMetricsPerWidget,
	})
	if err != nil {
		return nil, err
	}
	namer, err := sharding.NewNamer(e.settings.DashboardPrefix, e.settings.MaxDashboardNameLength)
	if err != nil {
		return nil, err
	}
	sharder, err := sharding.New(namer, e.settings.MaxMetricsPerDashboard)
	if err != nil {
		return nil, err
	}

	groups := make([]sharding.GroupWidgets, 0, grouped.Len())
	for _, g := range grouped.Groups {
		// Inventory order is not stable between runs; resource ids are.
		members := slices.Clone(g.Resources)
		slices.SortStableFunc(members, func(a, b inventory.Resource) int {
			return strings.Compare(a.ID, b.ID)
		})
		ws, err := builder.BuildAll(members)
		if err != nil {
			return nil, fmt.Errorf("failed to build widgets for %s: %w", g.Key.Label(), err)
		}
		groups = append(groups, sharding.GroupWidgets{Key: g.Key, Widgets: ws})
	}

	shards, err := sharder.ShardAll(groups)
	if err != nil {
		return nil, err
	}

	docs := make([]reconcile.Document, 0, len(shards))
	for _, sh := range shards {
		body, err := sh.Document().Render()
		if err != nil {
			return nil, fmt.Errorf("failed to render dashboard %s: %w", sh.Name, err)
		}
		docs = append(docs, reconcile.Document{Name: sh.Name, Body: body})
		logging.Logger.Debug("planned dashboard",
			"dashboard", sh.Name,
			"group", sh.GroupKey.Label(),
			"widgets", len(sh.Widgets),
			"metrics", sh.MetricCount())
	}

	return &Plan{
		Resources: len(resources),
		Excluded:  grouped.Excluded,
		Groups:    grouped.Groups,
		Shards:    shards,
		Documents: docs,
	}, nil
}

// Run plans, reconciles the store against the plan and rebuilds the
// navigation index from the store's listing. An error means the run was
// aborted before any change; per dashboard failures are in the summary.
func (e *Engine) Run(ctx context.Context, opts Options) (Summary, error) {
	plan, err := e.Plan(ctx, opts)
	if err != nil {
		return Summary{}, err
	}
	if opts.Filter.Narrows() && !opts.NoCleanup {
		// Groups outside the filter are not planned, so their dashboards are stale.
		logging.Logger.Warn("filtered run with cleanup deletes dashboards of groups outside the filter", "filter", opts.Filter.Tags, "volume_ids", len(opts.Filter.IDs))
	}

	rec, err := reconcile.New(e.store, reconcile.Options{
		Prefix:      sharding.NamePrefix(e.settings.DashboardPrefix),
		DryRun:      opts.DryRun,
		NoCleanup:   opts.NoCleanup,
		Concurrency: e.settings.Concurrency,
	})
	if err != nil {
		return Summary{}, err
	}
	result, err := rec.Run(ctx, plan.Documents)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{
		Region:    e.settings.Region,
		Resources: plan.Resources,
		Excluded:  len(plan.Excluded),
		Groups:    len(plan.Groups),
		Shards:    len(plan.Shards),
		Summary:   result,
	}

	if opts.NoNav || opts.DryRun {
		return summary, nil
	}
	nav, err := navigation.NewPublisher(e.store, sharding.NamePrefix(e.settings.DashboardPrefix), e.settings.NavDashboardName)
	if err == nil {
		_, err = nav.Publish(ctx)
	}
	if err != nil {
		logging.Logger.Error("navigation dashboard failed", "dashboard", e.settings.NavDashboardName, "error", err)
		summary.Failed = append(summary.Failed, reconcile.Failure{
			Dashboard: e.settings.NavDashboardName,
			Operation: reconcile.OpUpdate,
			Error:     err.Error(),
			Err:       err,
		})
		return summary, nil
	}
	summary.Navigation = e.settings.NavDashboardName
	return summary, nil
}
