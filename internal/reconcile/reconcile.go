// Package reconcile makes the dashboards stored under a name prefix match a
// desired set: every desired document is upserted and every other dashboard
// under the prefix is deleted.
package reconcile

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/AD7six/ebs-dash/internal/logging"
)

// DashboardService is the dashboard store being reconciled. PutDashboard
// creates or replaces by name. DeleteDashboard of a missing name succeeds.
type DashboardService interface {
	ListDashboards(ctx context.Context, prefix string) ([]string, error)
	PutDashboard(ctx context.Context, name string, body []byte) error
	DeleteDashboard(ctx context.Context, name string) error
}

// Document is a rendered dashboard.
type Document struct {
	Name string
	Body []byte
}

// Operation is the kind of a change.
type Operation string

const (
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// Failure is one change that could not be applied.
type Failure struct {
	Dashboard string    `json:"dashboard" yaml:"dashboard"`
	Operation Operation `json:"operation" yaml:"operation"`
	Error     string    `json:"error" yaml:"error"`
	Err       error     `json:"-" yaml:"-"`
}

// Summary reports the outcome of a reconciliation. Names are sorted. In a dry
// run the lists hold the changes that would have been made.
type Summary struct {
	Created []string  `json:"created" yaml:"created"`
	Updated []string  `json:"updated" yaml:"updated"`
	Deleted []string  `json:"deleted" yaml:"deleted"`
	Failed  []Failure `json:"failed" yaml:"failed"`
	DryRun  bool      `json:"dry_run" yaml:"dry_run"`
}

// OK reports whether every change was applied.
func (s Summary) OK() bool {
	return len(s.Failed) == 0
}

// Options configures a Reconciler.
type Options struct {
	Prefix      string // Only dashboards under the prefix are ever deleted
	DryRun      bool
	NoCleanup   bool // Skip the delete phase
	Concurrency int  // Parallel calls, at least 1
}

// Reconciler applies desired documents to a DashboardService.
type Reconciler struct {
	svc  DashboardService
	opts Options
}

// New returns a Reconciler for svc.
func New(svc DashboardService, opts Options) (*Reconciler, error) {
	if svc == nil {
		return nil, fmt.Errorf("reconciler needs a dashboard service")
	}
	if opts.Prefix == "" {
		return nil, fmt.Errorf("reconciler needs a name prefix")
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Reconciler{svc: svc, opts: opts}, nil
}

// Run lists the dashboards under the prefix and reconciles desired against
// that listing. A listing error is returned as is; nothing has been changed.
func (r *Reconciler) Run(ctx context.Context, desired []Document) (Summary, error) {
	existing, err := r.svc.ListDashboards(ctx, r.opts.Prefix)
	if err != nil {
		return Summary{DryRun: r.opts.DryRun}, fmt.Errorf("failed to list existing dashboards: %w", err)
	}
	logging.Logger.Debug("listed existing dashboards", "prefix", r.opts.Prefix, "count", len(existing))
	return r.Reconcile(ctx, desired, existing), nil
}

// Reconcile upserts every desired document, then deletes every name of
// existing under the prefix that is not desired. Failures are recorded and
// never stop the remaining changes; once ctx is done the remaining changes
// fail with its error.
func (r *Reconciler) Reconcile(ctx context.Context, desired []Document, existing []string) Summary {
	existingSet := make(map[string]struct{}, len(existing))
	for _, name := range existing {
		existingSet[name] = struct{}{}
	}
	desiredSet := make(map[string]struct{}, len(desired))
	for _, d := range desired {
		desiredSet[d.Name] = struct{}{}
	}

	var stale []string
	for _, name := range existing {
		if _, ok := desiredSet[name]; ok {
			continue
		}
		if !strings.HasPrefix(name, r.opts.Prefix) {
			continue
		}
		stale = append(stale, name)
	}
	slices.Sort(stale)
	stale = slices.Compact(stale)
	if r.opts.NoCleanup {
		if len(stale) > 0 {
			logging.Logger.Info("cleanup disabled, keeping stale dashboards", "count", len(stale))
		}
		stale = nil
	}

	upserts := make([]change, len(desired))
	for i, d := range desired {
		op := OpCreate
		if _, ok := existingSet[d.Name]; ok {
			op = OpUpdate
		}
		upserts[i] = change{name: d.Name, op: op, body: d.Body}
	}
	deletes := make([]change, len(stale))
	for i, name := range stale {
		deletes[i] = change{name: name, op: OpDelete}
	}

	// Every upsert is attempted before any delete.
	r.apply(ctx, upserts)
	r.apply(ctx, deletes)

	summary := Summary{DryRun: r.opts.DryRun}
	for _, c := range append(upserts, deletes...) {
		if c.err != nil {
			summary.Failed = append(summary.Failed, Failure{
				Dashboard: c.name,
				Operation: c.op,
				Error:     c.err.Error(),
				Err:       c.err,
			})
			continue
		}
		switch c.op {
		case OpCreate:
			summary.Created = append(summary.Created, c.name)
		case OpUpdate:
			summary.Updated = append(summary.Updated, c.name)
		case OpDelete:
			summary.Deleted = append(summary.Deleted, c.name)
		}
	}
	slices.Sort(summary.Created)
	slices.Sort(summary.Updated)
	slices.SortFunc(summary.Failed, func(a, b Failure) int {
		return strings.Compare(a.Dashboard, b.Dashboard)
	})
	return summary
}

type change struct {
	name string
	op   Operation
	body []byte
	err  error
}

// apply runs changes with bounded parallelism, storing each outcome in place.
func (r *Reconciler) apply(ctx context.Context, changes []change) {
	var g errgroup.Group
	g.SetLimit(r.opts.Concurrency)

	for i := range changes {
		c := &changes[i]
		g.Go(func() error {
			c.err = r.do(ctx, c)
			if c.err != nil {
				logging.Logger.Error("dashboard change failed",
					"dashboard", c.name,
					"operation", c.op,
					"error", c.err)
			}
			return nil // Failures are per dashboard
		})
	}
	_ = g.Wait()
}

func (r *Reconciler) do(ctx context.Context, c *change) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.opts.DryRun {
		if c.op == OpDelete {
			logging.Logger.Info("dry run: would delete dashboard", "dashboard", c.name)
		} else {
			logging.Logger.Info("dry run: would put dashboard", "dashboard", c.name, "operation", c.op, "bytes", len(c.body))
			logging.Logger.Debug("dashboard body", "dashboard", c.name, "body", string(c.body))
		}
		return nil
	}

	switch c.op {
	case OpDelete:
		if err := r.svc.DeleteDashboard(ctx, c.name); err != nil {
			return fmt.Errorf("failed to delete dashboard: %w", err)
		}
		logging.Logger.Info("deleted dashboard", "dashboard", c.name)
	default:
		if err := r.svc.PutDashboard(ctx, c.name, c.body); err != nil {
			return fmt.Errorf("failed to put dashboard: %w", err)
		}
		logging.Logger.Info("put dashboard", "dashboard", c.name, "operation", c.op)
	}
	return nil
}
