// Package navigation builds the index dashboard linking every shard.
package navigation

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/AD7six/ebs-dash/internal/logging"
	"github.com/AD7six/ebs-dash/internal/widgets"
)

const (
	// FullWidth is the width of the dashboard grid.
	FullWidth = 24
	// maxHeight is the tallest widget the dashboard service accepts.
	maxHeight = 1000

	header = "## Dashboards Navigation\n\n| Dashboard Link |\n| ---- |\n"
)

// Store is the part of the dashboard service the index needs.
type Store interface {
	ListDashboards(ctx context.Context, prefix string) ([]string, error)
	PutDashboard(ctx context.Context, name string, body []byte) error
}

// Markdown renders a table with one link per dashboard name, in order.
func Markdown(names []string) string {
	var b strings.Builder
	b.WriteString(header)
	for _, name := range names {
		fmt.Fprintf(&b, "| [Go to %s](#dashboards:name=%s) |\n", name, name)
	}
	return b.String()
}

// Build returns the index document for names, sorted.
func Build(names []string) widgets.Dashboard {
	sorted := slices.Clone(names)
	slices.Sort(sorted)
	return widgets.Dashboard{Widgets: []widgets.Widget{{
		Width:      FullWidth,
		Height:     min(3+len(sorted), maxHeight),
		Properties: widgets.TextProperties{Markdown: Markdown(sorted)},
	}}}
}

// Publisher rebuilds the index from the live dashboard listing.
type Publisher struct {
	store  Store
	prefix string // Shards linked from the index
	name   string // Name of the index dashboard
}

// NewPublisher returns a Publisher writing the index of dashboards under
// prefix to name.
func NewPublisher(store Store, prefix, name string) (*Publisher, error) {
	if strings.HasPrefix(name, prefix) {
		return nil, fmt.Errorf("navigation dashboard %q must not start with the shard prefix %q", name, prefix)
	}
	return &Publisher{store: store, prefix: prefix, name: name}, nil
}

// Publish lists the dashboards under the prefix and puts the index. It
// returns the linked names.
func (p *Publisher) Publish(ctx context.Context) ([]string, error) {
	names, err := p.store.ListDashboards(ctx, p.prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list dashboards for the index: %w", err)
	}

	doc := Build(names)
	body, err := doc.Render()
	if err != nil {
		return nil, fmt.Errorf("failed to render navigation dashboard: %w", err)
	}
	if err := p.store.PutDashboard(ctx, p.name, body); err != nil {
		return nil, fmt.Errorf("failed to put navigation dashboard %s: %w", p.name, err)
	}

	logging.Logger.Info("published navigation dashboard", "dashboard", p.name, "links", len(names))
	sorted := slices.Clone(names)
	slices.Sort(sorted)
	return sorted, nil
}
