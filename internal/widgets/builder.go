package widgets

import (
	"fmt"

	"github.com/AD7six/ebs-dash/internal/inventory"
)

// Options configures a Builder.
type Options struct {
	Template   Template
	Region     string // Used when a resource carries no region of its own
	Width      int
	Height     int
	Period     int
	MaxMetrics int // Per widget
}

// Builder turns resources into metric widgets. It holds no mutable state.
type Builder struct {
	opts Options
}

// NewBuilder validates the template against opts.MaxMetrics and returns a
// builder.
func NewBuilder(opts Options) (*Builder, error) {
	if opts.Region == "" {
		return nil, fmt.Errorf("widget region must not be empty")
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("widget size must be positive, got %dx%d", opts.Width, opts.Height)
	}
	if err := opts.Template.Validate(opts.MaxMetrics); err != nil {
		return nil, fmt.Errorf("invalid metric template: %w", err)
	}
	return &Builder{opts: opts}, nil
}

// Build returns the widget charting r.
func (b *Builder) Build(r inventory.Resource) (Widget, error) {
	if r.ID == "" {
		return Widget{}, fmt.Errorf("resource has no id")
	}
	region := r.Region
	if region == "" {
		region = b.opts.Region
	}

	metrics := b.opts.Template.metrics(r.ID, region, r.AccountID)
	if len(metrics) > b.opts.MaxMetrics {
		return Widget{}, fmt.Errorf("%w: %s has %d metrics, limit is %d", ErrWidgetTooLarge, r.ID, len(metrics), b.opts.MaxMetrics)
	}

	return Widget{
		ResourceID: r.ID,
		Width:      b.opts.Width,
		Height:     b.opts.Height,
		Properties: MetricProperties{
			Metrics: metrics,
			View:    "timeSeries",
			Stacked: false,
			Region:  region,
			Title:   title(r),
			Period:  b.opts.Period,
			Stat:    "Average",
		},
	}, nil
}

// BuildAll builds one widget per resource, in order.
func (b *Builder) BuildAll(resources []inventory.Resource) ([]Widget, error) {
	out := make([]Widget, 0, len(resources))
	for _, r := range resources {
		w, err := b.Build(r)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

func title(r inventory.Resource) string {
	if name, ok := r.Tag("Name"); ok && name != "" {
		return fmt.Sprintf("EBS Metrics for %s (%s)", r.ID, name)
	}
	return "EBS Metrics for " + r.ID
}
