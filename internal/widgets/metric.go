// Package widgets builds the chart widgets of a dashboard document and
// renders them in the JSON shape the CloudWatch dashboard service expects.
package widgets

import (
	"errors"
	"fmt"
	"regexp"
)

var (
	ErrUnknownMetricID   = errors.New("expression references an undefined metric id")
	ErrDuplicateMetricID = errors.New("duplicate metric id")
	ErrInvalidMetricID   = errors.New("invalid metric id")
	ErrWidgetTooLarge    = errors.New("widget exceeds the metric limit")
)

var (
	// metricIDRegex is the id syntax accepted by CloudWatch metric math.
	metricIDRegex = regexp.MustCompile(`^[a-z][a-zA-Z0-9_]*$`)
	// expressionRefRegex finds id references in an expression. Functions
	// and operators (IF, AND, FILL...) are upper case and never match.
	expressionRefRegex = regexp.MustCompile(`\b[a-z][a-zA-Z0-9_]*\b`)
)

// YAxis selects the axis a series is plotted on. The zero value leaves the
// choice to the renderer and is omitted from the document.
type YAxis string

const (
	YAxisLeft  YAxis = "left"
	YAxisRight YAxis = "right"
)

// RawMetric references a metric stored by the monitoring service.
type RawMetric struct {
	Namespace      string
	MetricName     string
	DimensionName  string
	DimensionValue string
	ID             string
	Label          string
	Region         string
	AccountID      string // Optional, set for cross-account dashboards
	Visible        bool
	Color          string
	YAxis          YAxis // Optional
}

// DerivedMetric is a series computed by the renderer from other series of
// the same widget.
type DerivedMetric struct {
	Expression string
	ID         string
	Label      string
	Region     string
	AccountID  string // Optional
	Visible    bool
	Color      string
	YAxis      YAxis // Optional
}

// MetricRef is either a raw or a derived metric; exactly one is set.
type MetricRef struct {
	raw     *RawMetric
	derived *DerivedMetric
}

// Raw wraps m as a MetricRef.
func Raw(m RawMetric) MetricRef {
	return MetricRef{raw: &m}
}

// Derived wraps m as a MetricRef.
func Derived(m DerivedMetric) MetricRef {
	return MetricRef{derived: &m}
}

// ID returns the widget-local id of the metric.
func (m MetricRef) ID() string {
	if m.derived != nil {
		return m.derived.ID
	}
	if m.raw != nil {
		return m.raw.ID
	}
	return ""
}

// RawMetric returns the raw metric, if m is one.
func (m MetricRef) RawMetric() (RawMetric, bool) {
	if m.raw == nil {
		return RawMetric{}, false
	}
	return *m.raw, true
}

// DerivedMetric returns the derived metric, if m is one.
func (m MetricRef) DerivedMetric() (DerivedMetric, bool) {
	if m.derived == nil {
		return DerivedMetric{}, false
	}
	return *m.derived, true
}

// DependsOn returns the ids an expression references, in order of first
// use. It is empty for raw metrics.
func (m MetricRef) DependsOn() []string {
	if m.derived == nil {
		return nil
	}
	return ExpressionRefs(m.derived.Expression)
}

// ExpressionRefs returns the distinct metric ids referenced by expr.
func ExpressionRefs(expr string) []string {
	var refs []string
	seen := make(map[string]struct{})
	for _, ref := range expressionRefRegex.FindAllString(expr, -1) {
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		refs = append(refs, ref)
	}
	return refs
}

// rawOptions and derivedOptions fix the key order of the rendered objects.
type rawOptions struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Region    string `json:"region"`
	AccountID string `json:"accountId,omitempty"`
	Visible   bool   `json:"visible"`
	Color     string `json:"color,omitempty"`
	YAxis     YAxis  `json:"yAxis,omitempty"`
}

type derivedOptions struct {
	Expression string `json:"expression"`
	ID         string `json:"id"`
	Label      string `json:"label"`
	Region     string `json:"region"`
	AccountID  string `json:"accountId,omitempty"`
	Visible    bool   `json:"visible"`
	Color      string `json:"color,omitempty"`
	YAxis      YAxis  `json:"yAxis,omitempty"`
}

// MarshalJSON renders a raw metric as
// [namespace, metricName, dimName, dimValue, {options}] and a derived one as
// [{expression, options}].
func (m MetricRef) MarshalJSON() ([]byte, error) {
	switch {
	case m.raw != nil:
		r := m.raw
		return marshal([]any{
			r.Namespace,
			r.MetricName,
			r.DimensionName,
			r.DimensionValue,
			rawOptions{
				ID:        r.ID,
				Label:     r.Label,
				Region:    r.Region,
				AccountID: r.AccountID,
				Visible:   r.Visible,
				Color:     r.Color,
				YAxis:     r.YAxis,
			},
		})
	case m.derived != nil:
		d := m.derived
		return marshal([]any{derivedOptions{
			Expression: d.Expression,
			ID:         d.ID,
			Label:      d.Label,
			Region:     d.Region,
			AccountID:  d.AccountID,
			Visible:    d.Visible,
			Color:      d.Color,
			YAxis:      d.YAxis,
		}})
	}
	return nil, fmt.Errorf("empty metric reference")
}

// ValidateMetrics checks that ids are well formed and unique and that every
// expression only references ids defined before it in metrics.
func ValidateMetrics(metrics []MetricRef) error {
	defined := make(map[string]struct{}, len(metrics))
	for _, m := range metrics {
		id := m.ID()
		if !metricIDRegex.MatchString(id) {
			return fmt.Errorf("%w: %q", ErrInvalidMetricID, id)
		}
		if _, ok := defined[id]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateMetricID, id)
		}
		for _, ref := range m.DependsOn() {
			if _, ok := defined[ref]; !ok {
				return fmt.Errorf("%w: %q used by %q", ErrUnknownMetricID, ref, id)
			}
		}
		defined[id] = struct{}{}
	}
	return nil
}
