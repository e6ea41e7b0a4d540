package widgets

import "fmt"

// RawSpec is one raw series of a template. The rendered label is
// "<resource id>_<Label>".
type RawSpec struct {
	ID         string
	Namespace  string
	MetricName string
	Label      string
	Visible    bool
	Color      string
	YAxis      YAxis
}

// DerivedSpec is one expression series of a template.
type DerivedSpec struct {
	ID         string
	Expression string
	Label      string
	Visible    bool
	Color      string
	YAxis      YAxis
}

// Template is the fixed set of series charted for every resource of a kind.
type Template struct {
	DimensionName string
	Raw           []RawSpec
	Derived       []DerivedSpec
}

// VolumeTemplate charts EBS volume latency and the impaired volume check:
// raw read/write time and ops plus queue length, and three expressions over
// them. It has 8 series.
func VolumeTemplate() Template {
	const ns = "AWS/EBS"
	return Template{
		DimensionName: "VolumeId",
		Raw: []RawSpec{
			{ID: "m1", Namespace: ns, MetricName: "VolumeTotalWriteTime", Label: "VolumeTotalWriteTime", Color: "#69ae34"},
			{ID: "m2", Namespace: ns, MetricName: "VolumeWriteOps", Label: "VolumeWriteOps", Color: "#69ae34"},
			{ID: "m3", Namespace: ns, MetricName: "VolumeQueueLength", Label: "VolumeQueueLength", Visible: true, Color: "#08aad2", YAxis: YAxisRight},
			{ID: "m4", Namespace: ns, MetricName: "VolumeTotalReadTime", Label: "VolumeTotalReadTime", Color: "#dfb52c"},
			{ID: "m5", Namespace: ns, MetricName: "VolumeReadOps", Label: "VolumeReadOps", Color: "#dfb52c"},
		},
		Derived: []DerivedSpec{
			{ID: "e1", Expression: "(m1 / m2) * 1000", Label: "WriteLatency", Visible: true, Color: "#69ae34", YAxis: YAxisLeft},
			{ID: "e2", Expression: "(m4 / m5) * 1000", Label: "ReadLatency", Visible: true, Color: "#dfb52c", YAxis: YAxisLeft},
			{ID: "e3", Expression: "IF(m3>0 AND m2+m5==0, 1, 0)", Label: "ImpairedVol", Visible: true, Color: "#fe6e73", YAxis: YAxisLeft},
		},
	}
}

// MetricCount is the number of series a widget built from t has.
func (t Template) MetricCount() int {
	return len(t.Raw) + len(t.Derived)
}

// Validate checks ids and expression references and that the template fits
// in maxMetrics series.
func (t Template) Validate(maxMetrics int) error {
	if t.DimensionName == "" {
		return fmt.Errorf("template has no dimension name")
	}
	if t.MetricCount() == 0 {
		return fmt.Errorf("template has no metrics")
	}
	if t.MetricCount() > maxMetrics {
		return fmt.Errorf("%w: template has %d metrics, limit is %d", ErrWidgetTooLarge, t.MetricCount(), maxMetrics)
	}
	return ValidateMetrics(t.metrics("x", "", ""))
}

// metrics expands t for one resource.
func (t Template) metrics(resourceID, region, accountID string) []MetricRef {
	out := make([]MetricRef, 0, t.MetricCount())
	for _, r := range t.Raw {
		out = append(out, Raw(RawMetric{
			Namespace:      r.Namespace,
			MetricName:     r.MetricName,
			DimensionName:  t.DimensionName,
			DimensionValue: resourceID,
			ID:             r.ID,
			Label:          resourceID + "_" + r.Label,
			Region:         region,
			AccountID:      accountID,
			Visible:        r.Visible,
			Color:          r.Color,
			YAxis:          r.YAxis,
		}))
	}
	for _, d := range t.Derived {
		out = append(out, Derived(DerivedMetric{
			Expression: d.Expression,
			ID:         d.ID,
			Label:      resourceID + "_" + d.Label,
			Region:     region,
			AccountID:  accountID,
			Visible:    d.Visible,
			Color:      d.Color,
			YAxis:      d.YAxis,
		}))
	}
	return out
}
