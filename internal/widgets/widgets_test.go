package widgets

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AD7six/ebs-dash/internal/inventory"
)

func testBuilder(t *testing.T) *Builder {
	t.Helper()
	b, err := NewBuilder(Options{
		Template:   VolumeTemplate(),
		Region:     "us-west-2",
		Width:      12,
		Height:     6,
		Period:     60,
		MaxMetrics: 500,
	})
	require.NoError(t, err)
	return b
}

func TestMetricRef_RawShape(t *testing.T) {
	m := Raw(RawMetric{
		Namespace:      "AWS/EBS",
		MetricName:     "VolumeQueueLength",
		DimensionName:  "VolumeId",
		DimensionValue: "vol-1",
		ID:             "m3",
		Label:          "vol-1_VolumeQueueLength",
		Region:         "us-west-2",
		Visible:        true,
		Color:          "#08aad2",
		YAxis:          YAxisRight,
	})

	got, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t,
		`["AWS/EBS","VolumeQueueLength","VolumeId","vol-1",{"id":"m3","label":"vol-1_VolumeQueueLength","region":"us-west-2","visible":true,"color":"#08aad2","yAxis":"right"}]`,
		string(got))
}

func TestMetricRef_DerivedShape(t *testing.T) {
	m := Derived(DerivedMetric{
		Expression: "IF(m3>0 AND m2+m5==0, 1, 0)",
		ID:         "e3",
		Label:      "vol-1_ImpairedVol",
		Region:     "us-west-2",
		AccountID:  "111111111111",
		Visible:    true,
		Color:      "#fe6e73",
		YAxis:      YAxisLeft,
	})

	got, err := marshal(m)
	require.NoError(t, err)
	assert.Equal(t,
		`[{"expression":"IF(m3>0 AND m2+m5==0, 1, 0)","id":"e3","label":"vol-1_ImpairedVol","region":"us-west-2","accountId":"111111111111","visible":true,"color":"#fe6e73","yAxis":"left"}]`,
		string(got))
}

func TestMetricRef_EmptyFails(t *testing.T) {
	_, err := MetricRef{}.MarshalJSON()
	assert.Error(t, err)
}

func TestExpressionRefs(t *testing.T) {
	assert.Equal(t, []string{"m1", "m2"}, ExpressionRefs("(m1 / m2) * 1000"))
	assert.Equal(t, []string{"m3", "m2", "m5"}, ExpressionRefs("IF(m3>0 AND m2+m5==0, 1, 0)"))
	assert.Equal(t, []string{"m1"}, ExpressionRefs("FILL(m1, 0) + m1"))
	assert.Empty(t, ExpressionRefs("1000"))
}

func TestValidateMetrics(t *testing.T) {
	raw := func(id string) MetricRef { return Raw(RawMetric{ID: id}) }
	expr := func(id, e string) MetricRef { return Derived(DerivedMetric{ID: id, Expression: e}) }

	tests := []struct {
		name    string
		metrics []MetricRef
		wantErr error
	}{
		{"valid", []MetricRef{raw("m1"), raw("m2"), expr("e1", "m1/m2")}, nil},
		{"expression on expression", []MetricRef{raw("m1"), expr("e1", "m1*2"), expr("e2", "e1+1")}, nil},
		{"undefined reference", []MetricRef{raw("m1"), expr("e1", "m1/m9")}, ErrUnknownMetricID},
		{"forward reference", []MetricRef{expr("e1", "m1*2"), raw("m1")}, ErrUnknownMetricID},
		{"self reference", []MetricRef{expr("e1", "e1+1")}, ErrUnknownMetricID},
		{"duplicate", []MetricRef{raw("m1"), raw("m1")}, ErrDuplicateMetricID},
		{"upper case id", []MetricRef{raw("M1")}, ErrInvalidMetricID},
		{"empty id", []MetricRef{raw("")}, ErrInvalidMetricID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMetrics(tt.metrics)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestVolumeTemplate(t *testing.T) {
	tmpl := VolumeTemplate()
	assert.Equal(t, 8, tmpl.MetricCount())
	require.NoError(t, tmpl.Validate(500))
	assert.ErrorIs(t, tmpl.Validate(7), ErrWidgetTooLarge)
}

func TestNewBuilder_RejectsBrokenTemplate(t *testing.T) {
	tmpl := VolumeTemplate()
	tmpl.Derived = append(tmpl.Derived, DerivedSpec{ID: "e4", Expression: "m1 / m6"})

	_, err := NewBuilder(Options{Template: tmpl, Region: "us-west-2", Width: 12, Height: 6, Period: 60, MaxMetrics: 500})
	assert.ErrorIs(t, err, ErrUnknownMetricID)
}

func TestBuild(t *testing.T) {
	b := testBuilder(t)

	w, err := b.Build(inventory.Resource{ID: "vol-1", Kind: inventory.KindVolume, Tags: map[string]string{"Team": "platform"}})
	require.NoError(t, err)

	assert.Equal(t, "vol-1", w.ResourceID)
	assert.Equal(t, TypeMetric, w.Type())
	assert.Equal(t, 8, MetricCount(w))
	p := w.Properties.(MetricProperties)
	assert.Equal(t, "EBS Metrics for vol-1", p.Title)
	require.NoError(t, ValidateMetrics(p.Metrics))
	ids := make([]string, 0, len(p.Metrics))
	for _, m := range p.Metrics {
		ids = append(ids, m.ID())
	}
	assert.Equal(t, []string{"m1", "m2", "m3", "m4", "m5", "e1", "e2", "e3"}, ids)
	assert.Equal(t, []string{"m3", "m2", "m5"}, p.Metrics[7].DependsOn())

	raw, ok := p.Metrics[0].RawMetric()
	require.True(t, ok)
	assert.Equal(t, "vol-1", raw.DimensionValue)
	assert.Equal(t, "vol-1_VolumeTotalWriteTime", raw.Label)
	assert.Equal(t, "us-west-2", raw.Region)
	assert.False(t, raw.Visible)
}

func TestBuild_ResourceRegionAndAccount(t *testing.T) {
	b := testBuilder(t)

	w, err := b.Build(inventory.Resource{
		ID:        "vol-2",
		Tags:      map[string]string{"Name": "db"},
		Region:    "eu-west-1",
		AccountID: "222222222222",
	})
	require.NoError(t, err)

	p := w.Properties.(MetricProperties)
	assert.Equal(t, "eu-west-1", p.Region)
	assert.Equal(t, "EBS Metrics for vol-2 (db)", p.Title)
	d, ok := p.Metrics[5].DerivedMetric()
	require.True(t, ok)
	assert.Equal(t, "222222222222", d.AccountID)
	assert.Equal(t, "eu-west-1", d.Region)
}

func TestBuild_IsPure(t *testing.T) {
	b := testBuilder(t)
	r := inventory.Resource{ID: "vol-1"}

	w1, err := b.Build(r)
	require.NoError(t, err)
	w2, err := b.Build(r)
	require.NoError(t, err)

	j1, err := Dashboard{Widgets: []Widget{w1}}.Render()
	require.NoError(t, err)
	j2, err := Dashboard{Widgets: []Widget{w2}}.Render()
	require.NoError(t, err)
	assert.Equal(t, j1, j2)
}

func TestBuild_EmptyID(t *testing.T) {
	_, err := testBuilder(t).Build(inventory.Resource{})
	assert.Error(t, err)
}

func TestDashboardRender(t *testing.T) {
	b := testBuilder(t)
	w, err := b.Build(inventory.Resource{ID: "vol-1"})
	require.NoError(t, err)

	body, err := Dashboard{Widgets: []Widget{w}}.Render()
	require.NoError(t, err)

	var doc struct {
		Widgets []struct {
			Type       string         `json:"type"`
			Width      int            `json:"width"`
			Height     int            `json:"height"`
			Properties map[string]any `json:"properties"`
		} `json:"widgets"`
	}
	require.NoError(t, json.Unmarshal(body, &doc))
	require.Len(t, doc.Widgets, 1)
	assert.Equal(t, "metric", doc.Widgets[0].Type)
	assert.Equal(t, 12, doc.Widgets[0].Width)
	assert.Equal(t, 6, doc.Widgets[0].Height)
	assert.Equal(t, "timeSeries", doc.Widgets[0].Properties["view"])
	assert.Equal(t, float64(60), doc.Widgets[0].Properties["period"])
	assert.Len(t, doc.Widgets[0].Properties["metrics"], 8)

	assert.Contains(t, string(body), `"expression":"IF(m3>0 AND m2+m5==0, 1, 0)"`)
	assert.NotContains(t, string(body), `\u003e`)
}

func TestDashboardRender_EmptyAndText(t *testing.T) {
	body, err := Dashboard{}.Render()
	require.NoError(t, err)
	assert.Equal(t, `{"widgets":[]}`, string(body))

	text := Widget{Width: 24, Height: 4, Properties: TextProperties{Markdown: "## Hi"}}
	assert.Equal(t, 0, MetricCount(text))
	body, err = Dashboard{Widgets: []Widget{text}}.Render()
	require.NoError(t, err)
	assert.Equal(t, `{"widgets":[{"type":"text","width":24,"height":4,"properties":{"markdown":"## Hi"}}]}`, string(body))
}

func TestTotalMetricCount(t *testing.T) {
	b := testBuilder(t)
	ws, err := b.BuildAll([]inventory.Resource{{ID: "vol-1"}, {ID: "vol-2"}, {ID: "vol-3"}})
	require.NoError(t, err)
	assert.Equal(t, 24, TotalMetricCount(ws))
}
