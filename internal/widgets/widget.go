package widgets

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Type is the kind of a dashboard widget.
type Type string

const (
	TypeMetric Type = "metric"
	TypeText   Type = "text"
)

// Properties is the type specific part of a widget.
type Properties interface {
	widgetType() Type
}

// MetricProperties describes a time series chart.
type MetricProperties struct {
	Metrics []MetricRef `json:"metrics"`
	View    string      `json:"view"`
	Stacked bool        `json:"stacked"`
	Region  string      `json:"region"`
	Title   string      `json:"title"`
	Period  int         `json:"period"`
	Stat    string      `json:"stat"`
}

func (MetricProperties) widgetType() Type { return TypeMetric }

// TextProperties describes a markdown widget.
type TextProperties struct {
	Markdown string `json:"markdown"`
}

func (TextProperties) widgetType() Type { return TypeText }

// Widget is one chart or text unit of a dashboard.
type Widget struct {
	ResourceID string // Not rendered
	Width      int
	Height     int
	Properties Properties
}

// Type returns the widget type implied by its properties.
func (w Widget) Type() Type {
	if w.Properties == nil {
		return ""
	}
	return w.Properties.widgetType()
}

// MetricCount is the number of raw and derived series of w, the unit the
// per-dashboard limit is counted in.
func MetricCount(w Widget) int {
	if p, ok := w.Properties.(MetricProperties); ok {
		return len(p.Metrics)
	}
	return 0
}

// TotalMetricCount sums MetricCount over ws.
func TotalMetricCount(ws []Widget) int {
	n := 0
	for _, w := range ws {
		n += MetricCount(w)
	}
	return n
}

type renderedWidget struct {
	Type       Type       `json:"type"`
	Width      int        `json:"width"`
	Height     int        `json:"height"`
	Properties Properties `json:"properties"`
}

// MarshalJSON renders {"type", "width", "height", "properties"}.
func (w Widget) MarshalJSON() ([]byte, error) {
	if w.Properties == nil {
		return nil, fmt.Errorf("widget for %q has no properties", w.ResourceID)
	}
	return marshal(renderedWidget{
		Type:       w.Type(),
		Width:      w.Width,
		Height:     w.Height,
		Properties: w.Properties,
	})
}

// Dashboard is a complete dashboard document.
type Dashboard struct {
	Widgets []Widget `json:"widgets"`
}

// Render returns the compact JSON body of d.
func (d Dashboard) Render() ([]byte, error) {
	if d.Widgets == nil {
		d.Widgets = []Widget{}
	}
	return marshal(d)
}

// marshal is json.Marshal without HTML escaping; expressions such as
// "m3>0" must reach the renderer verbatim.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
