package commands

import (
	"github.com/leapstack-labs/leapeda/internal/cli/output"
	"github.com/leapstack-labs/leapeda/internal/eda"
)

// ViewOutput is the JSON form of an analysis view.
type ViewOutput struct {
	Mode    string       `json:"mode"`
	Heading string       `json:"heading"`
	Info    string       `json:"info,omitempty"`
	Warning string       `json:"warning,omitempty"`
	Metrics []MetricJSON `json:"metrics,omitempty"`
	Tables  []TableJSON  `json:"tables,omitempty"`
	Chart   *ChartJSON   `json:"chart,omitempty"`
}

// MetricJSON is one headline figure.
type MetricJSON struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// TableJSON is one table of a view.
type TableJSON struct {
	Title  string     `json:"title,omitempty"`
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// ChartJSON describes a chart written to disk.
type ChartJSON struct {
	Title string `json:"title"`
	Path  string `json:"path,omitempty"`
}

func buildViewOutput(view *eda.View, chartPath string) ViewOutput {
	out := ViewOutput{
		Mode:    string(view.Mode),
		Heading: view.Heading,
		Info:    view.Info,
		Warning: view.Warning,
	}
	for _, m := range view.Metrics {
		out.Metrics = append(out.Metrics, MetricJSON(m))
	}
	for _, t := range view.Tables {
		out.Tables = append(out.Tables, TableJSON{Title: t.Title, Header: t.Header, Rows: t.Rows})
	}
	if view.HasChart() {
		out.Chart = &ChartJSON{Title: view.Artifact.Title, Path: chartPath}
	}
	return out
}

// renderView writes a view the way the dashboard lays it out: heading,
// callouts, first table, metrics, remaining tables.
func renderView(r *output.Renderer, view *eda.View, chartPath string) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(buildViewOutput(view, chartPath))
	}

	r.Header(1, view.Heading)
	if view.Warning != "" {
		r.Warning(view.Warning)
	}
	if view.Info != "" {
		r.Muted(view.Info)
	}

	for i, t := range view.Tables {
		if i == 1 {
			renderMetrics(r, view.Metrics)
		}
		if t.Title != "" {
			r.Header(2, t.Title)
		}
		r.Table(t.Header, t.Rows)
	}
	if len(view.Tables) < 2 {
		renderMetrics(r, view.Metrics)
	}

	if view.HasChart() && chartPath != "" {
		r.Success("Wrote " + view.Artifact.Title + " to " + chartPath)
	}
	return nil
}

func renderMetrics(r *output.Renderer, metrics []eda.Metric) {
	if len(metrics) == 0 {
		return
	}
	r.Println("")
	for _, m := range metrics {
		r.KeyValue(m.Label, m.Value)
	}
	r.Println("")
}
