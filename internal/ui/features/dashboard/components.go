package dashboard

import (
	"context"
	"encoding/json"
	"io"

	"github.com/a-h/templ"

	"github.com/leapstack-labs/leapeda/internal/dataset"
	"github.com/leapstack-labs/leapeda/internal/eda"
	"github.com/leapstack-labs/leapeda/internal/ui/features/common"
)

// postAnalysis re-runs the analysis whenever a control changes.
var postAnalysis = common.Action("post", "/analysis")

// DashboardPage renders the full dashboard document.
func DashboardPage(meta common.PageMeta, sig eda.Signals, pane templ.Component) templ.Component {
	return common.Page(meta, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := common.NewHTML(w)

		signals, err := json.Marshal(sig)
		if err != nil {
			return err
		}
		h.Rawf("<div class=\"app-shell\" %s>\n", common.Attr("data-signals", string(signals)))
		h.Component(ctx, Sidebar(sig))
		h.Component(ctx, pane)
		h.Raw("</div>\n")
		return h.Err()
	}))
}

// Sidebar renders the analysis selector and the per-mode controls.
func Sidebar(sig eda.Signals) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := common.NewHTML(w)
		h.Raw(`<aside class="sidebar" id="sidebar">`)
		h.Element("h2", "", SidebarHeader)

		modes := make([]string, len(eda.Modes))
		for i, m := range eda.Modes {
			modes[i] = string(m)
		}
		selectControl(h, ModeLabel, "mode", modes, sig.Mode)

		h.Component(ctx, Controls(sig))
		h.Raw("</aside>\n")
		return h.Err()
	})
}

// Controls renders the inputs of the selected mode. Joint plots only offer
// a plot type once the two axes differ.
func Controls(sig eda.Signals) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := common.NewHTML(w)
		h.Rawf(`<div %s>`, common.Attr("id", ControlsID))

		mode, err := eda.ParseMode(sig.Mode)
		if err != nil {
			mode = eda.ModeOverview
		}
		switch mode {
		case eda.ModeDistribution:
			selectControl(h, ColumnLabel, "column", dataset.NumericColumns, sig.Column)
		case eda.ModeBoxen, eda.ModeStrip, eda.ModeSwarm:
			selectControl(h, FeatureLabel, "column", dataset.NumericColumns, sig.Column)
		case eda.ModeJoint:
			selectControl(h, XLabel, "x", dataset.NumericColumns, sig.X)
			selectControl(h, YLabel, "y", dataset.NumericColumns, sig.Y)
			if sig.X != sig.Y {
				kinds := make([]string, len(eda.Kinds))
				for i, k := range eda.Kinds {
					kinds[i] = string(k)
				}
				selectControl(h, KindLabel, "kind", kinds, sig.Kind)
			}
		}

		h.Raw("</div>\n")
		return h.Err()
	})
}

func selectControl(h *common.HTML, label, signal string, options []string, selected string) {
	h.Raw(`<label class="control">`)
	h.Element("span", "control-label", label)
	h.Rawf("<select %s %s %s>", common.Attr("name", signal), common.BindAttr(signal), common.Attr("data-on:change", postAnalysis))
	for _, opt := range options {
		h.Rawf("<option %s%s>", common.Attr("value", opt), common.SelectedIf(opt == selected))
		h.Text(opt)
		h.Raw("</option>")
	}
	h.Raw("</select></label>\n")
}

// AnalysisPane renders a view. The preview table comes first, the headline
// metrics after it, then any further tables and the chart.
func AnalysisPane(view *eda.View) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := common.NewHTML(w)
		h.Rawf(`<main class="analysis" %s>`, common.Attr("id", AnalysisID))

		if view.Heading != "" {
			h.Element("h2", "", view.Heading)
		}
		if view.Warning != "" {
			h.Component(ctx, common.Alert(common.AlertWarning, view.Warning))
		}
		if view.Info != "" {
			h.Component(ctx, common.Alert(common.AlertInfo, view.Info))
		}

		for i, t := range view.Tables {
			if i == 1 {
				metrics(h, view.Metrics)
			}
			table(h, t)
		}
		if len(view.Tables) < 2 {
			metrics(h, view.Metrics)
		}

		if view.HasChart() {
			h.Rawf(`<figure class="chart" %s %s>`,
				common.Attr("data-artifact", view.Artifact.ID), common.Attr("aria-label", view.Artifact.Title))
			h.Raw(string(view.Artifact.SVG()))
			h.Raw("</figure>")
		}

		h.Raw("</main>\n")
		return h.Err()
	})
}

// ErrorPane replaces the analysis with an error message.
func ErrorPane(msg string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := common.NewHTML(w)
		h.Rawf(`<main class="analysis" %s>`, common.Attr("id", AnalysisID))
		h.Component(ctx, common.Alert(common.AlertError, msg))
		h.Raw("</main>\n")
		return h.Err()
	})
}

func metrics(h *common.HTML, ms []eda.Metric) {
	if len(ms) == 0 {
		return
	}
	h.Raw(`<div class="metrics">`)
	for _, m := range ms {
		h.Raw(`<div class="metric">`)
		h.Element("span", "metric-label", m.Label)
		h.Element("span", "metric-value", m.Value)
		h.Raw("</div>")
	}
	h.Raw("</div>\n")
}

func table(h *common.HTML, t eda.Table) {
	if t.Title != "" {
		h.Element("h3", "", t.Title)
	}
	h.Raw(`<div class="table-wrap"><table class="data"><thead><tr>`)
	for _, c := range t.Header {
		h.Element("th", "", c)
	}
	h.Raw("</tr></thead><tbody>")
	for _, row := range t.Rows {
		h.Raw("<tr>")
		for i, c := range row {
			if i == 0 && t.Index {
				h.Element("td", "index", c)
				continue
			}
			h.Element("td", "", c)
		}
		h.Raw("</tr>")
	}
	h.Raw("</tbody></table></div>\n")
}
