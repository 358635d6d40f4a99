// Package plot draws the analysis figures as SVG panels using go-chart.
//
// Every builder takes a Surface, renders one or more chart.Chart values
// into it and returns. Geometry that go-chart has no series type for
// (letter-value boxes, hexagons, density cells) is drawn through chart
// Elements, which receive the final canvas box after axes are measured.
package plot

import (
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Palette is the hue cycle used for grouped data.
var Palette = []drawing.Color{
	drawing.ColorFromHex("1f77b4"),
	drawing.ColorFromHex("ff7f0e"),
	drawing.ColorFromHex("2ca02c"),
	drawing.ColorFromHex("d62728"),
	drawing.ColorFromHex("9467bd"),
}

// Color returns the palette entry for hue level i.
func Color(i int) drawing.Color {
	return Palette[i%len(Palette)]
}

// Size is a panel size in pixels.
type Size struct {
	Width  int
	Height int
}

// DefaultSize matches an 8x6 inch figure at 100 dpi.
var DefaultSize = Size{Width: 800, Height: 600}

func (s Size) orDefault() Size {
	if s.Width <= 0 || s.Height <= 0 {
		return DefaultSize
	}
	return s
}

// Group is one hue level of a single variable.
type Group struct {
	Label  string
	Values []float64
}

// PointGroup is one hue level of paired observations.
type PointGroup struct {
	Label string
	X     []float64
	Y     []float64
}

const (
	dotWidth    = 3.0
	fillAlpha   = 80
	outlineGray = "4d4d4d"
)

var (
	textColor = drawing.ColorFromHex("333333")
	lineColor = drawing.ColorFromHex(outlineGray)
)

// titled returns background padding leaving room for a chart title.
func titled(title string) chart.Style {
	top := 12
	if title != "" {
		top = 44
	}
	return chart.Style{Padding: chart.Box{Top: top, Left: 16, Right: 12, Bottom: 12}}
}

// padRange widens [lo, hi] by frac of its span on both ends.
func padRange(lo, hi, frac float64) *chart.ContinuousRange {
	span := hi - lo
	if span == 0 {
		span = math.Max(math.Abs(lo), 1)
	}
	return &chart.ContinuousRange{Min: lo - span*frac, Max: hi + span*frac}
}

func extent(groups ...[]float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, g := range groups {
		for _, v := range g {
			if math.IsNaN(v) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if math.IsInf(lo, 1) {
		return 0, 1
	}
	return lo, hi
}

// categoryAxis places labels at 0..n-1 with half a slot of margin either side.
func categoryAxis(name string, labels []string) chart.XAxis {
	ticks := make([]chart.Tick, 0, len(labels)+2)
	ticks = append(ticks, chart.Tick{Value: -0.5})
	for i, l := range labels {
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: l})
	}
	ticks = append(ticks, chart.Tick{Value: float64(len(labels)) - 0.5})
	return chart.XAxis{
		Name:  name,
		Ticks: ticks,
		Range: &chart.ContinuousRange{Min: -0.5, Max: float64(len(labels)) - 0.5},
	}
}

func labelsOf(groups []Group) []string {
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.Label
	}
	return out
}

// projector maps data coordinates to pixels inside a rendered canvas. The
// ranges must be the same pointers handed to the chart axes, since Render
// sets their pixel domains.
type projector struct {
	box    chart.Box
	xrange *chart.ContinuousRange
	yrange *chart.ContinuousRange
}

func (p projector) point(x, y float64) (int, int) {
	return p.box.Left + p.xrange.Translate(x), p.box.Bottom - p.yrange.Translate(y)
}

func polygon(r chart.Renderer, pts [][2]int, fill, stroke drawing.Color, width float64) {
	if len(pts) < 3 {
		return
	}
	r.SetFillColor(fill)
	r.SetStrokeColor(stroke)
	r.SetStrokeWidth(width)
	r.MoveTo(pts[0][0], pts[0][1])
	for _, p := range pts[1:] {
		r.LineTo(p[0], p[1])
	}
	r.Close()
	r.FillStroke()
}

func segment(r chart.Renderer, x0, y0, x1, y1 int, stroke drawing.Color, width float64) {
	r.SetStrokeColor(stroke)
	r.SetStrokeWidth(width)
	r.MoveTo(x0, y0)
	r.LineTo(x1, y1)
	r.Stroke()
}

// hueLegend draws a swatch and label per hue level in the canvas corner.
func hueLegend(title string, labels []string) chart.Renderable {
	return func(r chart.Renderer, cb chart.Box, defaults chart.Style) {
		if len(labels) == 0 {
			return
		}
		r.SetFont(defaults.GetFont())
		r.SetFontSize(9)
		r.SetFontColor(textColor)

		const rowH, pad = 14, 6
		left := cb.Right - 110
		top := cb.Top + pad
		rows := len(labels)
		if title != "" {
			rows++
		}
		polygon(r, [][2]int{
			{left, top},
			{cb.Right - pad, top},
			{cb.Right - pad, top + rows*rowH + pad},
			{left, top + rows*rowH + pad},
		}, drawing.ColorWhite.WithAlpha(220), drawing.ColorFromHex("cccccc"), 1)

		y := top + rowH
		if title != "" {
			r.SetFontColor(textColor)
			r.Text(title, left+pad, y)
			y += rowH
		}
		for i, l := range labels {
			c := Color(i)
			r.SetFillColor(c)
			r.SetStrokeColor(c)
			r.SetStrokeWidth(1)
			r.Circle(4, left+pad+4, y-4)
			r.FillStroke()
			r.SetFontColor(textColor)
			r.Text(l, left+pad+14, y)
			y += rowH
		}
	}
}

func scatterSeries(name string, xs, ys []float64, c drawing.Color) chart.ContinuousSeries {
	return chart.ContinuousSeries{
		Name: name,
		Style: chart.Style{
			StrokeWidth: chart.Disabled,
			DotWidth:    dotWidth,
			DotColor:    c.WithAlpha(200),
			StrokeColor: c.WithAlpha(200),
		},
		XValues: xs,
		YValues: ys,
	}
}

func lineSeries(name string, xs, ys []float64, c drawing.Color, width float64, fill bool) chart.ContinuousSeries {
	style := chart.Style{StrokeColor: c, StrokeWidth: width}
	if fill {
		style.FillColor = c.WithAlpha(fillAlpha)
	}
	return chart.ContinuousSeries{Name: name, Style: style, XValues: xs, YValues: ys}
}

// anchor is an empty visible series. go-chart refuses charts with no
// visible series even when all drawing happens in Elements.
func anchor(name string) chart.ContinuousSeries {
	return chart.ContinuousSeries{Name: name, Style: chart.Style{StrokeWidth: chart.Disabled}}
}
