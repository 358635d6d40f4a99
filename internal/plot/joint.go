package plot

import (
	"fmt"
	"math"
	"sort"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/leapstack-labs/leapeda/internal/stats"
)

const (
	marginRatio  = 4
	densityGrid  = 32
	densityLevel = 5
	hexGridSize  = 20

	// gutters approximate the space go-chart gives the main panel's axes,
	// so the marginal canvases line up with it.
	axisGutterRight  = 72
	axisGutterBottom = 44
)

// Joint is the input of a bivariate figure. Each group is one hue level;
// figures drawn without hue pool the groups.
type Joint struct {
	XName  string
	YName  string
	Groups []PointGroup
}

func (j Joint) pooled() PointGroup {
	var out PointGroup
	for _, g := range j.Groups {
		out.X = append(out.X, g.X...)
		out.Y = append(out.Y, g.Y...)
	}
	return out
}

func (j Joint) labels() []string {
	out := make([]string, len(j.Groups))
	for i, g := range j.Groups {
		out[i] = g.Label
	}
	return out
}

func (j Joint) validate() error {
	if len(j.Groups) == 0 {
		return fmt.Errorf("joint %s/%s: %w", j.XName, j.YName, stats.ErrEmpty)
	}
	for _, g := range j.Groups {
		if len(g.X) == 0 || len(g.X) != len(g.Y) {
			return fmt.Errorf("joint %s/%s group %q: %w", j.XName, j.YName, g.Label, stats.ErrEmpty)
		}
	}
	return nil
}

// jointFrame carries the shared axis bounds of the main and marginal panels.
type jointFrame struct {
	xlo, xhi       float64
	ylo, yhi       float64
	main, marginal int
}

func newJointFrame(size Size, j Joint, pad float64) jointFrame {
	size = size.orDefault()
	all := j.pooled()
	xlo, xhi := extent(all.X)
	ylo, yhi := extent(all.Y)
	xr := padRange(xlo, xhi, pad)
	yr := padRange(ylo, yhi, pad)
	main := size.Height
	return jointFrame{
		xlo:      xr.Min,
		xhi:      xr.Max,
		ylo:      yr.Min,
		yhi:      yr.Max,
		main:     main,
		marginal: main / marginRatio,
	}
}

func (f jointFrame) xrange() *chart.ContinuousRange {
	return &chart.ContinuousRange{Min: f.xlo, Max: f.xhi}
}

func (f jointFrame) yrange() *chart.ContinuousRange {
	return &chart.ContinuousRange{Min: f.ylo, Max: f.yhi}
}

func (f jointFrame) mainChart(j Joint) chart.Chart {
	return chart.Chart{
		Width:      f.main + axisGutterRight,
		Height:     f.main,
		Background: titled(""),
		XAxis:      chart.XAxis{Name: j.XName, Range: f.xrange()},
		YAxis:      chart.YAxis{Name: j.YName, Range: f.yrange()},
	}
}

// draw lays the figure out as a 2x2 grid: top marginal, empty corner,
// main panel, right marginal.
func (f jointFrame) draw(s *Surface, main, top, right chart.Chart) error {
	s.SetColumns(2)
	if err := s.Draw(top); err != nil {
		return err
	}
	s.Blank(f.marginal, f.marginal)
	if err := s.Draw(main); err != nil {
		return err
	}
	return s.Draw(right)
}

type marginalCurve struct {
	x, y []float64
	c    drawing.Color
	bars []stats.Bin
}

func (f jointFrame) topMarginal(curves []marginalCurve) chart.Chart {
	xr := f.xrange()
	ch := chart.Chart{
		Width:  f.main + axisGutterRight,
		Height: f.marginal,
		Background: chart.Style{Padding: chart.Box{
			Top: 8, Left: 16, Right: 12 + axisGutterRight, Bottom: 2, IsSet: true,
		}},
		XAxis: chart.XAxis{Style: chart.Hidden(), Range: xr},
		YAxis: chart.YAxis{Style: chart.Hidden(), Range: &chart.ContinuousRange{Min: 0, Max: marginalPeak(curves)}},
	}
	yr := ch.YAxis.Range.(*chart.ContinuousRange)
	for _, mc := range curves {
		if len(mc.x) > 0 {
			ch.Series = append(ch.Series, lineSeries("", mc.x, mc.y, mc.c, 1.5, true))
		}
	}
	if len(ch.Series) == 0 {
		ch.Series = append(ch.Series, anchor(""))
	}
	ch.Elements = []chart.Renderable{marginalBars(curves, xr, yr, false)}
	return ch
}

func (f jointFrame) rightMarginal(curves []marginalCurve) chart.Chart {
	yr := f.yrange()
	ch := chart.Chart{
		Width:  f.marginal,
		Height: f.main,
		Background: chart.Style{Padding: chart.Box{
			Top: 12, Left: 2, Right: 8, Bottom: 12 + axisGutterBottom, IsSet: true,
		}},
		XAxis: chart.XAxis{Style: chart.Hidden(), Range: &chart.ContinuousRange{Min: 0, Max: marginalPeak(curves)}},
		YAxis: chart.YAxis{Style: chart.Hidden(), Range: yr},
	}
	xr := ch.XAxis.Range.(*chart.ContinuousRange)
	for _, mc := range curves {
		if len(mc.x) > 0 {
			// Rotated: density on the x axis, values on the y axis.
			ch.Series = append(ch.Series, lineSeries("", mc.y, mc.x, mc.c, 1.5, false))
		}
	}
	if len(ch.Series) == 0 {
		ch.Series = append(ch.Series, anchor(""))
	}
	ch.Elements = []chart.Renderable{marginalBars(curves, xr, yr, true)}
	return ch
}

func marginalPeak(curves []marginalCurve) float64 {
	peak := 0.0
	for _, mc := range curves {
		for _, v := range mc.y {
			peak = math.Max(peak, v)
		}
		for _, b := range mc.bars {
			peak = math.Max(peak, float64(b.Count))
		}
	}
	if peak == 0 {
		return 1
	}
	return peak * 1.05
}

func marginalBars(curves []marginalCurve, xr, yr *chart.ContinuousRange, rotated bool) chart.Renderable {
	return func(r chart.Renderer, cb chart.Box, _ chart.Style) {
		p := projector{box: cb, xrange: xr, yrange: yr}
		for _, mc := range curves {
			for _, b := range mc.bars {
				c := float64(b.Count)
				var x0, y0, x1, y1 int
				if rotated {
					x0, y0 = p.point(0, b.Hi)
					x1, y1 = p.point(c, b.Lo)
				} else {
					x0, y0 = p.point(b.Lo, c)
					x1, y1 = p.point(b.Hi, 0)
				}
				polygon(r, [][2]int{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}}, mc.c.WithAlpha(fillAlpha), mc.c, 0.75)
			}
		}
	}
}

// hueDensities builds per-group KDE marginals for both axes.
func hueDensities(j Joint) (top, right []marginalCurve, err error) {
	for i, g := range j.Groups {
		cx, err := stats.KDE(g.X, stats.DefaultGridSize, stats.DefaultCut)
		if err != nil {
			return nil, nil, fmt.Errorf("joint %s marginal: %w", j.XName, err)
		}
		cy, err := stats.KDE(g.Y, stats.DefaultGridSize, stats.DefaultCut)
		if err != nil {
			return nil, nil, fmt.Errorf("joint %s marginal: %w", j.YName, err)
		}
		top = append(top, marginalCurve{x: cx.X, y: cx.Y, c: Color(i)})
		right = append(right, marginalCurve{x: cy.X, y: cy.Y, c: Color(i)})
	}
	return top, right, nil
}

// histograms builds pooled histogram marginals, with a count-scaled KDE
// when withDensity is set.
func histograms(j Joint, withDensity bool) (top, right []marginalCurve, err error) {
	all := j.pooled()
	build := func(name string, values []float64) (marginalCurve, error) {
		bins, err := stats.Bins(values)
		if err != nil {
			return marginalCurve{}, fmt.Errorf("joint %s marginal: %w", name, err)
		}
		mc := marginalCurve{c: Color(0), bars: bins}
		if withDensity {
			curve, err := stats.KDE(values, stats.DefaultGridSize, 0)
			if err != nil {
				return marginalCurve{}, fmt.Errorf("joint %s marginal: %w", name, err)
			}
			scaled := curve.Scale(float64(len(values)) * bins[0].Width())
			mc.x, mc.y = scaled.X, scaled.Y
		}
		return mc, nil
	}
	tx, err := build(j.XName, all.X)
	if err != nil {
		return nil, nil, err
	}
	ry, err := build(j.YName, all.Y)
	if err != nil {
		return nil, nil, err
	}
	return []marginalCurve{tx}, []marginalCurve{ry}, nil
}

// JointScatter draws a hue-coloured scatter with per-group density marginals.
func JointScatter(s *Surface, size Size, j Joint) error {
	if err := j.validate(); err != nil {
		return err
	}
	f := newJointFrame(size, j, 0.05)
	top, right, err := hueDensities(j)
	if err != nil {
		return err
	}
	main := f.mainChart(j)
	for i, g := range j.Groups {
		main.Series = append(main.Series, scatterSeries(g.Label, g.X, g.Y, Color(i)))
	}
	main.Elements = []chart.Renderable{hueLegend("species", j.labels())}
	return f.draw(s, main, f.topMarginal(top), f.rightMarginal(right))
}

// JointRegression draws the pooled scatter with a least-squares fit line
// and histogram marginals.
func JointRegression(s *Surface, size Size, j Joint) error {
	if err := j.validate(); err != nil {
		return err
	}
	f := newJointFrame(size, j, 0.05)
	top, right, err := histograms(j, true)
	if err != nil {
		return err
	}

	all := j.pooled()
	order := make([]int, len(all.X))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return all.X[order[a]] < all.X[order[b]] })
	xs := make([]float64, len(order))
	ys := make([]float64, len(order))
	for i, idx := range order {
		xs[i], ys[i] = all.X[idx], all.Y[idx]
	}

	points := scatterSeries("", xs, ys, Color(0))
	main := f.mainChart(j)
	main.Series = []chart.Series{
		points,
		&chart.LinearRegressionSeries{
			InnerSeries: points,
			Style:       chart.Style{StrokeColor: Color(0), StrokeWidth: 2},
		},
	}
	return f.draw(s, main, f.topMarginal(top), f.rightMarginal(right))
}

// JointHex draws pooled observations as hexagonal bins shaded by count,
// with histogram marginals.
func JointHex(s *Surface, size Size, j Joint) error {
	if err := j.validate(); err != nil {
		return err
	}
	all := j.pooled()
	grid, err := stats.HexBin(all.X, all.Y, hexGridSize)
	if err != nil {
		return fmt.Errorf("joint %s/%s hexbin: %w", j.XName, j.YName, err)
	}
	f := newJointFrame(size, j, 0.05)
	top, right, err := histograms(j, false)
	if err != nil {
		return err
	}

	main := f.mainChart(j)
	main.Series = []chart.Series{anchor("")}
	xr := main.XAxis.Range.(*chart.ContinuousRange)
	yr := main.YAxis.Range.(*chart.ContinuousRange)
	peak := float64(grid.MaxCount())
	base := Color(0)
	main.Elements = []chart.Renderable{
		func(r chart.Renderer, cb chart.Box, _ chart.Style) {
			p := projector{box: cb, xrange: xr, yrange: yr}
			for _, h := range grid.Cells {
				alpha := uint8(40 + 215*float64(h.Count)/peak)
				polygon(r, hexagon(p, h, grid.Width, grid.Height), base.WithAlpha(alpha), drawing.ColorWhite, 0.5)
			}
		},
	}
	return f.draw(s, main, f.topMarginal(top), f.rightMarginal(right))
}

// hexagon returns the pixel corners of a pointy-top cell.
func hexagon(p projector, h stats.Hex, sx, sy float64) [][2]int {
	offsets := [6][2]float64{{0.5, -0.5}, {0.5, 0.5}, {0, 1}, {-0.5, 0.5}, {-0.5, -0.5}, {0, -1}}
	pts := make([][2]int, len(offsets))
	for i, o := range offsets {
		x, y := p.point(h.X+o[0]*sx, h.Y+o[1]*sy/3)
		pts[i] = [2]int{x, y}
	}
	return pts
}

// JointDensity draws per-group bivariate density regions shaded in
// discrete levels, with per-group density marginals.
func JointDensity(s *Surface, size Size, j Joint) error {
	if err := j.validate(); err != nil {
		return err
	}
	f := newJointFrame(size, j, 0.15)
	top, right, err := hueDensities(j)
	if err != nil {
		return err
	}

	surfaces := make([]stats.Surface, len(j.Groups))
	for i, g := range j.Groups {
		sf, err := stats.KDE2D(g.X, g.Y, densityGrid, f.xlo, f.xhi, f.ylo, f.yhi)
		if err != nil {
			return fmt.Errorf("joint %s/%s density: %w", j.XName, j.YName, err)
		}
		surfaces[i] = sf
	}

	main := f.mainChart(j)
	for _, g := range j.Groups {
		main.Series = append(main.Series, anchor(g.Label))
	}
	xr := main.XAxis.Range.(*chart.ContinuousRange)
	yr := main.YAxis.Range.(*chart.ContinuousRange)
	main.Elements = []chart.Renderable{
		func(r chart.Renderer, cb chart.Box, _ chart.Style) {
			p := projector{box: cb, xrange: xr, yrange: yr}
			for i, sf := range surfaces {
				drawDensityCells(r, p, sf, Color(i))
			}
		},
		hueLegend("species", j.labels()),
	}
	return f.draw(s, main, f.topMarginal(top), f.rightMarginal(right))
}

func drawDensityCells(r chart.Renderer, p projector, sf stats.Surface, c drawing.Color) {
	peak := sf.Max()
	if peak == 0 || len(sf.X) < 2 || len(sf.Y) < 2 {
		return
	}
	dx := (sf.X[1] - sf.X[0]) / 2
	dy := (sf.Y[1] - sf.Y[0]) / 2
	for i, row := range sf.Z {
		for k, z := range row {
			level := int(z / peak * densityLevel)
			if level < 1 {
				continue
			}
			x0, y0 := p.point(sf.X[k]-dx, sf.Y[i]+dy)
			x1, y1 := p.point(sf.X[k]+dx, sf.Y[i]-dy)
			alpha := uint8(min(level, densityLevel) * 200 / densityLevel)
			polygon(r, [][2]int{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}}, c.WithAlpha(alpha), c.WithAlpha(alpha), 0)
		}
	}
}
