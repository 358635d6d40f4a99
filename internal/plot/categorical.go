package plot

import (
	"fmt"
	"math"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/leapstack-labs/leapeda/internal/stats"
)

const (
	// StripJitter is the horizontal spread of strip plot points, in slots.
	StripJitter = 0.1
	// SwarmDotSize is the swarm marker diameter in pixels.
	SwarmDotSize = 7.0

	boxenWidth = 0.8
	jitterSeed = 42
)

func valueRange(groups []Group) *chart.ContinuousRange {
	all := make([][]float64, len(groups))
	for i, g := range groups {
		all[i] = g.Values
	}
	lo, hi := extent(all...)
	return padRange(lo, hi, 0.05)
}

func categorical(title, category, column string, size Size, groups []Group, yrange *chart.ContinuousRange) chart.Chart {
	return chart.Chart{
		Title:      title,
		Width:      size.Width,
		Height:     size.Height,
		Background: titled(title),
		XAxis:      categoryAxis(category, labelsOf(groups)),
		YAxis:      chart.YAxis{Name: column, Range: yrange},
	}
}

// Boxen draws a letter-value plot of each group: nested boxes at
// successively finer quantiles with a median bar and outlier points.
func Boxen(s *Surface, size Size, title, category, column string, groups []Group) error {
	if len(groups) == 0 {
		return fmt.Errorf("boxen %s: %w", column, stats.ErrEmpty)
	}
	size = size.orDefault()

	letters := make([]stats.LetterValues, len(groups))
	for i, g := range groups {
		lv, err := stats.ComputeLetterValues(g.Values)
		if err != nil {
			return fmt.Errorf("boxen %s/%s: %w", column, g.Label, err)
		}
		letters[i] = lv
	}

	yrange := valueRange(groups)
	ch := categorical(title, category, column, size, groups, yrange)
	for i, lv := range letters {
		xs := make([]float64, len(lv.Outliers))
		for j := range xs {
			xs[j] = float64(i)
		}
		ch.Series = append(ch.Series, chart.ContinuousSeries{
			Name: groups[i].Label,
			Style: chart.Style{
				StrokeWidth: chart.Disabled,
				DotWidth:    2.5,
				DotColor:    lineColor,
			},
			XValues: xs,
			YValues: lv.Outliers,
		})
	}

	xrange := ch.XAxis.Range.(*chart.ContinuousRange)
	ch.Elements = []chart.Renderable{
		func(r chart.Renderer, cb chart.Box, _ chart.Style) {
			p := projector{box: cb, xrange: xrange, yrange: yrange}
			for i, lv := range letters {
				drawLetterBoxes(r, p, float64(i), lv, i)
			}
		},
	}
	return s.Draw(ch)
}

func drawLetterBoxes(r chart.Renderer, p projector, center float64, lv stats.LetterValues, hue int) {
	k := len(lv.Boxes)
	base := Color(hue)
	// Deepest boxes are tallest and narrowest; draw them first so the
	// wider central boxes sit on top.
	for d := k - 1; d >= 0; d-- {
		b := lv.Boxes[d]
		half := boxenWidth / 2 * float64(k-d) / float64(k)
		alpha := uint8(255 - d*150/max(k, 1))
		x0, y0 := p.point(center-half, b.Hi)
		x1, y1 := p.point(center+half, b.Lo)
		polygon(r, [][2]int{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}}, base.WithAlpha(alpha), lineColor, 0.75)
	}
	if k > 0 {
		half := boxenWidth / 2
		x0, y := p.point(center-half, lv.Median)
		x1, _ := p.point(center+half, lv.Median)
		segment(r, x0, y, x1, y, lineColor, 2)
	}
}

// Strip draws each group's values as a jittered column of points.
func Strip(s *Surface, size Size, title, category, column string, groups []Group) error {
	if len(groups) == 0 {
		return fmt.Errorf("strip %s: %w", column, stats.ErrEmpty)
	}
	size = size.orDefault()

	ch := categorical(title, category, column, size, groups, valueRange(groups))
	for i, g := range groups {
		offsets := stats.Jitter(len(g.Values), StripJitter, uint64(jitterSeed+i))
		xs := make([]float64, len(g.Values))
		for j := range xs {
			xs[j] = float64(i) + offsets[j]
		}
		ch.Series = append(ch.Series, scatterSeries(g.Label, xs, g.Values, Color(i)))
	}
	return s.Draw(ch)
}

// Swarm draws each group's values as a beeswarm: points are nudged
// sideways just enough that markers do not overlap.
func Swarm(s *Surface, size Size, title, category, column string, groups []Group) error {
	if len(groups) == 0 {
		return fmt.Errorf("swarm %s: %w", column, stats.ErrEmpty)
	}
	size = size.orDefault()

	yrange := valueRange(groups)
	ch := categorical(title, category, column, size, groups, yrange)

	// Approximate plot area; the exact canvas is only known during Render.
	plotW := float64(size.Width - 100)
	plotH := float64(size.Height - 110)
	yScale := plotH / yrange.GetDelta()
	xPerPixel := float64(len(groups)) / plotW
	limit := boxenWidth / 2

	for i, g := range groups {
		offsets := stats.Swarm(g.Values, yScale, SwarmDotSize)
		xs := make([]float64, len(g.Values))
		for j, off := range offsets {
			dx := math.Max(-limit, math.Min(limit, off*xPerPixel))
			xs[j] = float64(i) + dx
		}
		ch.Series = append(ch.Series, scatterSeries(g.Label, xs, g.Values, Color(i)))
	}
	return s.Draw(ch)
}
