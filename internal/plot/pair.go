package plot

import (
	"fmt"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/leapstack-labs/leapeda/internal/stats"
)

// FrameGroup is one hue level of several variables. Columns[i] holds the
// values of the i-th variable of the enclosing Pair.
type FrameGroup struct {
	Label   string
	Columns [][]float64
}

// Pair is the input of a pairwise relationship grid.
type Pair struct {
	Names  []string
	Groups []FrameGroup
}

func (p Pair) column(i int) [][]float64 {
	out := make([][]float64, len(p.Groups))
	for g, fg := range p.Groups {
		out[g] = fg.Columns[i]
	}
	return out
}

// PairGrid draws an n x n grid for n variables: per-group density curves
// on the diagonal and hue-coloured scatters elsewhere.
func PairGrid(s *Surface, size Size, p Pair) error {
	n := len(p.Names)
	if n == 0 || len(p.Groups) == 0 {
		return fmt.Errorf("pair plot: %w", stats.ErrEmpty)
	}
	for _, g := range p.Groups {
		if len(g.Columns) != n {
			return fmt.Errorf("pair plot group %q: %d columns for %d names", g.Label, len(g.Columns), n)
		}
	}
	size = size.orDefault()
	cell := max(160, size.Height*3/8)

	bounds := make([][2]float64, n)
	for i := range p.Names {
		lo, hi := extent(p.column(i)...)
		r := padRange(lo, hi, 0.08)
		bounds[i] = [2]float64{r.Min, r.Max}
	}
	labels := make([]string, len(p.Groups))
	for i, g := range p.Groups {
		labels[i] = g.Label
	}

	s.SetColumns(n)
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			var (
				ch  chart.Chart
				err error
			)
			if row == col {
				ch, err = pairDiagonal(p, col, bounds[col])
			} else {
				ch = pairScatter(p, row, col, bounds[row], bounds[col])
			}
			if err != nil {
				return err
			}
			ch.Width, ch.Height = cell, cell
			ch.Background = chart.Style{Padding: chart.Box{Top: 8, Left: 8, Right: 8, Bottom: 8}}
			if row == n-1 {
				ch.XAxis.Name = p.Names[col]
			}
			if col == n-1 {
				ch.YAxis.Name = p.Names[row]
			}
			if row == 0 && col == n-1 {
				ch.Elements = append(ch.Elements, hueLegend("", labels))
			}
			if err := s.Draw(ch); err != nil {
				return err
			}
		}
	}
	return nil
}

func pairDiagonal(p Pair, col int, bound [2]float64) (chart.Chart, error) {
	ch := chart.Chart{
		XAxis: chart.XAxis{Range: &chart.ContinuousRange{Min: bound[0], Max: bound[1]}},
	}
	peak := 0.0
	for i, g := range p.Groups {
		curve, err := stats.KDE(g.Columns[col], stats.DefaultGridSize, stats.DefaultCut)
		if err != nil {
			return chart.Chart{}, fmt.Errorf("pair plot %s/%s: %w", p.Names[col], g.Label, err)
		}
		peak = max(peak, curve.Max())
		ch.Series = append(ch.Series, lineSeries(g.Label, curve.X, curve.Y, Color(i), 1.5, true))
	}
	if peak == 0 {
		peak = 1
	}
	ch.YAxis = chart.YAxis{Range: &chart.ContinuousRange{Min: 0, Max: peak * 1.05}}
	return ch, nil
}

func pairScatter(p Pair, row, col int, ybound, xbound [2]float64) chart.Chart {
	ch := chart.Chart{
		XAxis: chart.XAxis{Range: &chart.ContinuousRange{Min: xbound[0], Max: xbound[1]}},
		YAxis: chart.YAxis{Range: &chart.ContinuousRange{Min: ybound[0], Max: ybound[1]}},
	}
	for i, g := range p.Groups {
		series := scatterSeries(g.Label, g.Columns[col], g.Columns[row], Color(i))
		series.Style.DotWidth = 2
		ch.Series = append(ch.Series, series)
	}
	return ch
}
