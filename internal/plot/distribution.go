package plot

import (
	"fmt"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/leapstack-labs/leapeda/internal/stats"
)

// Histogram draws a count histogram of values with a kernel density
// estimate scaled to the same units and clipped to the data range.
func Histogram(s *Surface, size Size, title, column string, values []float64) error {
	size = size.orDefault()

	bins, err := stats.Bins(values)
	if err != nil {
		return fmt.Errorf("histogram %s: %w", column, err)
	}
	curve, err := stats.KDE(values, stats.DefaultGridSize, 0)
	if err != nil {
		return fmt.Errorf("histogram %s: %w", column, err)
	}

	n := 0
	for _, b := range bins {
		n += b.Count
	}
	density := curve.Scale(float64(n) * bins[0].Width())

	// Trace the bar outlines as one closed step path so it fills to zero.
	xs := make([]float64, 0, 2*len(bins)+2)
	ys := make([]float64, 0, 2*len(bins)+2)
	xs, ys = append(xs, bins[0].Lo), append(ys, 0)
	peak := 0
	for _, b := range bins {
		xs = append(xs, b.Lo, b.Hi)
		ys = append(ys, float64(b.Count), float64(b.Count))
		peak = max(peak, b.Count)
	}
	xs, ys = append(xs, bins[len(bins)-1].Hi), append(ys, 0)

	top := max(float64(peak), density.Max()) * 1.05
	c := Color(0)

	ch := chart.Chart{
		Title:      title,
		Width:      size.Width,
		Height:     size.Height,
		Background: titled(title),
		XAxis: chart.XAxis{
			Name:  column,
			Range: padRange(bins[0].Lo, bins[len(bins)-1].Hi, 0.05),
		},
		YAxis: chart.YAxis{
			Name:  "Count",
			Range: &chart.ContinuousRange{Min: 0, Max: top},
		},
		Series: []chart.Series{
			lineSeries("Count", xs, ys, c, 1, true),
			lineSeries("Density", density.X, density.Y, c, 2, false),
		},
	}
	return s.Draw(ch)
}
