// Package stats computes the descriptive statistics and chart geometry used
// by the analysis views: summaries, kernel densities, histogram bins,
// letter values, hexagonal bins, and categorical point layouts.
package stats

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"
)

// ErrEmpty is returned when a computation needs at least one value.
var ErrEmpty = errors.New("no values")

// SummaryStats lists the row labels of a Summary in display order.
var SummaryStats = []string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"}

// ColumnSummary holds the describe() figures for one column.
type ColumnSummary struct {
	Name  string
	Count int
	Mean  float64
	Std   float64
	Min   float64
	Q1    float64
	Q2    float64
	Q3    float64
	Max   float64
}

// Values returns the figures in SummaryStats order.
func (c ColumnSummary) Values() []float64 {
	return []float64{float64(c.Count), c.Mean, c.Std, c.Min, c.Q1, c.Q2, c.Q3, c.Max}
}

// Summary is a describe() table: one ColumnSummary per numeric column.
type Summary struct {
	Columns []ColumnSummary
}

// Names returns the summarised column names.
func (s *Summary) Names() []string {
	out := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		out[i] = c.Name
	}
	return out
}

// Row returns the figures for one statistic across all columns.
func (s *Summary) Row(stat string) ([]float64, error) {
	idx := -1
	for i, name := range SummaryStats {
		if name == stat {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("unknown statistic %q", stat)
	}
	out := make([]float64, len(s.Columns))
	for i, c := range s.Columns {
		out[i] = c.Values()[idx]
	}
	return out, nil
}

// Describe summarises each named column. NaN values are skipped like pandas does.
func Describe(names []string, columns [][]float64) (*Summary, error) {
	if len(names) != len(columns) {
		return nil, fmt.Errorf("describe: %d names for %d columns", len(names), len(columns))
	}
	out := &Summary{Columns: make([]ColumnSummary, 0, len(names))}
	for i, name := range names {
		cs, err := DescribeColumn(name, columns[i])
		if err != nil {
			return nil, err
		}
		out.Columns = append(out.Columns, cs)
	}
	return out, nil
}

// DescribeColumn computes count, mean, sample standard deviation, min,
// quartiles, and max for one column.
func DescribeColumn(name string, values []float64) (ColumnSummary, error) {
	data := dropNaN(values)
	if len(data) == 0 {
		return ColumnSummary{}, fmt.Errorf("describe %s: %w", name, ErrEmpty)
	}

	mean, err := stats.Mean(data)
	if err != nil {
		return ColumnSummary{}, fmt.Errorf("describe %s: %w", name, err)
	}
	std := math.NaN()
	if len(data) > 1 {
		if std, err = stats.StandardDeviationSample(data); err != nil {
			return ColumnSummary{}, fmt.Errorf("describe %s: %w", name, err)
		}
	}
	lo, err := stats.Min(data)
	if err != nil {
		return ColumnSummary{}, fmt.Errorf("describe %s: %w", name, err)
	}
	hi, err := stats.Max(data)
	if err != nil {
		return ColumnSummary{}, fmt.Errorf("describe %s: %w", name, err)
	}

	sorted := Sorted(data)
	return ColumnSummary{
		Name:  name,
		Count: len(data),
		Mean:  mean,
		Std:   std,
		Min:   lo,
		Q1:    Quantile(sorted, 0.25),
		Q2:    Quantile(sorted, 0.5),
		Q3:    Quantile(sorted, 0.75),
		Max:   hi,
	}, nil
}

// Quantile interpolates linearly between the closest ranks of sorted,
// matching numpy's default method.
func Quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

// Sorted returns a sorted copy of values.
func Sorted(values []float64) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	sort.Float64s(out)
	return out
}

// Extent returns the minimum and maximum of values.
func Extent(values []float64) (lo, hi float64, err error) {
	if lo, err = stats.Min(values); err != nil {
		return 0, 0, ErrEmpty
	}
	if hi, err = stats.Max(values); err != nil {
		return 0, 0, ErrEmpty
	}
	return lo, hi, nil
}

func dropNaN(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}
