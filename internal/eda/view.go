package eda

import (
	"strconv"

	"github.com/leapstack-labs/leapeda/internal/plot"
	"github.com/leapstack-labs/leapeda/internal/stats"
)

// SummaryHeading titles the statistical summary view.
const SummaryHeading = "Descriptive Statistics"

// Metric is a labelled headline figure.
type Metric struct {
	Label string
	Value string
}

// Table is a rectangular block of display strings. When Index is set the
// first cell of every row is a row label rather than data.
type Table struct {
	Title  string
	Header []string
	Rows   [][]string
	Index  bool
}

// View is everything one interaction displays.
type View struct {
	Mode     Mode
	Heading  string
	Info     string
	Warning  string
	Metrics  []Metric
	Tables   []Table
	Artifact *plot.Artifact
}

// HasChart reports whether the view carries a rendered figure.
func (v *View) HasChart() bool {
	return v.Artifact != nil
}

// formatStat prints a summary figure with six decimals, as pandas does.
func formatStat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// SummaryTable lays a summary out like DataFrame.describe(): one row per
// statistic, one column per feature.
func SummaryTable(summary *stats.Summary) (Table, error) {
	table := Table{Header: append([]string{""}, summary.Names()...), Index: true}
	for _, stat := range stats.SummaryStats {
		values, err := summary.Row(stat)
		if err != nil {
			return Table{}, err
		}
		row := []string{stat}
		for _, v := range values {
			row = append(row, formatStat(v))
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}
