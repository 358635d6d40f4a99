// Package dataset provides the bundled sample datasets and a process-wide
// cache for the loaded instance.
//
// A Dataset is read-only once loaded. Accessors return copies so callers
// can sort or transform the values without touching the shared frame.
package dataset

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"math"
	"path"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

//go:embed data/*.csv
var dataFS embed.FS

// Column names of the iris sample.
const (
	SepalLength = "sepal_length"
	SepalWidth  = "sepal_width"
	PetalLength = "petal_length"
	PetalWidth  = "petal_width"
	Species     = "species"
)

// DefaultName is the sample loaded when no dataset is configured.
const DefaultName = "iris"

var (
	// ErrUnknownDataset is returned when a named sample is not bundled.
	ErrUnknownDataset = errors.New("unknown dataset")

	// ErrUnknownColumn is returned when a column is not part of the dataset
	// or is not numeric where a numeric column is required.
	ErrUnknownColumn = errors.New("unknown column")
)

// NumericColumns lists the measurement columns of the iris sample in display order.
var NumericColumns = []string{SepalLength, SepalWidth, PetalLength, PetalWidth}

// schema pins column types so gota never guesses a measurement as int.
var schema = map[string]map[string]series.Type{
	"iris": {
		SepalLength: series.Float,
		SepalWidth:  series.Float,
		PetalLength: series.Float,
		PetalWidth:  series.Float,
		Species:     series.String,
	},
}

// labelColumn is the categorical column used for hue and grouping.
var labelColumn = map[string]string{
	"iris": Species,
}

// Dataset is an immutable in-memory table.
type Dataset struct {
	name  string
	label string
	frame dataframe.DataFrame
}

// Names returns the names of all bundled samples.
func Names() []string {
	names := make([]string, 0, len(schema))
	for name := range schema {
		names = append(names, name)
	}
	return names
}

// Open parses the named bundled sample.
func Open(name string) (*Dataset, error) {
	types, ok := schema[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDataset, name)
	}

	raw, err := dataFS.ReadFile(path.Join("data", name+".csv"))
	if err != nil {
		return nil, fmt.Errorf("failed to read sample %s: %w", name, err)
	}

	df := dataframe.ReadCSV(bytes.NewReader(raw),
		dataframe.WithTypes(types),
		dataframe.HasHeader(true),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("failed to parse sample %s: %w", name, df.Err)
	}

	return &Dataset{name: name, label: labelColumn[name], frame: df}, nil
}

// Name returns the sample name the dataset was loaded by.
func (d *Dataset) Name() string {
	return d.name
}

// Shape returns the row and column counts.
func (d *Dataset) Shape() (rows, cols int) {
	return d.frame.Nrow(), d.frame.Ncol()
}

// Columns returns all column names in file order.
func (d *Dataset) Columns() []string {
	return d.frame.Names()
}

// NumericColumns returns the names of all float columns in file order.
func (d *Dataset) NumericColumns() []string {
	var out []string
	for _, name := range d.frame.Names() {
		if d.frame.Col(name).Type() == series.Float {
			out = append(out, name)
		}
	}
	return out
}

// IsNumeric reports whether name is a float column of the dataset.
func (d *Dataset) IsNumeric(name string) bool {
	for _, c := range d.NumericColumns() {
		if c == name {
			return true
		}
	}
	return false
}

// Column returns a copy of a numeric column.
func (d *Dataset) Column(name string) ([]float64, error) {
	if !d.IsNumeric(name) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	return d.frame.Col(name).Float(), nil
}

// LabelColumn returns the name of the categorical label column.
func (d *Dataset) LabelColumn() string {
	return d.label
}

// Labels returns a copy of the label column, one entry per row.
func (d *Dataset) Labels() []string {
	return d.frame.Col(d.label).Records()
}

// Species returns the distinct labels in first-seen order.
func (d *Dataset) Species() []string {
	seen := make(map[string]bool)
	var out []string
	for _, l := range d.Labels() {
		if !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}
	return out
}

// Group is the values of one numeric column for one label.
type Group struct {
	Label  string
	Values []float64
}

// GroupBy splits a numeric column by label, in Species order.
func (d *Dataset) GroupBy(column string) ([]Group, error) {
	values, err := d.Column(column)
	if err != nil {
		return nil, err
	}
	labels := d.Labels()

	order := d.Species()
	index := make(map[string]int, len(order))
	groups := make([]Group, len(order))
	for i, l := range order {
		index[l] = i
		groups[i].Label = l
	}
	for i, v := range values {
		g := &groups[index[labels[i]]]
		g.Values = append(g.Values, v)
	}
	return groups, nil
}

// MissingValues counts empty or NaN cells across the whole table.
func (d *Dataset) MissingValues() int {
	n := 0
	for _, name := range d.frame.Names() {
		col := d.frame.Col(name)
		if col.Type() == series.Float {
			for _, v := range col.Float() {
				if math.IsNaN(v) {
					n++
				}
			}
			continue
		}
		for _, nan := range col.IsNaN() {
			if nan {
				n++
			}
		}
	}
	return n
}

// ColumnType describes the storage type of one column.
type ColumnType struct {
	Name string
	Type string
}

// ColumnTypes lists column dtypes the way pandas prints them.
func (d *Dataset) ColumnTypes() []ColumnType {
	out := make([]ColumnType, 0, d.frame.Ncol())
	for _, name := range d.frame.Names() {
		out = append(out, ColumnType{Name: name, Type: dtype(d.frame.Col(name).Type())})
	}
	return out
}

func dtype(t series.Type) string {
	switch t {
	case series.Float:
		return "float64"
	case series.Int:
		return "int64"
	case series.Bool:
		return "bool"
	default:
		return "object"
	}
}

// Records returns the table as string rows without the header. Floats are
// printed in their shortest form with at least one decimal place.
func (d *Dataset) Records() [][]string {
	rows, _ := d.Shape()
	names := d.frame.Names()
	out := make([][]string, rows)
	for i := range out {
		out[i] = make([]string, len(names))
	}
	for j, name := range names {
		col := d.frame.Col(name)
		if col.Type() == series.Float {
			for i, v := range col.Float() {
				out[i][j] = FormatFloat(v)
			}
			continue
		}
		for i, v := range col.Records() {
			out[i][j] = v
		}
	}
	return out
}

// FormatFloat prints v in its shortest form, keeping one decimal place for
// integral values so measurement columns read consistently.
func FormatFloat(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") && !math.IsInf(v, 0) {
		s += ".0"
	}
	return s
}
