package eda

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/leapstack-labs/leapeda/internal/dataset"
	"github.com/leapstack-labs/leapeda/internal/plot"
	"github.com/leapstack-labs/leapeda/internal/stats"
)

// JointWarning is shown instead of a joint plot when both axes name the
// same column.
const JointWarning = "Please select different columns for X and Y axis"

// PairInfo annotates the pair plot.
const PairInfo = "Color coded by species"

// Options tunes a Controller.
type Options struct {
	// ChartSize is the size of single-panel charts.
	ChartSize plot.Size
	// PreviewRows caps the overview table; zero shows every row.
	PreviewRows int
	Logger      *slog.Logger
}

// Controller dispatches selections against a dataset. It holds no per-user
// state and is safe for concurrent use.
type Controller struct {
	surfaces *plot.Pool
	opts     Options
	logger   *slog.Logger
}

// NewController creates a controller drawing on surfaces from pool.
func NewController(pool *plot.Pool, opts Options) *Controller {
	if pool == nil {
		pool = plot.NewPool()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Controller{surfaces: pool, opts: opts, logger: logger}
}

// Surfaces returns the pool charts are drawn on.
func (c *Controller) Surfaces() *plot.Pool {
	return c.surfaces
}

// Dispatch produces the view for sel. The dataset is only read.
func (c *Controller) Dispatch(ctx context.Context, ds *dataset.Dataset, sel Selection) (*View, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if ds == nil {
		return nil, fmt.Errorf("dispatch %s: no dataset", sel.Mode())
	}
	c.logger.DebugContext(ctx, "dispatching analysis", "mode", sel.Mode().Slug(), "dataset", ds.Name())

	var (
		view *View
		err  error
	)
	switch s := sel.(type) {
	case Overview:
		view = c.overview(ds)
	case Summary:
		view, err = c.summary(ds)
	case Distribution:
		view, err = c.distribution(ds, s)
	case Joint:
		view, err = c.joint(ds, s)
	case Pair:
		view, err = c.pair(ds)
	case Boxen:
		view, err = c.categorical(ds, s.Column, "Boxen Plot", plot.Boxen)
	case Strip:
		view, err = c.categorical(ds, s.Column, "Strip Plot", plot.Strip)
	case Swarm:
		view, err = c.categorical(ds, s.Column, "Swarm Plot", plot.Swarm)
	default:
		return nil, fmt.Errorf("%w: unsupported selection %T", ErrInvalidSelection, sel)
	}
	if err != nil {
		c.logger.ErrorContext(ctx, "analysis failed", "mode", sel.Mode().Slug(), "error", err)
		return nil, fmt.Errorf("%s: %w", sel.Mode(), err)
	}
	view.Mode = sel.Mode()
	return view, nil
}

// draw runs fn on a pooled surface and copies the result out. The surface
// goes back to the pool whether or not fn succeeds.
func (c *Controller) draw(title string, fn func(*plot.Surface) error) (*plot.Artifact, error) {
	s := c.surfaces.Acquire()
	defer s.Release()

	if err := fn(s); err != nil {
		return nil, err
	}
	return s.Artifact(title), nil
}

func (c *Controller) overview(ds *dataset.Dataset) *View {
	rows, cols := ds.Shape()

	records := ds.Records()
	if n := c.opts.PreviewRows; n > 0 && n < len(records) {
		records = records[:n]
	}
	preview := Table{Header: append([]string{""}, ds.Columns()...), Index: true}
	for i, rec := range records {
		preview.Rows = append(preview.Rows, append([]string{strconv.Itoa(i)}, rec...))
	}

	info := Table{Title: "Column Info", Header: []string{"", "dtype"}, Index: true}
	for _, ct := range ds.ColumnTypes() {
		info.Rows = append(info.Rows, []string{ct.Name, ct.Type})
	}

	return &View{
		Heading: "Dataset Preview",
		Metrics: []Metric{
			{Label: "Rows", Value: strconv.Itoa(rows)},
			{Label: "Columns", Value: strconv.Itoa(cols)},
			{Label: "Missing Values", Value: strconv.Itoa(ds.MissingValues())},
		},
		Tables: []Table{preview, info},
	}
}

func (c *Controller) summary(ds *dataset.Dataset) (*View, error) {
	names := ds.NumericColumns()
	columns := make([][]float64, len(names))
	for i, name := range names {
		values, err := ds.Column(name)
		if err != nil {
			return nil, err
		}
		columns[i] = values
	}
	summary, err := stats.Describe(names, columns)
	if err != nil {
		return nil, err
	}
	table, err := SummaryTable(summary)
	if err != nil {
		return nil, err
	}
	return &View{Heading: SummaryHeading, Tables: []Table{table}}, nil
}

func (c *Controller) distribution(ds *dataset.Dataset, s Distribution) (*View, error) {
	values, err := ds.Column(s.Column)
	if err != nil {
		return nil, err
	}
	title := "Distribution of " + s.Column
	art, err := c.draw(title, func(surface *plot.Surface) error {
		return plot.Histogram(surface, c.opts.ChartSize, title, s.Column, values)
	})
	if err != nil {
		return nil, err
	}
	return &View{Heading: "Distribution Plot", Artifact: art}, nil
}

func (c *Controller) joint(ds *dataset.Dataset, s Joint) (*View, error) {
	view := &View{Heading: "Joint Plot"}
	if s.X == s.Y {
		view.Warning = JointWarning
		return view, nil
	}

	xs, err := ds.GroupBy(s.X)
	if err != nil {
		return nil, err
	}
	ys, err := ds.GroupBy(s.Y)
	if err != nil {
		return nil, err
	}
	input := plot.Joint{XName: s.X, YName: s.Y}
	for i := range xs {
		input.Groups = append(input.Groups, plot.PointGroup{Label: xs[i].Label, X: xs[i].Values, Y: ys[i].Values})
	}

	var build func(*plot.Surface, plot.Size, plot.Joint) error
	switch s.Kind {
	case KindScatter:
		build = plot.JointScatter
	case KindRegression:
		build = plot.JointRegression
	case KindHexbin:
		build = plot.JointHex
	case KindDensity:
		build = plot.JointDensity
	default:
		return nil, fmt.Errorf("%w: unknown plot kind %q", ErrInvalidSelection, s.Kind)
	}

	title := fmt.Sprintf("%s vs %s (%s)", s.Y, s.X, s.Kind)
	view.Artifact, err = c.draw(title, func(surface *plot.Surface) error {
		return build(surface, c.opts.ChartSize, input)
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (c *Controller) pair(ds *dataset.Dataset) (*View, error) {
	input := plot.Pair{Names: ds.NumericColumns()}
	for i, name := range input.Names {
		groups, err := ds.GroupBy(name)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			input.Groups = make([]plot.FrameGroup, len(groups))
		}
		for g, grp := range groups {
			input.Groups[g].Label = grp.Label
			input.Groups[g].Columns = append(input.Groups[g].Columns, grp.Values)
		}
	}

	art, err := c.draw("Pair Plot", func(surface *plot.Surface) error {
		return plot.PairGrid(surface, c.opts.ChartSize, input)
	})
	if err != nil {
		return nil, err
	}
	return &View{Heading: "Pair Plot (Feature Relationships)", Info: PairInfo, Artifact: art}, nil
}

type categoricalBuilder func(s *plot.Surface, size plot.Size, title, category, column string, groups []plot.Group) error

func (c *Controller) categorical(ds *dataset.Dataset, column, heading string, build categoricalBuilder) (*View, error) {
	groups, err := ds.GroupBy(column)
	if err != nil {
		return nil, err
	}
	input := make([]plot.Group, len(groups))
	for i, g := range groups {
		input[i] = plot.Group{Label: g.Label, Values: g.Values}
	}

	title := fmt.Sprintf("%s: %s by Species", heading, column)
	art, err := c.draw(title, func(surface *plot.Surface) error {
		return build(surface, c.opts.ChartSize, title, ds.LabelColumn(), column, input)
	})
	if err != nil {
		return nil, err
	}
	return &View{Heading: heading, Artifact: art}, nil
}
