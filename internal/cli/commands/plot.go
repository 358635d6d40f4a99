package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapeda/internal/dataset"
	"github.com/leapstack-labs/leapeda/internal/eda"
)

// PlotOptions holds options for the plot command.
type PlotOptions struct {
	Column string
	X      string
	Y      string
	Kind   string
	Out    string
}

// NewPlotCommand creates the plot command.
func NewPlotCommand() *cobra.Command {
	opts := &PlotOptions{}

	cmd := &cobra.Command{
		Use:   "plot <mode>",
		Short: "Render one of the dashboard charts to an SVG file",
		Long: `Render a chart exactly as the dashboard draws it and write it as SVG.

Modes: distribution, joint, pair, boxen, strip, swarm.`,
		Example: `  # Histogram with density curve
  leapeda plot distribution --column petal_length

  # Hexbin joint plot
  leapeda plot joint --x sepal_length --y petal_width --kind hex --out joint.svg

  # Pair grid of every feature
  leapeda plot pair`,
		Args: cobra.ExactArgs(1),
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			var slugs []string
			for _, m := range eda.Modes {
				if m != eda.ModeOverview && m != eda.ModeSummary {
					slugs = append(slugs, m.Slug())
				}
			}
			return slugs, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlot(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Column, "column", "c", "", "Feature to plot (distribution, boxen, strip, swarm)")
	cmd.Flags().StringVar(&opts.X, "x", "", "X axis feature (joint)")
	cmd.Flags().StringVar(&opts.Y, "y", "", "Y axis feature (joint)")
	cmd.Flags().StringVar(&opts.Kind, "kind", "", "Joint plot kind: scatter, reg, hex, kde")
	cmd.Flags().StringVar(&opts.Out, "out", "", "Output file (default: <mode>.svg)")

	columns := func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return dataset.NumericColumns, cobra.ShellCompDirectiveNoFileComp
	}
	_ = cmd.RegisterFlagCompletionFunc("column", columns)
	_ = cmd.RegisterFlagCompletionFunc("x", columns)
	_ = cmd.RegisterFlagCompletionFunc("y", columns)
	_ = cmd.RegisterFlagCompletionFunc("kind", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		kinds := make([]string, len(eda.Kinds))
		for i, k := range eda.Kinds {
			kinds[i] = string(k)
		}
		return kinds, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runPlot(cmd *cobra.Command, mode string, opts *PlotOptions) error {
	sel, err := eda.ParseSelection(eda.Signals{
		Mode:   mode,
		Column: opts.Column,
		X:      opts.X,
		Y:      opts.Y,
		Kind:   opts.Kind,
	})
	if err != nil {
		return err
	}
	switch sel.Mode() {
	case eda.ModeOverview:
		return fmt.Errorf("%s has no chart, use the \"overview\" command", sel.Mode())
	case eda.ModeSummary:
		return fmt.Errorf("%s has no chart, use the \"describe\" command", sel.Mode())
	}

	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	ds, err := cmdCtx.Dataset(cmd.Context())
	if err != nil {
		return err
	}

	view, err := cmdCtx.Controller().Dispatch(cmd.Context(), ds, sel)
	if err != nil {
		return err
	}

	path := ""
	if view.HasChart() {
		path = opts.Out
		if path == "" {
			path = sel.Mode().Slug() + ".svg"
		}
		if err := os.WriteFile(path, view.Artifact.SVG(), 0o600); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		cmdCtx.Logger.Debug("chart written", "path", path, "title", view.Artifact.Title)
	}

	return renderView(cmdCtx.Renderer, view, path)
}
