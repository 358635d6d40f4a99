package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapeda/internal/eda"
)

// DescribeOptions holds options for the describe command.
type DescribeOptions struct {
	SQL bool
}

// NewDescribeCommand creates the describe command.
func NewDescribeCommand() *cobra.Command {
	opts := &DescribeOptions{}

	cmd := &cobra.Command{
		Use:     "describe",
		Aliases: []string{"summary"},
		Short:   "Show descriptive statistics of the numeric columns",
		Long: `Show count, mean, std, min, quartiles and max of every numeric column.

With --sql the figures are computed by DuckDB over the warehouse table
instead of in memory.`,
		Example: `  leapeda describe
  leapeda describe --sql -o markdown`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDescribe(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.SQL, "sql", false, "Compute statistics in the warehouse")

	return cmd
}

func runDescribe(cmd *cobra.Command, opts *DescribeOptions) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	if !opts.SQL {
		ds, err := cmdCtx.Dataset(ctx)
		if err != nil {
			return err
		}
		view, err := cmdCtx.Controller().Dispatch(ctx, ds, eda.Summary{})
		if err != nil {
			return err
		}
		return renderView(cmdCtx.Renderer, view, "")
	}

	w, err := cmdCtx.OpenWarehouse(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	summary, err := w.Describe(ctx)
	if err != nil {
		return fmt.Errorf("failed to describe %s: %w", w.Table(), err)
	}
	table, err := eda.SummaryTable(summary)
	if err != nil {
		return err
	}

	view := &eda.View{Mode: eda.ModeSummary, Heading: eda.SummaryHeading, Tables: []eda.Table{table}}
	return renderView(cmdCtx.Renderer, view, "")
}
