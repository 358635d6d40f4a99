package commands

import (
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapeda/internal/eda"
	"github.com/leapstack-labs/leapeda/internal/plot"
)

// OverviewOptions holds options for the overview command.
type OverviewOptions struct {
	Rows int
}

// NewOverviewCommand creates the overview command.
func NewOverviewCommand() *cobra.Command {
	opts := &OverviewOptions{}

	cmd := &cobra.Command{
		Use:     "overview",
		Aliases: []string{"head"},
		Short:   "Preview the dataset with its shape and column types",
		Long: `Print the dataset preview, its shape and missing value count, and the
type of every column.

Output adapts to environment:
  - Terminal: Styled tables
  - Piped/Scripted: Markdown tables
  - JSON: Machine-readable format (--output json)`,
		Example: `  # First 10 rows
  leapeda overview

  # Every row
  leapeda overview --rows 0

  # As JSON
  leapeda overview -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOverview(cmd, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Rows, "rows", "n", 10, "Number of preview rows (0 for all)")

	return cmd
}

func runOverview(cmd *cobra.Command, opts *OverviewOptions) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	ds, err := cmdCtx.Dataset(cmd.Context())
	if err != nil {
		return err
	}

	controller := eda.NewController(plot.NewPool(), eda.Options{
		PreviewRows: opts.Rows,
		Logger:      cmdCtx.Logger,
	})
	view, err := controller.Dispatch(cmd.Context(), ds, eda.Overview{})
	if err != nil {
		return err
	}

	return renderView(cmdCtx.Renderer, view, "")
}
