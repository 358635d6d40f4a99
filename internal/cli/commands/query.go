package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// QueryOptions holds options for the query command.
type QueryOptions struct {
	Format string
	Input  string
}

// Query output formats.
var queryFormats = []string{"table", "json", "csv", "md"}

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query [SQL]",
		Short: "Query the dataset with SQL",
		Long: `Query the dataset with DuckDB SQL.

The dataset is loaded into a DuckDB table named after it (for example
"iris"). Set warehouse in leapeda.yaml or pass --warehouse to keep the
database in a file instead of memory.

When invoked without arguments, enters interactive REPL mode.`,
		Example: `  # Execute SQL directly
  leapeda query "SELECT species, avg(petal_length) FROM iris GROUP BY 1"

  # List available tables
  leapeda query tables

  # Show schema for a table
  leapeda query schema iris

  # Output as CSV
  leapeda query "SELECT * FROM iris" --format csv

  # Interactive mode
  leapeda query`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args, opts)
		},
	}

	// Flags
	cmd.PersistentFlags().StringVarP(&opts.Format, "format", "f", "table", "Output format: table, json, csv, md")
	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Read SQL from file")

	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return queryFormats, cobra.ShellCompDirectiveNoFileComp
	})

	// Subcommands
	cmd.AddCommand(newQueryTablesCommand(opts))
	cmd.AddCommand(newQuerySchemaCommand(opts))

	return cmd
}

func runQuery(cmd *cobra.Command, args []string, opts *QueryOptions) error {
	// Determine SQL source
	var sqlQuery string
	repl := false

	switch {
	case len(args) > 0:
		sqlQuery = strings.Join(args, " ")
	case opts.Input != "":
		content, err := os.ReadFile(opts.Input)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		sqlQuery = string(content)
	case !isTerminal(os.Stdin):
		// Read from stdin (piped input)
		content, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		sqlQuery = string(content)
	default:
		repl = true
	}

	if !repl && strings.TrimSpace(sqlQuery) == "" {
		return fmt.Errorf("query cannot be empty")
	}

	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	w, err := cmdCtx.OpenWarehouse(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	if repl {
		// No input, TTY detected - enter REPL mode
		return runQueryREPL(cmd, w, opts)
	}

	return executeAndRender(cmd.Context(), cmd.OutOrStdout(), w, sqlQuery, opts.Format)
}

// newQueryTablesCommand creates the tables subcommand.
func newQueryTablesCommand(opts *QueryOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List the tables in the warehouse",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			w, err := cmdCtx.OpenWarehouse(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = w.Close() }()

			return listTables(cmd.Context(), cmd.OutOrStdout(), w, opts.Format)
		},
	}
}

// newQuerySchemaCommand creates the schema subcommand.
func newQuerySchemaCommand(opts *QueryOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schema <table>",
		Short: "Show schema for a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			w, err := cmdCtx.OpenWarehouse(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = w.Close() }()

			return showSchema(cmd.Context(), cmd.OutOrStdout(), w, args[0], opts.Format)
		},
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd())) //nolint:gosec // file descriptors fit in int
}
