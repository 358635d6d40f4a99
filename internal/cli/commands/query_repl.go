package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapeda/internal/warehouse"
)

const (
	replPrompt     = "leapeda> "
	replContPrompt = "    ...> "
	historyName    = ".leapeda_history"
)

func runQueryREPL(cmd *cobra.Command, w *warehouse.Warehouse, opts *QueryOptions) error {
	ctx := cmd.Context()
	sess := newREPLSession(w, cmd.OutOrStdout(), cmd.ErrOrStderr(), opts.Format)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     historyFile(),
		AutoComplete:    newTableCompleter(ctx, w),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "leapeda query REPL (table: %s)\n", w.Table())
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(cmd.OutOrStdout())

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			sess.reset()
			rl.SetPrompt(replPrompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}

		prompt, quit := sess.feed(ctx, line)
		if quit {
			return nil
		}
		rl.SetPrompt(prompt)
	}
}

// historyFile lives in the user's home directory. An empty name disables
// history.
func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, historyName)
}

// replSession accumulates SQL across lines until a semicolon and runs
// dot-commands.
type replSession struct {
	catalog catalog
	wh      *warehouse.Warehouse
	out     io.Writer
	errOut  io.Writer
	format  string
	buf     strings.Builder
}

func newREPLSession(w *warehouse.Warehouse, out, errOut io.Writer, format string) *replSession {
	return &replSession{catalog: w, wh: w, out: out, errOut: errOut, format: format}
}

func (s *replSession) reset() {
	s.buf.Reset()
}

// feed handles one input line and returns the prompt to show next.
func (s *replSession) feed(ctx context.Context, line string) (prompt string, quit bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		if s.buf.Len() > 0 {
			return replContPrompt, false
		}
		return replPrompt, false
	}

	if s.buf.Len() == 0 && strings.HasPrefix(line, ".") {
		return replPrompt, s.dotCommand(ctx, line)
	}

	// Accumulate multi-line SQL until semicolon
	s.buf.WriteString(line)
	if !strings.HasSuffix(line, ";") {
		s.buf.WriteString(" ")
		return replContPrompt, false
	}

	query := strings.TrimSuffix(s.buf.String(), ";")
	s.buf.Reset()

	if err := executeAndRender(ctx, s.out, s.wh, query, s.format); err != nil {
		_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
	}
	_, _ = fmt.Fprintln(s.out)
	return replPrompt, false
}

// dotCommand runs a REPL command and reports whether the REPL should exit.
func (s *replSession) dotCommand(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(s.out)

	case ".tables":
		if err := listTables(ctx, s.out, s.catalog, s.format); err != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
		}

	case ".schema":
		if len(parts) < 2 {
			_, _ = fmt.Fprintln(s.errOut, "Usage: .schema <table>")
			return false
		}
		if err := showSchema(ctx, s.out, s.catalog, parts[1], s.format); err != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
		}

	case ".format":
		if len(parts) < 2 {
			_, _ = fmt.Fprintf(s.out, "format: %s\n", s.format)
			return false
		}
		s.format = parts[1]

	case ".clear":
		_, _ = fmt.Fprint(s.out, "\033[H\033[2J")

	default:
		_, _ = fmt.Fprintf(s.errOut, "Unknown command: %s (type .help for commands)\n", command)
	}
	return false
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help           Show this help message
  .tables         List all tables
  .schema <name>  Show schema for a table
  .format [name]  Show or set the output format (table, json, csv, md)
  .clear          Clear the screen
  .quit / .exit   Exit the REPL

Tips:
  - SQL statements must end with a semicolon (;)
  - Use arrow keys to navigate history
  - Tab completion works for table and column names
`
	_, _ = fmt.Fprintln(w, help)
}

// newTableCompleter creates a readline completer for table and column names.
func newTableCompleter(ctx context.Context, c catalog) *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(completionItems(ctx, c)...)
}

func completionItems(ctx context.Context, c catalog) []readline.PrefixCompleterInterface {
	var items []readline.PrefixCompleterInterface

	// Completion is best effort, lookup errors leave the list short.
	tables, _ := c.Tables(ctx)
	seen := make(map[string]bool)
	for _, name := range tables {
		items = append(items, readline.PcItem(name))
		cols, _ := c.Columns(ctx, name)
		for _, col := range cols {
			if !seen[col.Name] {
				seen[col.Name] = true
				items = append(items, readline.PcItem(col.Name))
			}
		}
	}

	schemaItems := make([]readline.PrefixCompleterInterface, len(tables))
	for i, name := range tables {
		schemaItems[i] = readline.PcItem(name)
	}

	items = append(items,
		readline.PcItem(".help"),
		readline.PcItem(".tables"),
		readline.PcItem(".schema", schemaItems...),
		readline.PcItem(".format", readline.PcItem("table"), readline.PcItem("json"), readline.PcItem("csv"), readline.PcItem("md")),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
	return items
}
