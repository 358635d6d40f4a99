// Package warehouse keeps a DuckDB copy of the dataset for ad-hoc SQL.
package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/leapstack-labs/leapeda/internal/dataset"
	"github.com/leapstack-labs/leapeda/internal/stats"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Column describes one column of a warehouse table.
type Column struct {
	Name     string
	Type     string
	Nullable bool
	Position int
}

// Warehouse is a DuckDB connection holding one table per loaded dataset.
type Warehouse struct {
	db     *sql.DB
	table  string
	logger *slog.Logger
}

// Open connects to DuckDB at path and loads ds into a table named after it.
// Use MemoryPath (or "") for an in-memory database.
func Open(ctx context.Context, path string, ds *dataset.Dataset, logger *slog.Logger) (*Warehouse, error) {
	if path == "" {
		path = MemoryPath
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping duckdb: %w", err)
	}

	w := &Warehouse{db: db, table: ds.Name(), logger: logger}
	if err := w.load(ctx, ds); err != nil {
		_ = db.Close()
		return nil, err
	}
	return w, nil
}

// Close closes the database connection.
func (w *Warehouse) Close() error {
	if w.db == nil {
		return nil
	}
	w.logger.Debug("closing warehouse connection")
	return w.db.Close()
}

// Table returns the name of the dataset table.
func (w *Warehouse) Table() string {
	return w.table
}

func (w *Warehouse) load(ctx context.Context, ds *dataset.Dataset) error {
	names := ds.Columns()
	defs := make([]string, len(names))
	numeric := make([][]float64, len(names))
	for i, name := range names {
		if ds.IsNumeric(name) {
			values, err := ds.Column(name)
			if err != nil {
				return err
			}
			numeric[i] = values
			defs[i] = quoteIdent(name) + " DOUBLE"
			continue
		}
		defs[i] = quoteIdent(name) + " VARCHAR"
	}
	labels := ds.Labels()

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin load: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	create := fmt.Sprintf("CREATE OR REPLACE TABLE %s (%s)", quoteIdent(w.table), strings.Join(defs, ", "))
	if _, err := tx.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("failed to create table %s: %w", w.table, err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(names)), ", ")
	//nolint:gosec // identifiers are quoted, values are bound
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s VALUES (%s)", quoteIdent(w.table), placeholders))
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	rows, _ := ds.Shape()
	args := make([]any, len(names))
	for r := 0; r < rows; r++ {
		for c := range names {
			if numeric[c] != nil {
				args[c] = numeric[c][r]
			} else {
				args[c] = labels[r]
			}
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to insert row %d: %w", r, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit load: %w", err)
	}
	w.logger.Debug("loaded dataset into warehouse", "table", w.table, "rows", rows)
	return nil
}

// Query runs a statement and returns its rows. The caller closes them.
func (w *Warehouse) Query(ctx context.Context, query string) (*sql.Rows, error) {
	//nolint:rowserrcheck // rows.Err() must be checked by caller after iteration completes
	rows, err := w.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	return rows, nil
}

// Result is a query result read into display strings.
type Result struct {
	Columns   []string
	Rows      [][]string
	Truncated bool
	Elapsed   time.Duration
}

// Run executes query and reads at most limit rows. A limit of zero or less
// reads everything.
func (w *Warehouse) Run(ctx context.Context, query string, limit int) (*Result, error) {
	start := time.Now()
	rows, err := w.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	res, err := ReadRows(rows, limit)
	if err != nil {
		return nil, err
	}
	res.Elapsed = time.Since(start)
	w.logger.Debug("query finished", "rows", len(res.Rows), "truncated", res.Truncated, "elapsed", res.Elapsed)
	return res, nil
}

// ReadRows drains rows into a Result, stopping after limit rows when limit
// is positive. It does not close rows.
func ReadRows(rows *sql.Rows, limit int) (*Result, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	res := &Result{Columns: cols}
	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	for rows.Next() {
		if limit > 0 && len(res.Rows) == limit {
			res.Truncated = true
			break
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		row := make([]string, len(cols))
		for i, v := range values {
			row[i] = FormatValue(v)
		}
		res.Rows = append(res.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return res, nil
}

// FormatValue renders a scanned value for display.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(val)
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// Tables lists the tables of the main schema.
func (w *Warehouse) Tables(ctx context.Context) ([]string, error) {
	rows, err := w.db.QueryContext(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'main'
		ORDER BY table_name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// Columns describes the columns of table.
func (w *Warehouse) Columns(ctx context.Context, table string) ([]Column, error) {
	rows, err := w.db.QueryContext(ctx, `
		SELECT
			column_name,
			data_type,
			is_nullable,
			ordinal_position
		FROM information_schema.columns
		WHERE table_schema = 'main' AND table_name = ?
		ORDER BY ordinal_position
	`, table)
	if err != nil {
		return nil, fmt.Errorf("failed to query column metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var columns []Column
	for rows.Next() {
		var col Column
		var nullable string
		if err := rows.Scan(&col.Name, &col.Type, &nullable, &col.Position); err != nil {
			return nil, fmt.Errorf("failed to scan column metadata: %w", err)
		}
		col.Nullable = nullable == "YES"
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating column metadata: %w", err)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s not found", table)
	}
	return columns, nil
}

// Describe computes the describe() figures of every DOUBLE column in SQL.
func (w *Warehouse) Describe(ctx context.Context) (*stats.Summary, error) {
	columns, err := w.Columns(ctx, w.table)
	if err != nil {
		return nil, err
	}

	out := &stats.Summary{}
	for _, col := range columns {
		if col.Type != "DOUBLE" {
			continue
		}
		id := quoteIdent(col.Name)
		//nolint:gosec // identifiers are quoted
		query := fmt.Sprintf(`
			SELECT
				count(%[1]s),
				avg(%[1]s),
				stddev_samp(%[1]s),
				min(%[1]s),
				quantile_cont(%[1]s, 0.25),
				quantile_cont(%[1]s, 0.5),
				quantile_cont(%[1]s, 0.75),
				max(%[1]s)
			FROM %[2]s
		`, id, quoteIdent(w.table))

		cs := stats.ColumnSummary{Name: col.Name}
		var count int64
		err := w.db.QueryRowContext(ctx, query).Scan(
			&count, &cs.Mean, &cs.Std, &cs.Min, &cs.Q1, &cs.Q2, &cs.Q3, &cs.Max,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to describe %s: %w", col.Name, err)
		}
		cs.Count = int(count)
		out.Columns = append(out.Columns, cs)
	}
	return out, nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
