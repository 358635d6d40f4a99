package warehouse

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapeda/internal/dataset"
	"github.com/leapstack-labs/leapeda/internal/stats"
	"github.com/leapstack-labs/leapeda/internal/testutil"
)

func openWarehouse(t *testing.T, path string) *Warehouse {
	t.Helper()
	ds, err := dataset.Open(dataset.DefaultName)
	require.NoError(t, err)

	w, err := Open(context.Background(), path, ds, testutil.NewTestLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func TestOpen(t *testing.T) {
	tests := []struct {
		name      string
		setupPath func(t *testing.T) string
		verify    func(t *testing.T, path string)
	}{
		{
			name:      "in-memory",
			setupPath: func(_ *testing.T) string { return MemoryPath },
		},
		{
			name:      "default path",
			setupPath: func(_ *testing.T) string { return "" },
		},
		{
			name: "file-based",
			setupPath: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "eda.duckdb")
			},
			verify: func(t *testing.T, path string) {
				_, err := os.Stat(path)
				assert.False(t, os.IsNotExist(err), "database file was not created")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tt.setupPath(t)
			w := openWarehouse(t, path)
			assert.Equal(t, "iris", w.Table())

			if tt.verify != nil {
				tt.verify(t, path)
			}
		})
	}
}

func TestQuery_RowCounts(t *testing.T) {
	w := openWarehouse(t, MemoryPath)
	ctx := context.Background()

	rows, err := w.Query(ctx, `SELECT species, count(*) FROM iris GROUP BY species ORDER BY species`)
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	got := map[string]int64{}
	for rows.Next() {
		var species string
		var n int64
		require.NoError(t, rows.Scan(&species, &n))
		got[species] = n
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, map[string]int64{"setosa": 50, "versicolor": 50, "virginica": 50}, got)
}

func TestQuery_Error(t *testing.T) {
	w := openWarehouse(t, MemoryPath)

	_, err := w.Query(context.Background(), "SELECT * FROM missing_table")
	assert.Error(t, err)
}

func TestTablesAndColumns(t *testing.T) {
	w := openWarehouse(t, MemoryPath)
	ctx := context.Background()

	tables, err := w.Tables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"iris"}, tables)

	cols, err := w.Columns(ctx, "iris")
	require.NoError(t, err)
	require.Len(t, cols, 5)
	assert.Equal(t, Column{Name: "sepal_length", Type: "DOUBLE", Nullable: true, Position: 1}, cols[0])
	assert.Equal(t, "VARCHAR", cols[4].Type)

	_, err = w.Columns(ctx, "nope")
	assert.Error(t, err)
}

func TestDescribe_MatchesInMemoryStats(t *testing.T) {
	w := openWarehouse(t, MemoryPath)
	ds, err := dataset.Open(dataset.DefaultName)
	require.NoError(t, err)

	sqlSummary, err := w.Describe(context.Background())
	require.NoError(t, err)
	require.Len(t, sqlSummary.Columns, 4)

	for _, got := range sqlSummary.Columns {
		values, err := ds.Column(got.Name)
		require.NoError(t, err)
		want, err := stats.DescribeColumn(got.Name, values)
		require.NoError(t, err)

		assert.Equal(t, want.Count, got.Count, got.Name)
		assert.InDeltaSlice(t, want.Values(), got.Values(), 1e-9, got.Name)
	}
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, `"iris"`, quoteIdent("iris"))
	assert.Equal(t, `"a""b"`, quoteIdent(`a"b`))
}

func TestRun(t *testing.T) {
	w := openWarehouse(t, MemoryPath)
	ctx := context.Background()

	res, err := w.Run(ctx, `SELECT species, sepal_length FROM iris ORDER BY sepal_length DESC, species`, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"species", "sepal_length"}, res.Columns)
	require.Len(t, res.Rows, 3)
	assert.Equal(t, []string{"virginica", "7.9"}, res.Rows[0])
	assert.True(t, res.Truncated)

	res, err = w.Run(ctx, `SELECT count(*) AS n FROM iris`, 3)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"150"}}, res.Rows)
	assert.False(t, res.Truncated)

	_, err = w.Run(ctx, `SELEC 1`, 0)
	assert.Error(t, err)
}

func TestReadRows(t *testing.T) {
	tests := []struct {
		name      string
		limit     int
		wantRows  [][]string
		truncated bool
	}{
		{
			name:     "no limit",
			wantRows: [][]string{{"1", "alice"}, {"2", "NULL"}, {"3", "carol"}},
		},
		{
			name:      "limited",
			limit:     2,
			wantRows:  [][]string{{"1", "alice"}, {"2", "NULL"}},
			truncated: true,
		},
		{
			name:     "limit equals row count",
			limit:    3,
			wantRows: [][]string{{"1", "alice"}, {"2", "NULL"}, {"3", "carol"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer func() { _ = db.Close() }()

			mock.ExpectQuery("SELECT").WillReturnRows(
				sqlmock.NewRows([]string{"id", "name"}).
					AddRow(int64(1), []byte("alice")).
					AddRow(int64(2), nil).
					AddRow(int64(3), "carol"),
			)

			rows, err := db.QueryContext(context.Background(), "SELECT id, name FROM users")
			require.NoError(t, err)
			defer func() { _ = rows.Close() }()

			res, err := ReadRows(rows, tt.limit)
			require.NoError(t, err)
			assert.Equal(t, []string{"id", "name"}, res.Columns)
			assert.Equal(t, tt.wantRows, res.Rows)
			assert.Equal(t, tt.truncated, res.Truncated)
		})
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"nil", nil, "NULL"},
		{"string", "hello", "hello"},
		{"int", 42, "42"},
		{"int64", int64(100), "100"},
		{"float", 3.14, "3.14"},
		{"bytes", []byte("world"), "world"},
		{"bool", true, "true"},
		{"time", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), "2024-01-02T03:04:05Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatValue(tt.input))
		})
	}
}
