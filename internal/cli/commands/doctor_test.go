package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapeda/internal/cli/config"
	"github.com/leapstack-labs/leapeda/internal/cli/output"
	"github.com/leapstack-labs/leapeda/internal/dataset"
	"github.com/leapstack-labs/leapeda/internal/eda"
	"github.com/leapstack-labs/leapeda/internal/plot"
	"github.com/leapstack-labs/leapeda/internal/stats"
)

func testDoctorEnv(t *testing.T) *doctorEnv {
	t.Helper()

	ds, err := dataset.Open(dataset.DefaultName)
	require.NoError(t, err)

	return &doctorEnv{
		cfg: &config.Config{
			Dataset:   dataset.DefaultName,
			Warehouse: config.DefaultWarehouse,
		},
		configFile: "leapeda.yaml",
		ds:         ds,
		controller: eda.NewController(plot.NewPool(), eda.Options{ChartSize: plot.Size{Width: 320, Height: 240}}),
		port:       freePort(t),
	}
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

func checkByID(t *testing.T, out *DoctorOutput, id string) HealthCheck {
	t.Helper()
	for _, c := range out.HealthChecks {
		if c.RuleID == id {
			return c
		}
	}
	t.Fatalf("check %s not found", id)
	return HealthCheck{}
}

func TestBuildDoctorOutput_Healthy(t *testing.T) {
	out := buildDoctorOutput(context.Background(), testDoctorEnv(t))

	assert.Len(t, out.HealthChecks, len(doctorChecks))
	for _, c := range out.HealthChecks {
		assert.Equal(t, "pass", c.Status, "%s: %v", c.RuleID, c.Details)
	}
	assert.Equal(t, 100, out.Score)
	assert.Zero(t, out.IssueCount)
	assert.Empty(t, out.Recommendations)

	assert.Equal(t, 150, out.Summary.Rows)
	assert.Equal(t, 5, out.Summary.Columns)
	assert.Equal(t, 4, out.Summary.Numeric)
	assert.Equal(t, []string{"setosa", "versicolor", "virginica"}, out.Summary.Species)
	assert.Equal(t, []string{"4 columns match"}, checkByID(t, out, "WH01").Details)
}

func TestBuildDoctorOutput_Problems(t *testing.T) {
	env := testDoctorEnv(t)
	env.configFile = ""

	ln, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer func() { _ = ln.Close() }()
	env.port = ln.Addr().(*net.TCPAddr).Port

	out := buildDoctorOutput(context.Background(), env)

	assert.Equal(t, "warn", checkByID(t, out, "CF01").Status)
	assert.Equal(t, "warn", checkByID(t, out, "UI01").Status)
	assert.Equal(t, 2, out.IssueCount)
	assert.Equal(t, 80, out.Score)
	assert.Len(t, out.Recommendations, 2)
}

func TestBuildDoctorOutput_DatasetMissing(t *testing.T) {
	env := testDoctorEnv(t)
	env.ds = nil
	env.dsErr = errors.New(`unknown dataset "tulips"`)

	out := buildDoctorOutput(context.Background(), env)

	ds01 := checkByID(t, out, "DS01")
	assert.Equal(t, "error", ds01.Status)
	assert.Contains(t, ds01.Details[0], "tulips")
	for _, id := range []string{"DS02", "DS03", "DS04", "CH01", "WH01"} {
		assert.Equal(t, "skip", checkByID(t, out, id).Status, id)
	}
	assert.Equal(t, 80, out.Score)
	assert.Zero(t, out.Summary.Rows)
}

func TestCalculateHealthScore(t *testing.T) {
	tests := []struct {
		name   string
		checks []HealthCheck
		want   int
	}{
		{name: "no checks returns 100", checks: nil, want: 100},
		{
			name: "passing and skipped checks cost nothing",
			checks: []HealthCheck{
				{RuleID: "DS01", Status: "pass"},
				{RuleID: "WH01", Status: "skip"},
			},
			want: 100,
		},
		{
			name:   "warnings reduce score",
			checks: []HealthCheck{{RuleID: "DS02", Status: "warn", IssueCount: 2}},
			want:   80,
		},
		{
			name:   "errors reduce score more",
			checks: []HealthCheck{{RuleID: "DS01", Status: "error", IssueCount: 2}},
			want:   60,
		},
		{
			name:   "score is clamped at zero",
			checks: []HealthCheck{{RuleID: "CH01", Status: "error", IssueCount: 9}},
			want:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, calculateHealthScore(tt.checks))
		})
	}
}

func TestCompareSummaries(t *testing.T) {
	want := &stats.Summary{Columns: []stats.ColumnSummary{{Name: "a", Count: 3, Mean: 2, Max: 3}}}

	same := &stats.Summary{Columns: []stats.ColumnSummary{{Name: "a", Count: 3, Mean: 2 + 1e-12, Max: 3}}}
	assert.Empty(t, compareSummaries(want, same))

	off := &stats.Summary{Columns: []stats.ColumnSummary{{Name: "a", Count: 3, Mean: 2.5, Max: 3}}}
	assert.Equal(t, []string{"a mean: 2.0 in memory, 2.5 in warehouse"}, compareSummaries(want, off))

	assert.Len(t, compareSummaries(want, &stats.Summary{}), 1)
}

func TestRenderDoctor(t *testing.T) {
	out := buildDoctorOutput(context.Background(), testDoctorEnv(t))

	t.Run("markdown", func(t *testing.T) {
		buf := new(bytes.Buffer)
		r := output.NewRenderer(buf, buf, output.ModeMarkdown)
		require.NoError(t, renderDoctorMarkdown(r, out))

		s := buf.String()
		assert.Contains(t, s, "# leapeda Health Report")
		assert.Contains(t, s, "- **Dataset**: iris")
		assert.Contains(t, s, "### Warehouse")
		assert.Contains(t, s, "- **[PASS]** CH01: Every mode renders")
		assert.Contains(t, s, "**100/100**")
		assert.NotContains(t, s, "## Recommendations")
	})

	t.Run("text", func(t *testing.T) {
		buf := new(bytes.Buffer)
		r := output.NewRenderer(buf, buf, output.ModeText)
		require.NoError(t, renderDoctorText(r, out))

		s := buf.String()
		assert.Contains(t, s, "Health Checks")
		assert.Contains(t, s, "Dashboard")
		assert.Contains(t, s, "DS01: Dataset loads")
		assert.Contains(t, s, "100/100")
	})

	t.Run("json", func(t *testing.T) {
		buf := new(bytes.Buffer)
		r := output.NewRenderer(buf, buf, output.ModeJSON)
		require.NoError(t, r.JSON(out))

		var decoded DoctorOutput
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, out.Score, decoded.Score)
		assert.Len(t, decoded.HealthChecks, len(doctorChecks))
	})
}
