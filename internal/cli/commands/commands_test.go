package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapeda/internal/cli/config"
	"github.com/leapstack-labs/leapeda/internal/cli/output"
	"github.com/leapstack-labs/leapeda/internal/eda"
	"github.com/leapstack-labs/leapeda/internal/plot"
)

// execute runs cmd with args and returns what it wrote to stdout.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestCommandMetadata(t *testing.T) {
	tests := []struct {
		cmd     *cobra.Command
		use     string
		aliases []string
		flags   []string
	}{
		{cmd: NewOverviewCommand(), use: "overview", aliases: []string{"head"}, flags: []string{"rows"}},
		{cmd: NewDescribeCommand(), use: "describe", aliases: []string{"summary"}, flags: []string{"sql"}},
		{cmd: NewPlotCommand(), use: "plot <mode>", flags: []string{"column", "x", "y", "kind", "out"}},
		{cmd: NewQueryCommand(), use: "query [SQL]", flags: []string{"format", "input"}},
		{cmd: NewUICommand(), use: "ui", aliases: []string{"serve"}, flags: []string{"port", "no-browser", "no-sql"}},
		{cmd: NewDoctorCommand(), use: "doctor", flags: []string{"format"}},
		{cmd: NewInitCommand(), use: "init [directory]", flags: []string{"force", "with-dataset"}},
	}

	for _, tt := range tests {
		t.Run(tt.use, func(t *testing.T) {
			assert.Equal(t, tt.use, tt.cmd.Use)
			assert.NotEmpty(t, tt.cmd.Short, "Short should not be empty")
			assert.NotEmpty(t, tt.cmd.Long, "Long should not be empty")
			assert.Equal(t, tt.aliases, tt.cmd.Aliases)
			for _, flag := range tt.flags {
				assert.NotNil(t, tt.cmd.Flags().Lookup(flag), "flag %q should exist", flag)
			}
		})
	}
}

func TestOverviewCommand(t *testing.T) {
	out, err := execute(t, NewOverviewCommand(), "-n", "3")
	require.NoError(t, err)

	assert.Contains(t, out, "# Dataset Preview")
	assert.Contains(t, out, "| sepal_length |")
	assert.Contains(t, out, "- **Rows**: 150")
	assert.Contains(t, out, "## Column Info")
	assert.Contains(t, out, "- **Missing Values**: 0")

	// Three preview rows: index 0..2 and nothing after.
	assert.Contains(t, out, "| 2 |")
	assert.NotContains(t, out, "| 3 | 4.6")
}

func TestDescribeCommand(t *testing.T) {
	inMemory, err := execute(t, NewDescribeCommand())
	require.NoError(t, err)
	assert.Contains(t, inMemory, "# "+eda.SummaryHeading)
	assert.Contains(t, inMemory, "| mean |")
	assert.Contains(t, inMemory, "5.843333")

	fromSQL, err := execute(t, NewDescribeCommand(), "--sql")
	require.NoError(t, err)
	assert.Equal(t, inMemory, fromSQL, "warehouse statistics render the same table")
}

func TestPlotCommand(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		args  []string
		file  string
		title string
	}{
		{args: []string{"distribution", "-c", "petal_width"}, file: "dist.svg", title: "Distribution of petal_width"},
		{args: []string{"boxen", "--column", "sepal_width"}, file: "boxen.svg", title: "Boxen Plot: sepal_width by Species"},
		{args: []string{"joint", "--x", "petal_length", "--y", "petal_width", "--kind", "hex"}, file: "joint.svg"},
		{args: []string{"pair"}, file: "pair.svg"},
	}

	for _, tt := range tests {
		t.Run(tt.args[0], func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			out, err := execute(t, NewPlotCommand(), append(tt.args, "--out", path)...)
			require.NoError(t, err)

			assert.Contains(t, out, "Wrote ")
			assert.Contains(t, out, path)
			if tt.title != "" {
				assert.Contains(t, out, tt.title)
			}

			svg, err := os.ReadFile(path) //nolint:gosec // test file
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(string(svg), "<svg"), "file holds an svg document")
		})
	}
}

func TestPlotCommand_Errors(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{args: []string{"overview"}, want: `use the "overview" command`},
		{args: []string{"summary"}, want: `use the "describe" command`},
		{args: []string{"violin"}, want: "invalid selection"},
		{args: []string{"strip", "-c", "species"}, want: "invalid selection"},
		{args: []string{}, want: "accepts 1 arg"},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			_, err := execute(t, NewPlotCommand(), tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestPlotCommand_SameAxes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "joint.svg")
	out, err := execute(t, NewPlotCommand(), "joint", "--x", "sepal_width", "--y", "sepal_width", "--out", path)
	require.NoError(t, err)

	assert.NotContains(t, out, "Wrote ")
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "no chart is written for identical axes")
}

func TestRenderView(t *testing.T) {
	view := &eda.View{
		Mode:    eda.ModeJoint,
		Heading: "Joint Plot",
		Warning: eda.JointWarning,
		Metrics: []eda.Metric{{Label: "Rows", Value: "150"}},
		Tables: []eda.Table{
			{Header: []string{"", "a"}, Rows: [][]string{{"0", "1"}}},
			{Title: "Column Info", Header: []string{"", "dtype"}, Rows: [][]string{{"a", "float64"}}},
		},
	}

	t.Run("markdown keeps the dashboard order", func(t *testing.T) {
		buf, errBuf := new(bytes.Buffer), new(bytes.Buffer)
		require.NoError(t, renderView(output.NewRenderer(buf, errBuf, output.ModeMarkdown), view, ""))

		s := buf.String()
		preview := strings.Index(s, "| 0 | 1 |")
		metric := strings.Index(s, "- **Rows**: 150")
		info := strings.Index(s, "## Column Info")
		require.True(t, preview >= 0 && metric >= 0 && info >= 0, s)
		assert.Less(t, preview, metric)
		assert.Less(t, metric, info)
		assert.Contains(t, errBuf.String(), eda.JointWarning)
	})

	t.Run("json", func(t *testing.T) {
		withChart := *view
		withChart.Artifact = &plot.Artifact{Title: "a vs b (kde)"}

		buf := new(bytes.Buffer)
		require.NoError(t, renderView(output.NewRenderer(buf, buf, output.ModeJSON), &withChart, "joint.svg"))

		var decoded ViewOutput
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, "Joint Plot", decoded.Mode)
		assert.Equal(t, eda.JointWarning, decoded.Warning)
		assert.Equal(t, []MetricJSON{{Label: "Rows", Value: "150"}}, decoded.Metrics)
		assert.Len(t, decoded.Tables, 2)
		require.NotNil(t, decoded.Chart)
		assert.Equal(t, ChartJSON{Title: "a vs b (kde)", Path: "joint.svg"}, *decoded.Chart)
	})
}

func TestGenerateSessionSecret(t *testing.T) {
	t.Setenv("LEAPEDA_SESSION_SECRET", "")
	assert.Equal(t, "leapeda-dev-secret-change-in-production", generateSessionSecret(nil))

	t.Setenv("LEAPEDA_SESSION_SECRET", "from-env")
	assert.Equal(t, "from-env", generateSessionSecret(nil))

	cfg := &config.UIConfig{SessionSecret: "from-config"}
	assert.Equal(t, "from-config", generateSessionSecret(cfg))
}
