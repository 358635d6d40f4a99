package config

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "leapeda.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func newFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("config", "", "config file")
	flags.String("dataset", "", "dataset")
	flags.String("warehouse", "", "warehouse")
	flags.BoolP("verbose", "v", false, "verbose")
	flags.StringP("output", "o", "", "output")
	flags.Int("port", 0, "port")
	flags.String("column", "", "not a config key")
	return flags
}

func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfig()
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultDataset, cfg.Dataset)
	assert.Equal(t, DefaultOutput, cfg.OutputFormat)
	assert.Equal(t, DefaultWarehouse, cfg.Warehouse)
	assert.False(t, cfg.Verbose)
	assert.Empty(t, GetConfigFileUsed())

	ui := cfg.GetUIConfig()
	assert.Equal(t, DefaultPort, ui.Port)
	assert.True(t, ui.AutoOpen)
	assert.Equal(t, 800, ui.ChartWidth)
	assert.Equal(t, 600, ui.ChartHeight)
	assert.Equal(t, 5*time.Second, ui.ShutdownTimeout)
	assert.Same(t, cfg, GetCurrentConfig())
}

func TestLoadConfig_File(t *testing.T) {
	ResetConfig()
	path := writeConfig(t, `
verbose: true
output: json
warehouse: eda.duckdb
ui:
  port: 9001
  auto_open: false
  session_secret: s3cret
  chart_width: 640
  preview_rows: 25
  shutdown_timeout: 1m30s
`)

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, path, GetConfigFileUsed())
	assert.True(t, cfg.Verbose)
	assert.Equal(t, "json", cfg.OutputFormat)
	assert.Equal(t, "eda.duckdb", cfg.Warehouse)

	ui := cfg.GetUIConfig()
	assert.Equal(t, 9001, ui.Port)
	assert.False(t, ui.AutoOpen)
	assert.Equal(t, "s3cret", ui.SessionSecret)
	assert.Equal(t, 640, ui.ChartWidth)
	assert.Equal(t, 600, ui.ChartHeight, "unset nested keys keep their defaults")
	assert.Equal(t, 25, ui.PreviewRows)
	assert.Equal(t, 90*time.Second, ui.ShutdownTimeout)
}

func TestLoadConfig_DiscoversFileInWorkingDir(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "leapeda.yml"), []byte("output: markdown\n"), 0600))
	t.Chdir(dir)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, "leapeda.yml", GetConfigFileUsed())
	assert.Equal(t, "markdown", cfg.OutputFormat)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	ResetConfig()
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLoadConfig_EnvPrecedenceOverFile(t *testing.T) {
	ResetConfig()
	path := writeConfig(t, "output: json\nui:\n  port: 9001\n")
	t.Setenv("LEAPEDA_OUTPUT", "text")
	t.Setenv("LEAPEDA_UI__PORT", "9100")

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "text", cfg.OutputFormat, "env var should override config file")
	assert.Equal(t, 9100, cfg.GetUIConfig().Port)
}

func TestLoadConfig_FlagPrecedence(t *testing.T) {
	ResetConfig()
	path := writeConfig(t, "output: json\nui:\n  port: 9001\n")
	t.Setenv("LEAPEDA_OUTPUT", "text")

	flags := newFlags()
	require.NoError(t, flags.Set("output", "markdown"))
	require.NoError(t, flags.Set("port", "9200"))
	require.NoError(t, flags.Set("column", "petal_width"))

	cfg, err := LoadConfig(path, flags)
	require.NoError(t, err)

	assert.Equal(t, "markdown", cfg.OutputFormat, "flag value should override config file and env var")
	assert.Equal(t, 9200, cfg.GetUIConfig().Port)
	assert.False(t, k.Exists("column"), "command flags are not configuration")
}

func TestLoadConfig_FlagNotSetUsesEnv(t *testing.T) {
	ResetConfig()
	path := writeConfig(t, "output: json\n")
	t.Setenv("LEAPEDA_OUTPUT", "text")

	// Flag defined but never set, so Changed is false
	cfg, err := LoadConfig(path, newFlags())
	require.NoError(t, err)
	assert.Equal(t, "text", cfg.OutputFormat, "env var should be used when flag is not set")
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		errSubstr string
	}{
		{name: "unknown dataset", content: "dataset: titanic\n", errSubstr: "unknown dataset"},
		{name: "unknown output", content: "output: xml\n", errSubstr: "unknown output format"},
		{name: "port out of range", content: "ui:\n  port: 70000\n", errSubstr: "ui.port"},
		{name: "bad duration", content: "ui:\n  shutdown_timeout: soon\n", errSubstr: "decode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ResetConfig()
			_, err := LoadConfig(writeConfig(t, tt.content), nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestGetUIConfig_FillsZeroValues(t *testing.T) {
	cfg := &Config{UI: &UIConfig{PreviewRows: 5}}
	ui := cfg.GetUIConfig()
	assert.Equal(t, DefaultPort, ui.Port)
	assert.Equal(t, 800, ui.ChartSize().Width)
	assert.Equal(t, 600, ui.ChartSize().Height)
	assert.Equal(t, 5, ui.PreviewRows)

	assert.Equal(t, DefaultUIConfig(), (&Config{}).GetUIConfig())
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "dataset", envKey("LEAPEDA_DATASET"))
	assert.Equal(t, "ui.session_secret", envKey("LEAPEDA_UI__SESSION_SECRET"))
}

func TestGetLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, true)
	ctx := context.WithValue(context.Background(), LoggerKey(), logger)

	GetLogger(ctx).Debug("hello", "mode", "overview")
	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), "mode=overview")

	buf.Reset()
	NewLogger(&buf, false).Debug("quiet")
	assert.Empty(t, buf.String())

	assert.NotNil(t, GetLogger(context.Background()), "missing logger falls back to discard")
}
