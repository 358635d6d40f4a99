package commands

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/leapeda/internal/cli/config"
	"github.com/leapstack-labs/leapeda/internal/dataset"
)

// starterConfig is the file written by init. Field tags mirror the koanf
// keys read by config.LoadConfig.
type starterConfig struct {
	Dataset   string    `yaml:"dataset"`
	Warehouse string    `yaml:"warehouse"`
	Output    string    `yaml:"output"`
	UI        starterUI `yaml:"ui"`
}

type starterUI struct {
	Port            int    `yaml:"port"`
	AutoOpen        bool   `yaml:"auto_open"`
	ChartWidth      int    `yaml:"chart_width"`
	ChartHeight     int    `yaml:"chart_height"`
	PreviewRows     int    `yaml:"preview_rows"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

const starterHeader = `# leapeda configuration.
# Every key can be overridden with LEAPEDA_<KEY> environment variables
# (LEAPEDA_UI__PORT for ui.port) or the matching command-line flag.
`

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool
	var datasetName string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Write a starter leapeda.yaml",
		Long: `Write a leapeda.yaml configuration file holding the default settings.

The file documents every option; edit it to pick a dataset, keep the
DuckDB warehouse on disk or change the dashboard port.`,
		Example: `  # Initialize in current directory
  leapeda init

  # Initialize in a new directory
  leapeda init my-analysis

  # Force overwrite existing config
  leapeda init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			cmdCtx := NewCommandContextWithoutData(cmd)
			path, err := writeStarterConfig(dir, datasetName, force)
			if err != nil {
				return err
			}

			r := cmdCtx.Renderer
			r.StatusLine(path, "success", "")
			r.Println("")
			r.Success("leapeda initialized!")
			r.Println("")
			r.Println("Next steps:")
			r.Println("  1. Run 'leapeda overview' to inspect the dataset")
			r.Println("  2. Run 'leapeda ui' to open the dashboard")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")
	cmd.Flags().StringVar(&datasetName, "with-dataset", config.DefaultDataset, "Dataset to configure")

	_ = cmd.RegisterFlagCompletionFunc("with-dataset", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return dataset.Names(), cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// writeStarterConfig writes leapeda.yaml into dir and returns its path.
func writeStarterConfig(dir, datasetName string, force bool) (string, error) {
	if dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	path := filepath.Join(dir, config.ConfigFileNames[0])
	if _, err := os.Stat(path); err == nil && !force {
		return "", fmt.Errorf("%s already exists. Use --force to overwrite", config.ConfigFileNames[0])
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("failed to check %s: %w", path, err)
	}

	if datasetName == "" {
		datasetName = config.DefaultDataset
	}
	if !slices.Contains(dataset.Names(), datasetName) {
		return "", fmt.Errorf("unknown dataset %q (available: %s)", datasetName, strings.Join(dataset.Names(), ", "))
	}
	ui := config.DefaultUIConfig()
	starter := starterConfig{
		Dataset:   datasetName,
		Warehouse: config.DefaultWarehouse,
		Output:    config.DefaultOutput,
		UI: starterUI{
			Port:            ui.Port,
			AutoOpen:        ui.AutoOpen,
			ChartWidth:      ui.ChartWidth,
			ChartHeight:     ui.ChartHeight,
			PreviewRows:     ui.PreviewRows,
			ShutdownTimeout: ui.ShutdownTimeout.String(),
		},
	}

	var buf bytes.Buffer
	buf.WriteString(starterHeader)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(starter); err != nil {
		return "", fmt.Errorf("failed to encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
