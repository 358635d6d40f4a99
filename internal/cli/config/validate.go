package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/leapstack-labs/leapeda/internal/dataset"
)

// OutputFormats lists the accepted values of the output key.
var OutputFormats = []string{"auto", "text", "markdown", "json"}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Dataset == "" {
		return fmt.Errorf("dataset is required")
	}
	if !slices.Contains(dataset.Names(), c.Dataset) {
		return fmt.Errorf("unknown dataset %q (available: %s)\nHint: set dataset in leapeda.yaml or use --dataset",
			c.Dataset, strings.Join(dataset.Names(), ", "))
	}
	if c.OutputFormat != "" && !slices.Contains(OutputFormats, c.OutputFormat) {
		return fmt.Errorf("unknown output format %q (expected one of %s)", c.OutputFormat, strings.Join(OutputFormats, ", "))
	}
	if c.UI != nil {
		if err := c.UI.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks the UI settings.
func (u *UIConfig) Validate() error {
	if u.Port < 0 || u.Port > 65535 {
		return fmt.Errorf("ui.port out of range: %d", u.Port)
	}
	if u.ChartWidth < 0 || u.ChartHeight < 0 {
		return fmt.Errorf("ui.chart_width and ui.chart_height must not be negative")
	}
	if u.PreviewRows < 0 {
		return fmt.Errorf("ui.preview_rows must not be negative")
	}
	if u.ShutdownTimeout < 0 {
		return fmt.Errorf("ui.shutdown_timeout must not be negative")
	}
	return nil
}
