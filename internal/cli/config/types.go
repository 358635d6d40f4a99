// Package config provides configuration management for the leapeda CLI.
package config

import (
	"time"

	"github.com/leapstack-labs/leapeda/internal/plot"
)

// UIConfig holds configuration for the dashboard server.
type UIConfig struct {
	Port            int           `koanf:"port"`
	AutoOpen        bool          `koanf:"auto_open"`
	SessionSecret   string        `koanf:"session_secret"`
	ChartWidth      int           `koanf:"chart_width"`
	ChartHeight     int           `koanf:"chart_height"`
	PreviewRows     int           `koanf:"preview_rows"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// DefaultUIConfig returns a UIConfig with default values.
func DefaultUIConfig() *UIConfig {
	return &UIConfig{
		Port:            DefaultPort,
		AutoOpen:        true,
		ChartWidth:      plot.DefaultSize.Width,
		ChartHeight:     plot.DefaultSize.Height,
		ShutdownTimeout: 5 * time.Second,
	}
}

// GetUIConfig returns the UI config with defaults applied for any unset values.
func (c *Config) GetUIConfig() *UIConfig {
	if c.UI == nil {
		return DefaultUIConfig()
	}
	ui := c.UI
	if ui.Port == 0 {
		ui.Port = DefaultPort
	}
	if ui.ChartWidth == 0 {
		ui.ChartWidth = plot.DefaultSize.Width
	}
	if ui.ChartHeight == 0 {
		ui.ChartHeight = plot.DefaultSize.Height
	}
	if ui.ShutdownTimeout == 0 {
		ui.ShutdownTimeout = 5 * time.Second
	}
	return ui
}

// ChartSize is the size of single-panel charts.
func (u *UIConfig) ChartSize() plot.Size {
	return plot.Size{Width: u.ChartWidth, Height: u.ChartHeight}
}

// Config holds all CLI configuration options.
type Config struct {
	Dataset      string    `koanf:"dataset"`
	Verbose      bool      `koanf:"verbose"`
	OutputFormat string    `koanf:"output"`
	Warehouse    string    `koanf:"warehouse"`
	UI           *UIConfig `koanf:"ui"`
}

// Default configuration values
const (
	DefaultDataset   = "iris"
	DefaultWarehouse = ":memory:"
	DefaultPort      = 8765
	DefaultOutput    = "auto" // Auto-detect: TTY=text, non-TTY=markdown
)
