package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapeda/internal/cli/config"
	"github.com/leapstack-labs/leapeda/internal/cli/output"
	"github.com/leapstack-labs/leapeda/internal/dataset"
	"github.com/leapstack-labs/leapeda/internal/eda"
	"github.com/leapstack-labs/leapeda/internal/plot"
	"github.com/leapstack-labs/leapeda/internal/warehouse"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
	Cache    *dataset.Cache
}

// NewCommandContext creates a CommandContext and loads the configured
// dataset into a fresh cache.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cc := NewCommandContextWithoutData(cmd)
	cc.Cache = dataset.NewCache(dataset.NamedLoader(cc.Cfg.Dataset), cc.Logger)
	if _, err := cc.Cache.Init(cmd.Context()); err != nil {
		return nil, err
	}
	return cc, nil
}

// NewCommandContextWithoutData creates a CommandContext without loading the
// dataset. Useful for commands that never read it.
func NewCommandContextWithoutData(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode, err := output.ParseMode(cfg.OutputFormat)
	if err != nil {
		mode = output.ModeAuto
	}
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// Dataset returns the cached dataset.
func (c *CommandContext) Dataset(ctx context.Context) (*dataset.Dataset, error) {
	if c.Cache == nil {
		return nil, fmt.Errorf("dataset not loaded")
	}
	return c.Cache.Get(ctx)
}

// Controller builds an analysis controller sized from the UI settings.
func (c *CommandContext) Controller() *eda.Controller {
	ui := c.Cfg.GetUIConfig()
	return eda.NewController(plot.NewPool(), eda.Options{
		ChartSize:   ui.ChartSize(),
		PreviewRows: ui.PreviewRows,
		Logger:      c.Logger,
	})
}

// OpenWarehouse loads the dataset into the configured DuckDB database. The
// caller closes it.
func (c *CommandContext) OpenWarehouse(ctx context.Context) (*warehouse.Warehouse, error) {
	ds, err := c.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	w, err := warehouse.Open(ctx, c.Cfg.Warehouse, ds, c.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open warehouse: %w", err)
	}
	return w, nil
}

// getConfig returns the current configuration, or the defaults when no
// configuration was loaded.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return &config.Config{
		Dataset:      config.DefaultDataset,
		OutputFormat: config.DefaultOutput,
		Warehouse:    config.DefaultWarehouse,
		UI:           config.DefaultUIConfig(),
	}
}
