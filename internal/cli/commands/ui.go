package commands

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapeda/internal/cli/config"
	"github.com/leapstack-labs/leapeda/internal/ui"
)

// UIOptions holds options for the ui command.
type UIOptions struct {
	Port      int
	NoBrowser bool
	NoSQL     bool
}

// NewUICommand creates the ui command.
func NewUICommand() *cobra.Command {
	opts := &UIOptions{}

	cmd := &cobra.Command{
		Use:     "ui",
		Aliases: []string{"serve"},
		Short:   "Start the EDA dashboard",
		Long: `Start a local web server hosting the interactive EDA dashboard.

The dashboard provides:
- Dataset overview and descriptive statistics
- Distribution, boxen, strip and swarm plots
- Pair and joint plots
- A SQL console over the DuckDB warehouse`,
		Example: `  # Start the dashboard on the default port
  leapeda ui

  # Start on a custom port
  leapeda ui --port 3000

  # Start without auto-opening the browser
  leapeda ui --no-browser`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUI(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Port, "port", 0, fmt.Sprintf("Port to serve on (default: %d)", config.DefaultPort))
	cmd.Flags().BoolVar(&opts.NoBrowser, "no-browser", false, "Don't auto-open browser")
	cmd.Flags().BoolVar(&opts.NoSQL, "no-sql", false, "Disable the SQL console")

	return cmd
}

func runUI(cmd *cobra.Command, opts *UIOptions) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	logger := cmdCtx.Logger

	// CLI flags override config file
	uiCfg := cmdCtx.Cfg.GetUIConfig()
	port := uiCfg.Port
	if opts.Port != 0 {
		port = opts.Port
	}
	autoOpen := uiCfg.AutoOpen && !opts.NoBrowser

	serverCfg := ui.Config{
		Source:          cmdCtx.Cache,
		Controller:      cmdCtx.Controller(),
		Port:            port,
		SessionSecret:   generateSessionSecret(uiCfg),
		ShutdownTimeout: uiCfg.ShutdownTimeout,
		Logger:          logger,
	}

	if !opts.NoSQL {
		w, err := cmdCtx.OpenWarehouse(cmd.Context())
		if err != nil {
			// The dashboard works from the in-memory dataset alone.
			logger.Warn("SQL console disabled", "error", err)
		} else {
			defer func() { _ = w.Close() }()
			serverCfg.Warehouse = w
		}
	}

	server, err := ui.NewServer(serverCfg)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("http://localhost:%d", port)
	if autoOpen {
		go openBrowser(url)
	}

	r := cmdCtx.Renderer
	r.Success(fmt.Sprintf("Serving %s dashboard on %s", cmdCtx.Cfg.Dataset, url))
	r.Muted("Press Ctrl+C to stop")

	return server.Serve(cmd.Context())
}

// generateSessionSecret picks the cookie signing secret: config first,
// then the environment, then a fixed development secret.
func generateSessionSecret(uiCfg *config.UIConfig) string {
	if uiCfg != nil && uiCfg.SessionSecret != "" {
		return uiCfg.SessionSecret
	}
	if secret := os.Getenv(config.EnvPrefix + "SESSION_SECRET"); secret != "" {
		return secret
	}
	return "leapeda-dev-secret-change-in-production" //nolint:gosec // development default
}

// openBrowser opens the default browser to the specified URL.
func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url) //nolint:noctx
	case "linux":
		cmd = exec.Command("xdg-open", url) //nolint:noctx
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url) //nolint:noctx
	default:
		return
	}

	_ = cmd.Start()
}
