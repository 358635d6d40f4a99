package commands

import (
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapeda/internal/cli/output"
	"github.com/leapstack-labs/leapeda/internal/dataset"
)

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version   string   `json:"version"`
	Commit    string   `json:"commit"`
	BuildDate string   `json:"build_date"`
	GoVersion string   `json:"go_version"`
	Datasets  []string `json:"datasets"`
}

// NewVersionCommand creates the version command.
func NewVersionCommand(version, commit, buildDate string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display leapeda version, build details and the bundled datasets.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := BuildInfo{
				Version:   version,
				Commit:    commit,
				BuildDate: buildDate,
				GoVersion: runtime.Version(),
				Datasets:  dataset.Names(),
			}
			r := NewCommandContextWithoutData(cmd).Renderer
			if r.EffectiveMode() == output.ModeJSON {
				return r.JSON(info)
			}
			r.Printf("leapeda v%s\n", info.Version)
			r.Println("Exploratory data analysis dashboard built with Go, go-chart and DuckDB")
			if info.Commit != "unknown" && info.Commit != "" {
				r.Printf("commit %s, built %s\n", info.Commit, info.BuildDate)
			}
			r.Printf("%s, datasets: %s\n", info.GoVersion, strings.Join(info.Datasets, ", "))
			return nil
		},
	}
}
