package commands

import (
	"context"
	"fmt"
	"math"
	"net"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapeda/internal/cli/config"
	"github.com/leapstack-labs/leapeda/internal/cli/output"
	"github.com/leapstack-labs/leapeda/internal/dataset"
	"github.com/leapstack-labs/leapeda/internal/eda"
	"github.com/leapstack-labs/leapeda/internal/stats"
	"github.com/leapstack-labs/leapeda/internal/warehouse"
)

// DoctorOptions holds options for the doctor command.
type DoctorOptions struct {
	Format string // Output format: text, markdown, json
}

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand() *cobra.Command {
	opts := &DoctorOptions{}
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that the dataset, charts and warehouse work",
		Long: `Run health checks over the leapeda setup.

The doctor command checks:
- Configuration file discovery
- Dataset loading, missing values and species labels
- Rendering of every analysis mode
- DuckDB warehouse loading and agreement with the in-memory statistics
- Availability of the dashboard port

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON: Machine-readable format`,
		Example: `  # Run health check
  leapeda doctor

  # Output as JSON
  leapeda doctor --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json")

	return cmd
}

// DoctorOutput is the JSON output for the doctor command.
type DoctorOutput struct {
	Summary         SetupSummary  `json:"summary"`
	HealthChecks    []HealthCheck `json:"health_checks"`
	Score           int           `json:"score"`
	Recommendations []string      `json:"recommendations"`
	IssueCount      int           `json:"issue_count"`
}

// SetupSummary describes what the checks ran against.
type SetupSummary struct {
	ConfigFile string   `json:"config_file,omitempty"`
	Dataset    string   `json:"dataset"`
	Rows       int      `json:"rows"`
	Columns    int      `json:"columns"`
	Numeric    int      `json:"numeric_columns"`
	Species    []string `json:"species,omitempty"`
	Warehouse  string   `json:"warehouse"`
	Port       int      `json:"port"`
}

// HealthCheck represents a single health check result.
type HealthCheck struct {
	RuleID     string   `json:"rule_id"`
	Name       string   `json:"name"`
	Group      string   `json:"group"`
	Status     string   `json:"status"` // "pass", "warn", "error", "skip"
	IssueCount int      `json:"issue_count"`
	Details    []string `json:"details,omitempty"`
}

// doctorEnv is what the checks inspect.
type doctorEnv struct {
	cfg        *config.Config
	configFile string
	ds         *dataset.Dataset
	dsErr      error
	controller *eda.Controller
	port       int
}

type doctorCheck struct {
	id    string
	name  string
	group string
	// needsData checks are skipped when the dataset failed to load.
	needsData bool
	run       func(ctx context.Context, env *doctorEnv) (status string, details []string)
}

// statTolerance bounds the difference between DuckDB and in-memory figures.
const statTolerance = 1e-9

var doctorChecks = []doctorCheck{
	{id: "CF01", name: "Configuration file", group: "config", run: checkConfigFile},
	{id: "DS01", name: "Dataset loads", group: "dataset", run: checkDatasetLoads},
	{id: "DS02", name: "No missing values", group: "dataset", needsData: true, run: checkMissingValues},
	{id: "DS03", name: "Numeric columns", group: "dataset", needsData: true, run: checkNumericColumns},
	{id: "DS04", name: "Species labels", group: "dataset", needsData: true, run: checkSpecies},
	{id: "CH01", name: "Every mode renders", group: "charts", needsData: true, run: checkModesRender},
	{id: "WH01", name: "Warehouse statistics agree", group: "warehouse", needsData: true, run: checkWarehouse},
	{id: "UI01", name: "Dashboard port available", group: "ui", run: checkPort},
}

var recommendations = map[string]string{
	"CF01": "Run 'leapeda init' to write a leapeda.yaml with the defaults",
	"DS01": "Check the dataset name in leapeda.yaml or --dataset",
	"DS02": "Missing values are dropped from statistics and charts, clean the source data",
	"DS03": "Joint and pair plots need at least two numeric columns",
	"DS04": "Categorical plots need a species column",
	"CH01": "Run with --verbose and report the failing mode",
	"WH01": "Check the warehouse path in leapeda.yaml, or use :memory:",
	"UI01": "Stop the process using the port or start the dashboard with --port",
}

func runDoctor(cmd *cobra.Command, opts *DoctorOptions) error {
	cmdCtx := NewCommandContextWithoutData(cmd)
	r := cmdCtx.Renderer

	// Override renderer if format flag is set
	if opts.Format != "" {
		mode, err := output.ParseMode(opts.Format)
		if err != nil {
			return err
		}
		r = output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)
	}

	env := &doctorEnv{
		cfg:        cmdCtx.Cfg,
		configFile: config.GetConfigFileUsed(),
		controller: cmdCtx.Controller(),
		port:       cmdCtx.Cfg.GetUIConfig().Port,
	}
	env.ds, env.dsErr = dataset.Open(cmdCtx.Cfg.Dataset)

	doctorOutput := buildDoctorOutput(cmd.Context(), env)

	// Render based on mode
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(doctorOutput)
	case output.ModeMarkdown:
		return renderDoctorMarkdown(r, doctorOutput)
	default:
		return renderDoctorText(r, doctorOutput)
	}
}

func buildDoctorOutput(ctx context.Context, env *doctorEnv) *DoctorOutput {
	out := &DoctorOutput{Summary: buildSetupSummary(env)}

	for _, c := range doctorChecks {
		check := HealthCheck{RuleID: c.id, Name: c.name, Group: c.group}
		if c.needsData && env.ds == nil {
			check.Status = "skip"
			check.Details = []string{"dataset unavailable"}
		} else {
			check.Status, check.Details = c.run(ctx, env)
		}
		if check.Status == "warn" || check.Status == "error" {
			check.IssueCount = max(1, len(check.Details))
			out.IssueCount += check.IssueCount
			if rec := recommendations[c.id]; rec != "" {
				out.Recommendations = append(out.Recommendations, rec)
			}
		}
		out.HealthChecks = append(out.HealthChecks, check)
	}

	out.Score = calculateHealthScore(out.HealthChecks)
	return out
}

func buildSetupSummary(env *doctorEnv) SetupSummary {
	summary := SetupSummary{
		ConfigFile: env.configFile,
		Dataset:    env.cfg.Dataset,
		Warehouse:  env.cfg.Warehouse,
		Port:       env.port,
	}
	if env.ds != nil {
		summary.Rows, summary.Columns = env.ds.Shape()
		summary.Numeric = len(env.ds.NumericColumns())
		summary.Species = env.ds.Species()
	}
	return summary
}

// calculateHealthScore computes a health score from 0-100. Errors cost
// twice as much as warnings.
func calculateHealthScore(checks []HealthCheck) int {
	score := 100
	for _, check := range checks {
		switch check.Status {
		case "error":
			score -= 20 * check.IssueCount
		case "warn":
			score -= 10 * check.IssueCount
		}
	}
	return max(0, min(score, 100))
}

func checkConfigFile(_ context.Context, env *doctorEnv) (string, []string) {
	if env.configFile == "" {
		return "warn", []string{"no leapeda.yaml found, using defaults"}
	}
	return "pass", []string{env.configFile}
}

func checkDatasetLoads(_ context.Context, env *doctorEnv) (string, []string) {
	if env.dsErr != nil {
		return "error", []string{env.dsErr.Error()}
	}
	rows, cols := env.ds.Shape()
	if rows == 0 {
		return "error", []string{"dataset has no rows"}
	}
	return "pass", []string{fmt.Sprintf("%d rows x %d columns", rows, cols)}
}

func checkMissingValues(_ context.Context, env *doctorEnv) (string, []string) {
	if n := env.ds.MissingValues(); n > 0 {
		return "warn", []string{fmt.Sprintf("%d missing values", n)}
	}
	return "pass", nil
}

func checkNumericColumns(_ context.Context, env *doctorEnv) (string, []string) {
	numeric := env.ds.NumericColumns()
	if len(numeric) < 2 {
		return "error", []string{fmt.Sprintf("%d numeric columns", len(numeric))}
	}
	return "pass", []string{strings.Join(numeric, ", ")}
}

func checkSpecies(_ context.Context, env *doctorEnv) (string, []string) {
	species := env.ds.Species()
	if len(species) == 0 {
		return "error", []string{"no species labels"}
	}
	return "pass", []string{strings.Join(species, ", ")}
}

func checkModesRender(ctx context.Context, env *doctorEnv) (string, []string) {
	var details []string
	for _, m := range eda.Modes {
		sel, err := eda.ParseSelection(eda.Signals{Mode: string(m)})
		if err == nil {
			_, err = env.controller.Dispatch(ctx, env.ds, sel)
		}
		if err != nil {
			details = append(details, fmt.Sprintf("%s: %v", m, err))
		}
	}
	if n := env.controller.Surfaces().Outstanding(); n > 0 {
		details = append(details, fmt.Sprintf("%d drawing surfaces not released", n))
	}
	if len(details) > 0 {
		return "error", details
	}
	return "pass", []string{fmt.Sprintf("%d modes", len(eda.Modes))}
}

func checkWarehouse(ctx context.Context, env *doctorEnv) (string, []string) {
	w, err := warehouse.Open(ctx, env.cfg.Warehouse, env.ds, nil)
	if err != nil {
		return "error", []string{err.Error()}
	}
	defer func() { _ = w.Close() }()

	fromSQL, err := w.Describe(ctx)
	if err != nil {
		return "error", []string{err.Error()}
	}

	names := env.ds.NumericColumns()
	columns := make([][]float64, len(names))
	for i, name := range names {
		if columns[i], err = env.ds.Column(name); err != nil {
			return "error", []string{err.Error()}
		}
	}
	inMemory, err := stats.Describe(names, columns)
	if err != nil {
		return "error", []string{err.Error()}
	}

	if details := compareSummaries(inMemory, fromSQL); len(details) > 0 {
		return "warn", details
	}
	return "pass", []string{fmt.Sprintf("%d columns match", len(fromSQL.Columns))}
}

// compareSummaries lists every figure that differs between two summaries.
func compareSummaries(want, got *stats.Summary) []string {
	if len(want.Columns) != len(got.Columns) {
		return []string{fmt.Sprintf("%d columns in memory, %d in warehouse", len(want.Columns), len(got.Columns))}
	}

	var details []string
	for i, w := range want.Columns {
		g := got.Columns[i]
		if w.Name != g.Name {
			details = append(details, fmt.Sprintf("column %d: %s in memory, %s in warehouse", i, w.Name, g.Name))
			continue
		}
		wv, gv := w.Values(), g.Values()
		for j, stat := range stats.SummaryStats {
			if math.Abs(wv[j]-gv[j]) > statTolerance*math.Max(1, math.Abs(wv[j])) {
				details = append(details, fmt.Sprintf("%s %s: %s in memory, %s in warehouse",
					w.Name, stat, dataset.FormatFloat(wv[j]), dataset.FormatFloat(gv[j])))
			}
		}
	}
	return details
}

func checkPort(_ context.Context, env *doctorEnv) (string, []string) {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", env.port))
	if err != nil {
		return "warn", []string{fmt.Sprintf("port %d is in use", env.port)}
	}
	_ = ln.Close()
	return "pass", []string{fmt.Sprintf("port %d", env.port)}
}

var groupTitles = map[string]string{
	"config":    "Configuration",
	"dataset":   "Dataset",
	"charts":    "Charts",
	"warehouse": "Warehouse",
	"ui":        "Dashboard",
}

func groupTitle(group string) string {
	if t, ok := groupTitles[group]; ok {
		return t
	}
	return output.Label(group)
}

func statusWord(status string) string {
	switch status {
	case "pass":
		return "success"
	case "warn":
		return "warning"
	case "skip":
		return "skipped"
	default:
		return "failed"
	}
}

func renderDoctorText(r *output.Renderer, out *DoctorOutput) error {
	r.Header(1, "leapeda Health Report")

	r.Header(2, "Setup")
	if out.Summary.ConfigFile != "" {
		r.KeyValue("Config", out.Summary.ConfigFile)
	}
	r.KeyValue("Dataset", fmt.Sprintf("%s (%d rows, %d columns, %d numeric)",
		out.Summary.Dataset, out.Summary.Rows, out.Summary.Columns, out.Summary.Numeric))
	r.KeyValue("Warehouse", out.Summary.Warehouse)
	r.KeyValue("Port", fmt.Sprintf("%d", out.Summary.Port))
	r.Println("")

	r.Header(2, "Health Checks")
	currentGroup := ""
	for _, check := range out.HealthChecks {
		if check.Group != currentGroup {
			currentGroup = check.Group
			r.Println(groupTitle(currentGroup))
		}
		name := check.RuleID + ": " + check.Name
		detail := ""
		if len(check.Details) > 0 {
			detail = check.Details[0]
		}
		r.StatusLine(name, statusWord(check.Status), detail)

		// Show up to 3 more details for issues
		for i, d := range check.Details[min(1, len(check.Details)):] {
			if i >= 3 {
				r.Muted(fmt.Sprintf("      ... and %d more", len(check.Details)-4))
				break
			}
			r.Muted("      - " + d)
		}
	}
	r.Println("")

	r.KeyValue("Health Score", fmt.Sprintf("%d/100", out.Score))
	r.Println("")

	if len(out.Recommendations) > 0 {
		r.Header(2, "Recommendations")
		for i, rec := range out.Recommendations {
			r.Printf("   %d. %s\n", i+1, rec)
		}
		r.Println("")
	}

	return nil
}

func renderDoctorMarkdown(r *output.Renderer, out *DoctorOutput) error {
	r.Println("# leapeda Health Report")
	r.Println("")

	r.Println("## Setup")
	r.Println("")
	if out.Summary.ConfigFile != "" {
		r.Printf("- **Config**: %s\n", out.Summary.ConfigFile)
	}
	r.Printf("- **Dataset**: %s\n", out.Summary.Dataset)
	r.Printf("- **Rows**: %d\n", out.Summary.Rows)
	r.Printf("- **Columns**: %d (%d numeric)\n", out.Summary.Columns, out.Summary.Numeric)
	if len(out.Summary.Species) > 0 {
		r.Printf("- **Species**: %s\n", strings.Join(out.Summary.Species, ", "))
	}
	r.Printf("- **Warehouse**: %s\n", out.Summary.Warehouse)
	r.Printf("- **Port**: %d\n", out.Summary.Port)
	r.Println("")

	r.Println("## Health Checks")
	r.Println("")

	currentGroup := ""
	for _, check := range out.HealthChecks {
		if check.Group != currentGroup {
			currentGroup = check.Group
			r.Println("### " + groupTitle(currentGroup))
			r.Println("")
		}

		r.Printf("- **[%s]** %s: %s", strings.ToUpper(check.Status), check.RuleID, check.Name)
		if check.IssueCount > 0 {
			r.Printf(" (%d issues)", check.IssueCount)
		}
		r.Println("")

		for _, detail := range check.Details {
			r.Printf("  - %s\n", detail)
		}
	}
	r.Println("")

	r.Println("## Health Score")
	r.Println("")
	r.Printf("**%d/100**\n", out.Score)
	r.Println("")

	if len(out.Recommendations) > 0 {
		r.Println("## Recommendations")
		r.Println("")
		for i, rec := range out.Recommendations {
			r.Printf("%d. %s\n", i+1, rec)
		}
		r.Println("")
	}

	return nil
}
