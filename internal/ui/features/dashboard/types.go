// Package dashboard is the EDA dashboard: a sidebar of analysis controls
// and the pane that shows the selected analysis.
package dashboard

import (
	"context"

	"github.com/leapstack-labs/leapeda/internal/dataset"
)

// Page text.
const (
	PageTitle     = "IRIS Dataset EDA"
	PageHeader    = "IRIS Dataset – Exploratory Data Analysis"
	PageFooter    = "IRIS Dataset EDA using leapeda"
	SidebarHeader = "EDA Options"
	ModeLabel     = "Select Analysis Type"
)

// Control labels.
const (
	ColumnLabel  = "Select Column"
	FeatureLabel = "Select Feature"
	XLabel       = "X Axis"
	YLabel       = "Y Axis"
	KindLabel    = "Plot Type"
)

// Element ids patched over SSE.
const (
	ControlsID = "controls"
	AnalysisID = "analysis"
)

// SessionName is the cookie holding the last selection.
const SessionName = "leapeda-dashboard"

// DatasetSource hands out the shared dataset.
type DatasetSource interface {
	Get(ctx context.Context) (*dataset.Dataset, error)
}
