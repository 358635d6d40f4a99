// Package sqlconsole provides an ad-hoc SQL page over the dataset warehouse.
package sqlconsole

import (
	"context"
	"time"

	"github.com/leapstack-labs/leapeda/internal/warehouse"
)

const (
	maxRows      = 1000
	queryTimeout = 30 * time.Second
)

// Element IDs patched by the console endpoints.
const (
	ResultsID = "query-results"
	SchemaID  = "schema-panel"
)

// PageTitle is the document title of the console.
const PageTitle = "SQL Console"

// QuerySignals represents the signals sent from the frontend.
type QuerySignals struct {
	SQL string `json:"sql"`
}

// Querier runs SQL against the loaded dataset.
type Querier interface {
	Run(ctx context.Context, query string, limit int) (*warehouse.Result, error)
	Tables(ctx context.Context) ([]string, error)
	Columns(ctx context.Context, table string) ([]warehouse.Column, error)
}

// SchemaData describes one table for the schema panel.
type SchemaData struct {
	Name    string
	Columns []warehouse.Column
}
