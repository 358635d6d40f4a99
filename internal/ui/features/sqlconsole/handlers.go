package sqlconsole

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/leapeda/internal/ui/features/common"
)

// Handlers provides HTTP handlers for the SQL console.
type Handlers struct {
	querier Querier
	meta    common.PageMeta
	logger  *slog.Logger
}

// NewHandlers creates a new Handlers instance. meta supplies the page
// chrome shared with the rest of the UI.
func NewHandlers(querier Querier, meta common.PageMeta, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	meta.Title = PageTitle
	meta.CurrentPath = "/query"
	return &Handlers{querier: querier, meta: meta, logger: logger}
}

// QueryPage renders the console with the table list and a starter query.
func (h *Handlers) QueryPage(w http.ResponseWriter, r *http.Request) {
	tables, err := h.querier.Tables(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list tables", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	starter := "SELECT 1"
	if len(tables) > 0 {
		starter = fmt.Sprintf("SELECT * FROM %s LIMIT 10", tables[0])
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := QueryPage(h.meta, tables, starter).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// ExecuteQuerySSE executes a SQL query and patches the results panel.
func (h *Handlers) ExecuteQuerySSE(w http.ResponseWriter, r *http.Request) {
	// Read signals BEFORE creating SSE (SSE consumes the request body)
	var signals QuerySignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		sse := datastar.NewSSE(w, r)
		_ = sse.PatchElementTempl(QueryError("Failed to read signals: " + err.Error()))
		return
	}

	sse := datastar.NewSSE(w, r)

	query := strings.TrimSpace(signals.SQL)
	if query == "" {
		_ = sse.PatchElementTempl(QueryError("Query cannot be empty"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	result, err := h.querier.Run(ctx, query, maxRows)
	if err != nil {
		h.logger.DebugContext(r.Context(), "query failed", "error", err)
		_ = sse.PatchElementTempl(QueryError(err.Error()))
		return
	}

	if err := sse.PatchElementTempl(QueryResults(result)); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// SchemaSSE patches the schema panel with the columns of a table.
func (h *Handlers) SchemaSSE(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)
	tableName := chi.URLParam(r, "name")

	columns, err := h.querier.Columns(r.Context(), tableName)
	if err != nil {
		_ = sse.ConsoleError(fmt.Errorf("failed to get schema: %w", err))
		return
	}

	if err := sse.PatchElementTempl(SchemaPanel(SchemaData{Name: tableName, Columns: columns})); err != nil {
		_ = sse.ConsoleError(err)
	}
}
