package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"
	"github.com/gorilla/sessions"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/leapeda/internal/dataset"
	"github.com/leapstack-labs/leapeda/internal/eda"
	"github.com/leapstack-labs/leapeda/internal/ui/features/common"
)

// Handlers provides HTTP handlers for the dashboard feature.
type Handlers struct {
	source       DatasetSource
	controller   *eda.Controller
	sessionStore sessions.Store
	logger       *slog.Logger
	base         common.PageMeta
}

// NewHandlers creates a new Handlers instance. base supplies the page chrome
// shared with the rest of the UI.
func NewHandlers(source DatasetSource, controller *eda.Controller, sessionStore sessions.Store, logger *slog.Logger, base common.PageMeta) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{
		source:       source,
		controller:   controller,
		sessionStore: sessionStore,
		logger:       logger,
		base:         base,
	}
}

func (h *Handlers) meta(path string) common.PageMeta {
	meta := h.base
	meta.Title = PageTitle
	meta.Header = PageHeader
	meta.Footer = PageFooter
	meta.CurrentPath = path
	meta.Wide = true
	return meta
}

// DashboardPage renders the whole page. The selection comes from the query
// string when it names any control, otherwise from the session.
func (h *Handlers) DashboardPage(w http.ResponseWriter, r *http.Request) {
	sig, fromQuery := signalsFromQuery(r.URL.Query())
	if !fromQuery {
		sig = h.loadSignals(r)
	}

	var (
		pane   templ.Component
		status int
	)
	sel, err := eda.ParseSelection(sig)
	if err != nil {
		h.logger.WarnContext(r.Context(), "rejected selection", "error", err)
		sig = eda.SignalsOf(eda.Overview{})
		pane, status = ErrorPane(err.Error()), http.StatusBadRequest
	} else {
		sig = eda.SignalsOf(sel)
		h.saveSignals(w, r, sig)
		pane, status = h.analysis(r.Context(), sel)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := DashboardPage(h.meta(r.URL.Path), sig, pane).Render(r.Context(), w); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to render dashboard", "error", err)
	}
}

// AnalysisSSE re-runs the analysis for the signals posted by the browser
// and patches the controls and the analysis pane.
func (h *Handlers) AnalysisSSE(w http.ResponseWriter, r *http.Request) {
	// Read signals BEFORE creating SSE (SSE consumes the request body)
	var sig eda.Signals
	if err := datastar.ReadSignals(r, &sig); err != nil {
		sse := datastar.NewSSE(w, r)
		_ = sse.PatchElementTempl(ErrorPane("Failed to read signals: " + err.Error()))
		return
	}

	sel, err := eda.ParseSelection(sig)
	if err == nil {
		sig = eda.SignalsOf(sel)
		// The cookie must be set before the event stream starts.
		h.saveSignals(w, r, sig)
	}

	sse := datastar.NewSSE(w, r)
	if err != nil {
		h.logger.WarnContext(r.Context(), "rejected selection", "error", err)
		if err := sse.PatchElementTempl(ErrorPane(err.Error())); err != nil {
			_ = sse.ConsoleError(err)
		}
		return
	}

	pane, _ := h.analysis(r.Context(), sel)
	if err := sse.PatchElementTempl(Controls(sig)); err != nil {
		_ = sse.ConsoleError(err)
		return
	}
	if err := sse.PatchElementTempl(pane); err != nil {
		_ = sse.ConsoleError(err)
		return
	}
	if err := sse.MarshalAndPatchSignals(sig); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// analysis dispatches sel against the shared dataset. Failures become an
// error pane with the matching status code.
func (h *Handlers) analysis(ctx context.Context, sel eda.Selection) (templ.Component, int) {
	ds, err := h.source.Get(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "dataset unavailable", "error", err)
		return ErrorPane(err.Error()), http.StatusInternalServerError
	}

	view, err := h.controller.Dispatch(ctx, ds, sel)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, eda.ErrInvalidSelection) || errors.Is(err, dataset.ErrUnknownColumn) {
			status = http.StatusBadRequest
		}
		return ErrorPane(err.Error()), status
	}
	return AnalysisPane(view), http.StatusOK
}
