// Package router sets up HTTP routes for the UI server.
package router

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/leapeda/internal/eda"
	"github.com/leapstack-labs/leapeda/internal/ui/features/common"
	dashboardFeature "github.com/leapstack-labs/leapeda/internal/ui/features/dashboard"
	sqlconsoleFeature "github.com/leapstack-labs/leapeda/internal/ui/features/sqlconsole"
	"github.com/leapstack-labs/leapeda/internal/ui/livereload"
	"github.com/leapstack-labs/leapeda/internal/ui/resources"
)

// Deps holds everything the feature routes need.
type Deps struct {
	Source       dashboardFeature.DatasetSource
	Controller   *eda.Controller
	SessionStore sessions.Store
	// Querier enables the SQL console when set.
	Querier sqlconsoleFeature.Querier
	// Reload enables live reload endpoints when set.
	Reload *livereload.Hub
	Logger *slog.Logger
}

// SetupRoutes configures all routes for the UI server.
func SetupRoutes(router chi.Router, deps Deps) error {
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.DiscardHandler)
	}

	// Hot reload endpoints for dev builds
	if deps.Reload != nil {
		router.Get(common.LiveReloadPath, deps.Reload.Handler())
		router.Get("/hotreload", deps.Reload.TriggerHandler())
	}

	// Static assets
	router.Handle(resources.StaticPrefix+"*", resources.Handler())

	router.Get("/healthz", healthz(deps.Source))

	base := common.PageMeta{
		Header:     dashboardFeature.PageHeader,
		Footer:     dashboardFeature.PageFooter,
		Nav:        navigation(deps),
		LiveReload: deps.Reload != nil,
	}

	// Feature routes
	if err := dashboardFeature.SetupRoutes(router, deps.Source, deps.Controller, deps.SessionStore, deps.Logger, base); err != nil {
		return err
	}

	if deps.Querier != nil {
		if err := sqlconsoleFeature.SetupRoutes(router, deps.Querier, base, deps.Logger); err != nil {
			return err
		}
	}

	return nil
}

// navigation lists the pages in the header. A single page needs no nav.
func navigation(deps Deps) []common.NavItem {
	if deps.Querier == nil {
		return nil
	}
	return []common.NavItem{
		{Label: "Dashboard", Path: "/"},
		{Label: sqlconsoleFeature.PageTitle, Path: "/query"},
	}
}

type health struct {
	Status  string `json:"status"`
	Dataset string `json:"dataset,omitempty"`
	Rows    int    `json:"rows,omitempty"`
	Error   string `json:"error,omitempty"`
}

func healthz(source dashboardFeature.DatasetSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		ds, err := source.Get(r.Context())
		if err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(health{Status: "unavailable", Error: err.Error()})
			return
		}
		rows, _ := ds.Shape()
		_ = json.NewEncoder(w).Encode(health{Status: "ok", Dataset: ds.Name(), Rows: rows})
	}
}
