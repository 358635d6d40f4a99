package dashboard

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/leapeda/internal/eda"
	"github.com/leapstack-labs/leapeda/internal/ui/features/common"
)

// SetupRoutes configures routes for the dashboard feature.
func SetupRoutes(
	router chi.Router,
	source DatasetSource,
	controller *eda.Controller,
	sessionStore sessions.Store,
	logger *slog.Logger,
	base common.PageMeta,
) error {
	handlers := NewHandlers(source, controller, sessionStore, logger, base)

	router.Get("/", handlers.DashboardPage)
	router.Post("/analysis", handlers.AnalysisSSE)

	return nil
}
