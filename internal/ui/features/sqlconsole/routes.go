package sqlconsole

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/leapeda/internal/ui/features/common"
)

// SetupRoutes registers the SQL console routes.
func SetupRoutes(
	router chi.Router,
	querier Querier,
	meta common.PageMeta,
	logger *slog.Logger,
) error {
	handlers := NewHandlers(querier, meta, logger)

	router.Get("/query", handlers.QueryPage)

	router.Route("/api/query", func(r chi.Router) {
		r.Post("/execute", handlers.ExecuteQuerySSE)
		r.Get("/schema/{name}", handlers.SchemaSSE)
	})

	return nil
}
