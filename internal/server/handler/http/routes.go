package http

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/bganesh/bprogress/internal/middleware"
)

// NewRouter constructs the handler serving the dashboard data API.
//
// Routes:
//
//	GET /health                      → DashboardHandler.Health
//	GET /api/master                  → DashboardHandler.MasterView
//	GET /api/quote                   → DashboardHandler.Quote
//	GET /api/statuses/active         → DashboardHandler.ActiveStatuses
//	GET /api/friends/{id}/streak     → DashboardHandler.Streak
//	GET /api/friends/{id}/summary    → DashboardHandler.Summary
//	GET /api/friends/{id}/inspiration → DashboardHandler.Inspiration
//	GET /api/conversations/{a}/{b}   → DashboardHandler.Conversation
//	GET /api/export                  → DashboardHandler.Export
func NewRouter(dashboard *DashboardHandler, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	// Log each request and its metadata
	r.Use(middleware.WithRequestLogging(logger))

	r.Get("/health", dashboard.Health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/master", dashboard.MasterView)
		r.Get("/quote", dashboard.Quote)
		r.Get("/statuses/active", dashboard.ActiveStatuses)
		r.Get("/friends/{id}/streak", dashboard.Streak)
		r.Get("/friends/{id}/summary", dashboard.Summary)
		r.Get("/friends/{id}/inspiration", dashboard.Inspiration)
		r.Get("/conversations/{a}/{b}", dashboard.Conversation)
		r.Get("/export", dashboard.Export)
	})

	return r
}
