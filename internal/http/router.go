// Package http assembles the service router: public device-scoped routes,
// the admin surface and health.
package http

import (
	stdhttp "net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"dailyitems/internal/http/handlers"
	"dailyitems/internal/middleware"
	"dailyitems/internal/ratelimit"
)

// NewRouter wires all routes and middleware around the handler container.
func NewRouter(app *handlers.App, adminToken string, logger zerolog.Logger) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP, chimw.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))

	r.Get("/v1/healthz", app.Health)

	// Public surface: device-identified, rate-limited per action.
	r.Route("/v1/items/{item_id}/comments", func(r chi.Router) {
		r.Use(middleware.RequireDevice)
		r.With(middleware.RateLimit(app.Limiter, ratelimit.ActionGenerateComments, logger)).
			Post("/generate", app.PublicGenerate)
	})

	// Admin surface: token-asserted role, no device scoping.
	r.Route("/v1/admin", func(r chi.Router) {
		r.Use(middleware.RequireAdmin(adminToken))
		r.Post("/items/{item_id}/comments/generate", app.AdminGenerate)
		r.Post("/hashtags/validate", app.ValidateHashtags)
		r.Get("/hashtags", app.ListWhitelist)
		r.Put("/hashtags/{tag}", app.UpsertWhitelistEntry)
		r.Get("/jobs/{job_id}", app.GetJob)
	})

	return r
}
