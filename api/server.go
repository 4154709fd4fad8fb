/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend tooling

SECURITY NOTE:
  No authentication middleware. Actor identity rides in request bodies;
  deriving it from a session is out of scope for this service.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api/timecards", func(r chi.Router) {
		r.Get("/", h.ListTimecards)
		r.Post("/", h.CreateTimecard)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetTimecard)
			r.Delete("/", h.DeleteTimecard)

			r.Route("/lines", func(r chi.Router) {
				r.Get("/", h.GetLines)
				r.Post("/", h.AddLine)
				r.Post("/{unique}", h.ReplaceLine)
				r.Patch("/{unique}/{field}", h.PatchLineField)
			})

			r.Get("/transitions", h.GetTransitions)

			r.Post("/submittal", h.Submit)
			r.Get("/submittal", h.GetSubmittal)
			r.Post("/cancellation", h.Cancel)
			r.Get("/cancellation", h.GetCancellation)
			r.Post("/rejection", h.Reject)
			r.Get("/rejection", h.GetRejection)
			r.Post("/approval", h.Approve)
			r.Get("/approval", h.GetApproval)
		})
	})

	return r
}
