/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the calendar frontend

ROUTE GROUPS:
  /api/ledger/*    Ledger read and mutation
  /api/types/*     Leave type registry
  /api/quotas      Quota table
  /api/rules/*     Recurrence rules (CRUD + preview + apply)
  /api/stats       Quota consumption report
  /api/holidays    Public holiday lookup

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

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
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Ledger routes
		r.Route("/ledger", func(r chi.Router) {
			r.Get("/", h.GetLedger)
			r.Post("/entries", h.SetEntry)
			r.Delete("/entries", h.RemoveEntry)
			r.Get("/{date}", h.GetDay)
		})

		// Leave type routes
		r.Route("/types", func(r chi.Router) {
			r.Get("/", h.ListTypes)
			r.Post("/", h.CreateType)
			r.Put("/{id}", h.UpdateType)
			r.Delete("/{id}", h.DeleteType)
		})

		// Quota routes
		r.Route("/quotas", func(r chi.Router) {
			r.Get("/", h.ListQuotas)
			r.Put("/", h.SetQuota)
		})

		// Recurrence rule routes
		r.Route("/rules", func(r chi.Router) {
			r.Get("/", h.ListRules)
			r.Post("/", h.CreateRule)
			r.Post("/preview", h.PreviewRule)
			r.Put("/{id}", h.UpdateRule)
			r.Delete("/{id}", h.DeleteRule)
			r.Post("/{id}/apply", h.ApplyRule)
		})

		// Stats and holiday routes
		r.Get("/stats", h.GetStats)
		r.Get("/holidays", h.GetHolidays)
	})

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"service": "gestion-conges",
			"api":     "/api",
		})
	})

	return r
}
