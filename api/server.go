/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the citizen/SMC frontends

ROUTE GROUPS:
  /api/reports/*   Public submission, lookup, search, photo verification
  /api/admin/*     Admin listing and status mutation, behind Basic auth
  /uploads/*       Static serving of locally stored photos
  /health          Liveness probe

AUTH:
  Admin routes use chi's BasicAuth middleware, which compares credentials
  in constant time and answers a mismatch with 401 plus a WWW-Authenticate
  challenge.

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

// RouterConfig carries the router-level settings from config.
type RouterConfig struct {
	CORSOrigins   []string
	AdminUsername string
	AdminPassword string
	UploadsDir    string
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// Health
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Static serving of locally stored photos
	r.Handle("/uploads/*", http.StripPrefix("/uploads/",
		http.FileServer(http.Dir(cfg.UploadsDir))))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/reports", func(r chi.Router) {
			r.Post("/", h.CreateReport)
			r.Get("/", h.ListReports)
			r.Get("/photos", h.ListPhotoReports)
			r.Get("/search", h.SearchReports)
			r.Get("/{reportID}", h.GetReport)
			r.Patch("/{reportID}", h.UpdateStatus)
			r.Put("/{reportID}/photo-status", h.UpdatePhotoStatus)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.BasicAuth("smc-admin", map[string]string{
				cfg.AdminUsername: cfg.AdminPassword,
			}))
			r.Get("/reports", h.AdminListReports)
			r.Patch("/reports/{reportID}/status", h.UpdateStatus)
		})
	})

	return r
}
