// Package router sets up all HTTP routes and middleware chains for the
// folio API. Reads are public; post writes sit behind a bearer token.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"folio/internal/handlers"
	"folio/internal/middleware"
	"folio/internal/respond"
)

// Handlers bundles the handler groups mounted by New.
type Handlers struct {
	Search *handlers.Search
	Series *handlers.Series
	Posts  *handlers.Posts
	Health http.Handler
}

// Options tune the middleware chains.
type Options struct {
	// WriteToken guards post writes. Empty disables them.
	WriteToken string
	// SearchLimiter rate-limits /api/search per client IP. Nil disables it.
	SearchLimiter *middleware.RateLimiter
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(h Handlers, opts Options) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request. RequestID runs first
	// so the logger and recoverer can report it.
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Method(http.MethodGet, "/health", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if opts.SearchLimiter != nil {
				r.Use(opts.SearchLimiter.Middleware)
			}
			r.Method(http.MethodGet, "/search", h.Search)
		})

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", h.Posts.List)
			r.Get("/{id}", h.Posts.Get)
			r.Get("/{id}/series", h.Series.PostContext)

			// Writes require the API token.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireToken(opts.WriteToken))
				r.Post("/", h.Posts.Create)
				r.Put("/{id}", h.Posts.Update)
				r.Delete("/{id}", h.Posts.Delete)
			})
		})

		r.Get("/series/{slug}", h.Series.Contents)
	})

	return r
}
