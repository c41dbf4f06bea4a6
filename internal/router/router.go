// Package router sets up the HTTP routes and middleware chain for the
// content API. Every content route sits behind rate limiting and API
// key authentication; only the health check is open.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"inkwell/internal/handlers"
	"inkwell/internal/middleware"
)

// New creates and returns the configured Chi router.
func New(api *handlers.API, limiter *middleware.RateLimiter, apiKeys []string) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	// Health check — no auth, no rate limit.
	r.Get("/health", healthHandler)

	// Content routes — rate limited and key-gated.
	r.Group(func(r chi.Router) {
		r.Use(limiter.Middleware)
		r.Use(middleware.RequireAPIKey(apiKeys))

		r.Get("/posts", api.ListPosts)

		r.Route("/post", func(r chi.Router) {
			r.Get("/", api.GetPost)
			r.Get("/headings", api.GetPostHeadings)
			r.Post("/increment_click", api.IncrementPostClick)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", api.ListCategories)
			r.Post("/increment_click", api.IncrementCategoryClick)
		})

		r.Get("/category/posts", api.GetCategoryPosts)
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
