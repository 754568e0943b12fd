package api

import (
	"github.com/go-chi/chi/v5"
)

// setupAPIRoutes mounts the JSON API under /api. Write endpoints and the
// admin listing require a bearer token.
func setupAPIRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware, limiter *ipRateLimiter) {
	r.Route("/api", func(r chi.Router) {
		r.Use(limiter.limit)

		r.Get("/health", handlers.healthHandler.health())

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", handlers.authHandler.login())

			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.authenticate)
				r.Post("/verify", handlers.authHandler.verify())
				r.Post("/change-password", handlers.authHandler.changePassword())
			})
		})

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", handlers.projectHandler.getPublicProjects())
			r.Get("/{projectID}", handlers.projectHandler.getProject())

			// Authenticated routes
			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.authenticate)
				r.Get("/admin", handlers.projectHandler.getAdminProjects())
				r.Post("/", handlers.projectHandler.createProject())
				r.Put("/{projectID}", handlers.projectHandler.updateProject())
				r.Delete("/{projectID}", handlers.projectHandler.deleteProject())
			})
		})
	})
}
