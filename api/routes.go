package api

import (
	"github.com/go-chi/chi/v5"
)

// setupFrontendRoutes sets up all routes with session resolution
func setupFrontendRoutes(r chi.Router, handlers *routeHandlers, session sessionMiddleware) {
	r.Group(func(r chi.Router) {
		r.Use(session.resolve)
		r.Use(ColoredHTTPLoggingMiddleware)

		// Auth endpoints
		r.Post("/auth/signup", handlers.authHandler.signup())
		r.Post("/auth/login", handlers.authHandler.login())
		r.Get("/auth/session", handlers.authHandler.session())

		// Project endpoints
		r.Get("/projects", handlers.projectHandler.getPublishedProjects())
		r.Get("/projects/featured", handlers.projectHandler.getFeaturedProjects())
		r.Get("/projects/stream", handlers.projectHandler.streamProjects())
		r.Get("/project/{projectID}", handlers.projectHandler.getProject())
		r.Post("/project", handlers.projectHandler.createProject())
		r.Put("/project/{projectID}", handlers.projectHandler.updateProject())
		r.Patch("/project/{projectID}/published", handlers.projectHandler.togglePublished())
		r.Patch("/project/{projectID}/featured", handlers.projectHandler.toggleFeatured())
		r.Delete("/project/{projectID}", handlers.projectHandler.deleteProject())
		r.Post("/project/{projectID}/cover", handlers.projectHandler.uploadCover())

		// Contact & chat endpoints
		r.Post("/contact", handlers.contactHandler.submit())
		r.Post("/chat", handlers.chatHandler.reply())
	})
}
