package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/jevonc/portfolio-backend/models"
)

// setupPublicRoutes sets up the routes the portfolio site calls without a session
func setupPublicRoutes(r chi.Router, handlers *routeHandlers, contactLimiter *ipRateLimiter) {
	r.Group(func(r chi.Router) {
		r.Use(ColoredHTTPLoggingMiddleware)

		r.Get("/health", handlers.publicHandler.health())
		r.Get("/projects", handlers.publicHandler.listRecords(models.KindProject))
		r.Get("/achievements", handlers.publicHandler.listRecords(models.KindAchievement))

		r.Get("/resume", handlers.resumeHandler.getResume())
		r.Get("/resume.pdf", handlers.resumeHandler.downloadResume())

		r.With(contactLimiter.middleware(handlers.contactHandler.responder)).
			Post("/contact", handlers.contactHandler.sendMessage())

		r.Post("/login", handlers.sessionHandler.login())
		r.Post("/logout", handlers.sessionHandler.logout())
		r.Get("/logout", handlers.sessionHandler.logout())
	})
}

// setupDashboardRoutes sets up all routes behind the session guard
func setupDashboardRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware) {
	r.Group(func(r chi.Router) {
		r.Use(ColoredHTTPLoggingMiddleware)
		r.Use(authMiddleware.redirectToLogin)

		r.Get("/dashboard", handlers.sessionHandler.dashboard())
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(ColoredHTTPLoggingMiddleware)
		r.Use(authMiddleware.authenticate)

		// Editor sessions
		r.Post("/editors", handlers.editorHandler.openEditor())
		r.Get("/editors/{editorID}", handlers.editorHandler.getEditor())
		r.Post("/editors/{editorID}/submit", handlers.editorHandler.submitEditor())
		r.Delete("/editors/{editorID}", handlers.editorHandler.closeEditor())

		// Record endpoints
		r.Get("/{kind}", handlers.recordHandler.listRecords())
		r.Post("/{kind}", handlers.recordHandler.createRecord())
		r.Put("/{kind}/{recordID}", handlers.recordHandler.updateRecord())
		r.Delete("/{kind}/{recordID}", handlers.recordHandler.deleteRecord())
	})
}
