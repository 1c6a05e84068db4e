package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/jevonc/portfolio-backend/auth"
	"github.com/jevonc/portfolio-backend/config"
	"github.com/jevonc/portfolio-backend/database"
	"github.com/jevonc/portfolio-backend/editor"
	"github.com/jevonc/portfolio-backend/relay"
	"github.com/jevonc/portfolio-backend/resume"
	"github.com/jevonc/portfolio-backend/store"
)

// Dependencies are constructed once in main and shared by every handler.
type Dependencies struct {
	Database database.Database
	Store    *store.Store
	Sessions *editor.Sessions
	Auth     auth.Provider
	Guard    *auth.Guard
	Relay    *relay.Relay
	Resume   resume.Locator
}

type Server struct {
	*http.Server
	startupTime time.Time
}

func NewServer(deps Dependencies, settings config.Settings) (Server, error) {
	address := fmt.Sprintf("0.0.0.0:%s", settings.Port) // Bind to 0.0.0.0 for external access

	// Capture startup time
	startupTime := time.Now()

	router := newRouter(deps, withSettings(settings), withStartupTime(startupTime))

	server := &http.Server{
		Addr:         address,
		Handler:      router,
		ReadTimeout:  settings.ReadTimeout,  // Timeout for reading the entire request
		WriteTimeout: settings.WriteTimeout, // Timeout for writing the response
		IdleTimeout:  settings.IdleTimeout,  // Timeout for idle connections
	}

	return Server{server, startupTime}, nil
}

type router struct {
	settings    config.Settings
	startupTime time.Time
}

func withSettings(s config.Settings) func(*router) {
	return func(r *router) {
		r.settings = s
	}
}

func withStartupTime(startupTime time.Time) func(*router) {
	return func(r *router) {
		r.startupTime = startupTime
	}
}

func newRouter(deps Dependencies, opts ...func(*router)) *chi.Mux {
	var router router
	for _, opt := range opts {
		opt(&router)
	}
	if router.startupTime.IsZero() {
		router.startupTime = time.Now()
	}

	chiRouter := chi.NewRouter()
	chiRouter.Use(middleware.RealIP)
	chiRouter.Use(LogInternalServerErrors)

	// Initialize all handlers
	handlers := initializeHandlers(deps, router.settings.SecureCookies, router.startupTime)

	// Initialize auth middleware
	authMiddleware := newAuthMiddleware(deps.Guard)

	// Apply CORS middleware
	acceptedOrigins := router.settings.AcceptedOrigins
	if len(acceptedOrigins) == 0 {
		acceptedOrigins = []string{"http://localhost:3000"}
	}
	chiRouter.Use(CORSCheckMiddleware(acceptedOrigins))
	chiRouter.Use(corsMiddleware(acceptedOrigins))

	contactLimiter := newIPRateLimiter(router.settings.ContactRatePerMinute)

	// Setup all route types
	setupPublicRoutes(chiRouter, handlers, contactLimiter)
	setupDashboardRoutes(chiRouter, handlers, authMiddleware)

	return chiRouter
}

func (s Server) Start(errChannel chan<- error) {
	log.Info().Msgf("Server started on: %s", s.Addr)
	errChannel <- s.ListenAndServe()
}

func (s Server) ShutdownGracefully(timeout time.Duration) {
	log.Info().Msg("Gracefully shutting down...")

	gracefullCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(gracefullCtx); err != nil {
		log.Error().Msgf("Error shutting down the server: %v", err)
	} else {
		log.Info().Msg("HttpServer gracefully shut down")
	}
}
