package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rpupo63/portfolio-cms-backend/auth"
	"github.com/rpupo63/portfolio-cms-backend/config"
	"github.com/rpupo63/portfolio-cms-backend/database"
	"github.com/rpupo63/portfolio-cms-backend/storage"
	"github.com/rs/zerolog/log"
)

type Server struct {
	*http.Server
	startupTime time.Time
}

func NewServer(cfg *config.Config, database database.Database, images storage.ImageStore, tokens *auth.TokenManager) (Server, error) {
	if cfg == nil || images == nil || tokens == nil {
		return Server{}, errors.New("config, image store and token manager are required")
	}

	address := fmt.Sprintf("0.0.0.0:%s", cfg.Port) // Bind to 0.0.0.0 for external access

	startupTime := time.Now()

	router := newRouter(database, cfg, images, tokens, withStartupTime(startupTime))

	server := &http.Server{
		Addr:         address,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,  // Timeout for reading the entire request
		WriteTimeout: cfg.WriteTimeout, // Timeout for writing the response
		IdleTimeout:  cfg.IdleTimeout,  // Timeout for idle connections
	}

	return Server{server, startupTime}, nil
}

type router struct {
	startupTime time.Time
	registry    *prometheus.Registry
}

func withStartupTime(startupTime time.Time) func(*router) {
	return func(r *router) {
		r.startupTime = startupTime
	}
}

func withRegistry(registry *prometheus.Registry) func(*router) {
	return func(r *router) {
		r.registry = registry
	}
}

func newRouter(database database.Database, cfg *config.Config, images storage.ImageStore, tokens *auth.TokenManager, opts ...func(*router)) *chi.Mux {
	router := router{startupTime: time.Now()}
	for _, opt := range opts {
		opt(&router)
	}
	if router.registry == nil {
		router.registry = newRegistry()
	}

	metrics := newHTTPMetrics(router.registry)

	chiRouter := chi.NewRouter()
	chiRouter.Use(middleware.RequestID)
	chiRouter.Use(middleware.RealIP)
	chiRouter.Use(LogInternalServerErrors)
	chiRouter.Use(metrics.middleware)
	chiRouter.Use(RequestLoggingMiddleware)

	// Apply CORS middleware
	chiRouter.Use(CORSCheckMiddleware(cfg.AcceptedOrigins))
	chiRouter.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AcceptedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	handlers := initializeHandlers(database, cfg, images, tokens, metrics, router.startupTime)
	authMiddleware := newAuthMiddleware(tokens)
	limiter := newIPRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)

	setupAPIRoutes(chiRouter, handlers, authMiddleware, limiter)

	chiRouter.Get("/admin", serveAdminPage)
	chiRouter.Handle("/metrics", promhttp.HandlerFor(router.registry, promhttp.HandlerOpts{}))

	if disk, ok := images.(*storage.DiskStore); ok {
		chiRouter.Handle("/uploads/*", uploadsHandler(disk.Dir()))
	}

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
