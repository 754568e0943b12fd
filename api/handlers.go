package api

import (
	"time"

	"github.com/rpupo63/portfolio-cms-backend/auth"
	"github.com/rpupo63/portfolio-cms-backend/config"
	"github.com/rpupo63/portfolio-cms-backend/database"
	"github.com/rpupo63/portfolio-cms-backend/storage"
	"github.com/rs/zerolog/log"
)

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(database database.Database, cfg *config.Config, images storage.ImageStore, tokens *auth.TokenManager, metrics *httpMetrics, startupTime time.Time) *routeHandlers {
	healthLogger := log.With().Str("handlerName", "healthHandler").Logger()

	return &routeHandlers{
		projectHandler: newProjectHandler(database.ProjectRepo(), images, cfg.MaxFileSize, metrics),
		authHandler:    newAuthHandler(database.AdminUserRepo(), tokens, metrics),
		healthHandler:  newHealthHandler(NewResponder(healthLogger), cfg.Environment, startupTime),
	}
}
