package api

import (
	"net/http"
	"time"
)

type healthHandler struct {
	responder   Responder
	environment string
	startupTime time.Time
	now         func() time.Time
}

func newHealthHandler(responder Responder, environment string, startupTime time.Time) healthHandler {
	return healthHandler{
		responder:   responder,
		environment: environment,
		startupTime: startupTime,
		now:         time.Now,
	}
}

// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /api/health [get]
func (h healthHandler) health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := h.now()
		h.responder.WriteJSON(w, HealthResponse{
			Status:      "OK",
			Timestamp:   now.UTC().Format(time.RFC3339),
			Environment: h.environment,
			Uptime:      now.Sub(h.startupTime).Round(time.Second).String(),
		})
	}
}
