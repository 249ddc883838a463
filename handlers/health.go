package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"storefront-api/models"
	"storefront-api/utils"
)

// PingFunc reports whether a backing service is reachable.
type PingFunc func(ctx context.Context) error

type HealthHandler struct {
	checks map[string]PingFunc
	logger *zap.Logger
}

func NewHealthHandler(checks map[string]PingFunc, logger *zap.Logger) *HealthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthHandler{checks: checks, logger: logger}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	resp := models.HealthResponse{Status: "ok", Services: make(map[string]string, len(h.checks))}
	for name, ping := range h.checks {
		if err := ping(ctx); err != nil {
			h.logger.Warn("health check failed", zap.String("service", name), zap.Error(err))
			resp.Services[name] = "down"
			resp.Status = "degraded"
			continue
		}
		resp.Services[name] = "up"
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	utils.SendJSON(w, status, resp)
}

