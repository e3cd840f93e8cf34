package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/amirhossein-jamali/topup-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/topup-ledger/internal/infrastructure/adapter/api/dto"
	"github.com/gin-gonic/gin"
)

// HealthCheck probes one dependency
type HealthCheck func(ctx context.Context) error

// HealthHandler reports readiness of the service's dependencies
type HealthHandler struct {
	checks       map[string]HealthCheck
	timeProvider core.TimeProvider
	timeout      time.Duration
	logger       core.Logger
}

// NewHealthHandler creates a health handler running every check with timeout
func NewHealthHandler(checks map[string]HealthCheck, timeProvider core.TimeProvider, timeout time.Duration, logger core.Logger) *HealthHandler {
	return &HealthHandler{
		checks:       checks,
		timeProvider: timeProvider,
		timeout:      timeout,
		logger:       logger,
	}
}

// Health handles GET /healthz
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := h.timeProvider.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	resp := dto.HealthResponse{
		Status: "ok",
		Checks: make(map[string]string, len(h.checks)),
	}
	status := http.StatusOK

	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			resp.Checks[name] = err.Error()
			resp.Status = "unavailable"
			status = http.StatusServiceUnavailable
			h.logger.Warn("Health check failed", map[string]any{
				"check": name,
				"error": err.Error(),
			})
			continue
		}
		resp.Checks[name] = "ok"
	}

	c.JSON(status, resp)
}
