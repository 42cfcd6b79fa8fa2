package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthChecker is a dependency that can report its availability.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	checks  map[string]HealthChecker
	timeout time.Duration
	log     *zap.Logger
}

// NewHealthHandler creates a handler probing checks. Nil checkers are skipped.
func NewHealthHandler(checks map[string]HealthChecker, log *zap.Logger) *HealthHandler {
	return &HealthHandler{
		checks:  checks,
		timeout: 5 * time.Second,
		log:     log,
	}
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz. It answers 503 if any dependency fails to respond.
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	status := "ready"
	code := http.StatusOK
	deps := make(map[string]string, len(h.checks))

	for name, checker := range h.checks {
		if checker == nil {
			continue
		}
		if err := checker.Ping(ctx); err != nil {
			h.log.Warn("readiness check failed", zap.String("dependency", name), zap.Error(err))
			deps[name] = "unavailable"
			status = "not_ready"
			code = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}

	c.JSON(code, gin.H{
		"status": status,
		"checks": deps,
	})
}
