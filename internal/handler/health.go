package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const healthCheckTimeout = 5 * time.Second

// HealthCheck is one named dependency checked by /health.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
	Errors []string          `json:"errors,omitempty"`
}

// Health runs every check and answers 503 when any of them fails.
func Health(checks []HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := healthResponse{Status: "healthy", Checks: make(map[string]string, len(checks))}
		for _, hc := range checks {
			ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
			err := hc.Check(ctx)
			cancel()
			if err != nil {
				slog.Warn("health check failed", "check", hc.Name, "error", err)
				resp.Checks[hc.Name] = "failed"
				resp.Errors = append(resp.Errors, hc.Name+": "+err.Error())
				continue
			}
			resp.Checks[hc.Name] = "ok"
		}

		if len(resp.Errors) > 0 {
			resp.Status = "unhealthy"
			c.JSON(http.StatusServiceUnavailable, resp)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}
