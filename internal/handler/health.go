package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/deppfellow/survival-api/internal/middleware"
	"github.com/deppfellow/survival-api/internal/repository"
	"github.com/deppfellow/survival-api/internal/server"
	"github.com/labstack/echo/v4"
)

// HealthHandler exposes a "system" endpoint that external systems can use to
// verify the service is alive and the record store is reachable.
type HealthHandler struct {
	Handler
	repos *repository.Repositories
}

// NewHealthHandler constructs a HealthHandler with access to shared app dependencies.
func NewHealthHandler(s *server.Server, repos *repository.Repositories) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
		repos:   repos,
	}
}

// CheckHealth returns system health status and dependency checks.
//
// Response includes:
//   - overall status (healthy/unhealthy)
//   - timestamp (UTC)
//   - environment (from config)
//   - model version
//   - checks map (store)
//
// It returns 200 OK if all checks pass and 503 Service Unavailable otherwise.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()

	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	response := map[string]interface{}{
		"status":        "healthy",
		"timestamp":     time.Now().UTC(),
		"environment":   h.server.Config.Primary.Env,
		"model_version": h.server.Predictor.Version(),
		"checks":        make(map[string]interface{}),
	}

	checks := response["checks"].(map[string]interface{})
	isHealthy := true

	// ---------------- Store connectivity check -------------------------------
	// The memory store has nothing to ping and is reported healthy as is.
	if pinger, ok := h.repos.Predictions.(repository.Pinger); ok && h.server.Config.Observability.HealthChecks.Enabled {
		ctx, cancel := context.WithTimeout(c.Request().Context(), h.server.Config.Observability.HealthChecks.Timeout)
		defer cancel()

		storeStart := time.Now()

		if err := pinger.Ping(ctx); err != nil {
			checks["store"] = map[string]interface{}{
				"backend":       h.server.Config.Store.Backend,
				"status":        "unhealthy",
				"response_time": time.Since(storeStart).String(),
				"error":         err.Error(),
			}

			isHealthy = false

			logger.Error().
				Err(err).
				Str("backend", h.server.Config.Store.Backend).
				Dur("response_time", time.Since(storeStart)).
				Msg("store health check failed")

			h.recordHealthCheckError(map[string]interface{}{
				"check_type":       "store",
				"backend":          h.server.Config.Store.Backend,
				"operation":        "health_check",
				"error_type":       "store_unhealthy",
				"response_time_ms": time.Since(storeStart).Milliseconds(),
				"error_message":    err.Error(),
			})
		} else {
			checks["store"] = map[string]interface{}{
				"backend":       h.server.Config.Store.Backend,
				"status":        "healthy",
				"response_time": time.Since(storeStart).String(),
			}

			logger.Debug().
				Dur("response_time", time.Since(storeStart)).
				Msg("store health check passed")
		}
	} else {
		checks["store"] = map[string]interface{}{
			"backend": h.server.Config.Store.Backend,
			"status":  "healthy",
		}
	}

	// ---------------- Overall status + response ------------------------------
	if !isHealthy {
		response["status"] = "unhealthy"

		logger.Warn().
			Dur("total_duration", time.Since(start)).
			Msg("health check failed")

		h.recordHealthCheckError(map[string]interface{}{
			"check_type":        "overall",
			"operation":         "health_check",
			"error_type":        "overall_unhealthy",
			"total_duration_ms": time.Since(start).Milliseconds(),
		})

		return c.JSON(http.StatusServiceUnavailable, response)
	}

	logger.Debug().
		Dur("total_duration", time.Since(start)).
		Msg("health check passed")

	if err := c.JSON(http.StatusOK, response); err != nil {
		logger.Error().Err(err).Msg("failed to write JSON response")

		h.recordHealthCheckError(map[string]interface{}{
			"check_type":    "response",
			"operation":     "health_check",
			"error_type":    "json_response_error",
			"error_message": err.Error(),
		})

		return fmt.Errorf("failed to write JSON response: %w", err)
	}

	return nil
}

// recordHealthCheckError sends a HealthCheckError custom event when New Relic is enabled.
func (h *HealthHandler) recordHealthCheckError(attrs map[string]interface{}) {
	if app := h.server.LoggerService.GetApplication(); app != nil {
		app.RecordCustomEvent("HealthCheckError", attrs)
	}
}
