package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Pinger reports whether the marketplace backend is reachable.
type Pinger interface {
	Ping(ctx context.Context, path string) error
}

// HealthHandler provides health and readiness endpoints.
type HealthHandler struct {
	backend Pinger
	path    string
}

// NewHealthHandler creates a HealthHandler probing path on the backend.
func NewHealthHandler(p Pinger, path string) *HealthHandler {
	return &HealthHandler{backend: p, path: path}
}

// Healthz returns 200 if the process is running.
//
// @Summary Liveness check
// @Description Returns 200 if the process is running.
// @Tags health
// @Produce json
// @Success 200 {object} StatusResponse
// @Router /healthz [get]
func (*HealthHandler) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, StatusResponse{Status: "ok"})
}

// Readyz returns 200 if the backend answers, 503 otherwise.
//
// @Summary Readiness check
// @Description Returns 200 if the marketplace backend answers, 503 otherwise.
// @Tags health
// @Produce json
// @Success 200 {object} StatusResponse
// @Failure 503 {object} StatusResponse
// @Router /readyz [get]
func (h *HealthHandler) Readyz(c echo.Context) error {
	if err := h.backend.Ping(c.Request().Context(), h.path); err != nil {
		return c.JSON(http.StatusServiceUnavailable, StatusResponse{
			Status:  "unavailable",
			Backend: backendUnreachable,
		})
	}
	return c.JSON(http.StatusOK, StatusResponse{Status: "ready", Backend: backendReachable})
}

// RegisterHealthRoutes mounts the probes on e.
func RegisterHealthRoutes(e *echo.Echo, h *HealthHandler) {
	e.GET("/healthz", h.Healthz)
	e.GET("/readyz", h.Readyz)
}
