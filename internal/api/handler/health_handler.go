package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stonemarket/storefront/internal/core/ports"
)

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	catalog ports.CatalogService
}

func NewHealthHandler(catalog ports.CatalogService) *HealthHandler {
	return &HealthHandler{catalog: catalog}
}

func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

type readinessResponse struct {
	Status       string            `json:"status"`
	Dependencies map[string]string `json:"dependencies"`
}

// Readiness reports 503 until the catalog has been seeded.
func (h *HealthHandler) Readiness(c echo.Context) error {
	if !h.catalog.Ready(c.Request().Context()) {
		return c.JSON(http.StatusServiceUnavailable, readinessResponse{
			Status:       "degraded",
			Dependencies: map[string]string{"catalog": "empty"},
		})
	}
	return c.JSON(http.StatusOK, readinessResponse{
		Status:       "ok",
		Dependencies: map[string]string{"catalog": "ok"},
	})
}
