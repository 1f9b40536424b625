package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stonemarket/storefront/internal/core/domain"
	"github.com/stonemarket/storefront/internal/core/ports"
)

type CatalogHandler struct {
	catalog ports.CatalogService
}

func NewCatalogHandler(catalog ports.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

type listingsResponse struct {
	Items []domain.Product `json:"items"`
}

func (h *CatalogHandler) List(c echo.Context) error {
	return c.JSON(http.StatusOK, listingsResponse{Items: h.catalog.ListProducts(c.Request().Context())})
}
