package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stonemarket/storefront/internal/api/metrics"
	"github.com/stonemarket/storefront/internal/core/domain"
	"github.com/stonemarket/storefront/internal/core/ports"
)

type CheckoutHandler struct {
	carts ports.CartService
}

func NewCheckoutHandler(carts ports.CartService) *CheckoutHandler {
	return &CheckoutHandler{carts: carts}
}

// Summary shows what checking out would cost right now.
func (h *CheckoutHandler) Summary(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	summary := h.carts.Summary(c.Request().Context(), identity.ID)
	if summary.Items == nil {
		summary.Items = []domain.CartItem{}
	}
	return c.JSON(http.StatusOK, summary)
}

func (h *CheckoutHandler) Place(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	order, err := h.carts.Checkout(c.Request().Context(), identity.ID)
	if err != nil {
		metrics.CheckoutsTotal.WithLabelValues(checkoutResult(err)).Inc()
		return err
	}
	metrics.CheckoutsTotal.WithLabelValues(metrics.ResultOK).Inc()
	return c.JSON(http.StatusCreated, order)
}

func checkoutResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrEmptyCart):
		return "empty"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrMissingInventory):
		return "unavailable"
	default:
		return metrics.ResultError
	}
}
