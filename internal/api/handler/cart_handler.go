package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/stonemarket/storefront/internal/api/metrics"
	"github.com/stonemarket/storefront/internal/core/domain"
	"github.com/stonemarket/storefront/internal/core/ports"
)

type CartHandler struct {
	carts ports.CartService
}

func NewCartHandler(carts ports.CartService) *CartHandler {
	return &CartHandler{carts: carts}
}

type addToCartRequest struct {
	// Quantity defaults to 1 when omitted. The max mirrors domain.MaxLineQuantity.
	Quantity *int `json:"quantity" validate:"omitempty,min=1,max=999"`
}

type cartResponse struct {
	Items    []domain.CartItem `json:"items"`
	Units    int               `json:"units"`
	Subtotal decimal.Decimal   `json:"subtotal"`
}

func toCartResponse(cart domain.Cart) cartResponse {
	items := cart.Items
	if items == nil {
		items = []domain.CartItem{}
	}
	return cartResponse{Items: items, Units: cart.Units(), Subtotal: cart.Subtotal()}
}

func (h *CartHandler) View(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCartResponse(h.carts.ViewCart(c.Request().Context(), identity.ID)))
}

func (h *CartHandler) Add(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	listingID, err := listingParam(c)
	if err != nil {
		metrics.CartOperationsTotal.WithLabelValues("add", metrics.ResultRejected).Inc()
		return err
	}
	var req addToCartRequest
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
		}
		if err := c.Validate(&req); err != nil {
			metrics.CartOperationsTotal.WithLabelValues("add", metrics.ResultRejected).Inc()
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		}
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	cart, err := h.carts.AddToCart(c.Request().Context(), identity.ID, listingID, quantity)
	if err != nil {
		metrics.CartOperationsTotal.WithLabelValues("add", cartResult(err)).Inc()
		return err
	}
	metrics.CartOperationsTotal.WithLabelValues("add", metrics.ResultOK).Inc()
	return c.JSON(http.StatusOK, toCartResponse(cart))
}

func (h *CartHandler) Remove(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	listingID, err := listingParam(c)
	if err != nil {
		metrics.CartOperationsTotal.WithLabelValues("remove", metrics.ResultRejected).Inc()
		return err
	}
	cart := h.carts.RemoveFromCart(c.Request().Context(), identity.ID, listingID)
	metrics.CartOperationsTotal.WithLabelValues("remove", metrics.ResultOK).Inc()
	return c.JSON(http.StatusOK, toCartResponse(cart))
}

func cartResult(err error) string {
	if errors.Is(err, domain.ErrMissingInventory) || errors.Is(err, domain.ErrInvalidQuantity) {
		return metrics.ResultRejected
	}
	return metrics.ResultError
}
