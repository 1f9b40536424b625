package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/stonemarket/storefront/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that maps domain errors
// to status codes and renders {"error": "<message>"}. Unexpected errors are
// logged and reported as a generic 500.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	switch {
	// Unknown email and wrong password must be indistinguishable.
	case domain.IsCredentialError(err):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, domain.ErrMissingInventory):
		return http.StatusNotFound, "item unavailable"
	case errors.Is(err, domain.ErrInsufficientStock):
		return http.StatusConflict, "insufficient stock"
	case errors.Is(err, domain.ErrEmptyCart):
		return http.StatusUnprocessableEntity, "cart is empty"
	case errors.Is(err, domain.ErrInvalidQuantity):
		return http.StatusUnprocessableEntity, domain.ErrInvalidQuantity.Error()
	case errors.Is(err, domain.ErrInvalidSignup):
		return http.StatusUnprocessableEntity, "email, username and password are required"
	case errors.Is(err, domain.ErrDuplicateEmail):
		return http.StatusConflict, "email already registered"
	}

	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
