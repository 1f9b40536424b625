package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireIdentity rejects anonymous sessions with 401.
func RequireIdentity() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if Identity(c) == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "login required")
			}
			return next(c)
		}
	}
}
