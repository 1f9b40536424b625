package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/stonemarket/storefront/internal/api/middleware"
	"github.com/stonemarket/storefront/internal/core/domain"
)

// SessionWriter re-points the client's cookie at a new session token.
type SessionWriter interface {
	Write(c echo.Context, token string) error
}

// ctxIdentity returns the identity resolved by the Session middleware and
// fails fast with 401 for anonymous sessions.
func ctxIdentity(c echo.Context) (*domain.Identity, error) {
	identity := middleware.Identity(c)
	if identity == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "login required")
	}
	return identity, nil
}

// listingParam parses :listing_id. A malformed id can never name a listing.
func listingParam(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("listing_id"))
	if err != nil {
		return uuid.Nil, domain.ErrMissingInventory
	}
	return id, nil
}
