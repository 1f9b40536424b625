package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stonemarket/storefront/internal/api/metrics"
	"github.com/stonemarket/storefront/internal/api/middleware"
	"github.com/stonemarket/storefront/internal/core/domain"
	"github.com/stonemarket/storefront/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	sessions    SessionWriter
}

func NewAuthHandler(authService ports.AuthService, sessions SessionWriter) *AuthHandler {
	return &AuthHandler{authService: authService, sessions: sessions}
}

type signupRequest struct {
	Email    string `json:"email"    validate:"required,email,max=254"`
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=1024"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type identityResponse struct {
	Authenticated bool             `json:"authenticated"`
	Identity      *domain.Identity `json:"identity,omitempty"`
}

// Signup registers an identity and logs it in on the current session.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		metrics.SignupsTotal.WithLabelValues("invalid").Inc()
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	ctx := c.Request().Context()
	_, err := h.authService.Signup(ctx, domain.Signup{Email: req.Email, Username: req.Username, Password: req.Password})
	if err != nil {
		metrics.SignupsTotal.WithLabelValues(signupResult(err)).Inc()
		return err
	}
	metrics.SignupsTotal.WithLabelValues(metrics.ResultOK).Inc()

	identity, err := h.login(c, domain.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, identityResponse{Authenticated: true, Identity: &identity})
}

// Login rotates the session and binds it to the authenticated identity.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	identity, err := h.login(c, domain.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, identityResponse{Authenticated: true, Identity: &identity})
}

// Logout ends the session and hands the client a fresh anonymous one.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	if err := h.authService.Logout(ctx, middleware.SessionToken(c)); err != nil {
		return err
	}
	token, err := h.authService.StartSession(ctx)
	if err != nil {
		return err
	}
	if err := h.sessions.Write(c, token); err != nil {
		return err
	}
	middleware.SetSession(c, token, nil)
	return c.NoContent(http.StatusNoContent)
}

// CheckIn reports who the current session belongs to.
func (h *AuthHandler) CheckIn(c echo.Context) error {
	identity := middleware.Identity(c)
	return c.JSON(http.StatusOK, identityResponse{Authenticated: identity != nil, Identity: identity})
}

func (h *AuthHandler) login(c echo.Context, creds domain.Credentials) (domain.Identity, error) {
	token, identity, err := h.authService.Login(c.Request().Context(), middleware.SessionToken(c), creds)
	if err != nil {
		if domain.IsCredentialError(err) {
			metrics.AuthAttemptsTotal.WithLabelValues(metrics.ResultRejected).Inc()
		} else {
			metrics.AuthAttemptsTotal.WithLabelValues(metrics.ResultError).Inc()
		}
		return domain.Identity{}, err
	}
	metrics.AuthAttemptsTotal.WithLabelValues(metrics.ResultOK).Inc()

	if err := h.sessions.Write(c, token); err != nil {
		return domain.Identity{}, err
	}
	middleware.SetSession(c, token, &identity)
	return identity, nil
}

func signupResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrDuplicateEmail):
		return "duplicate"
	case errors.Is(err, domain.ErrInvalidSignup):
		return "invalid"
	default:
		return metrics.ResultError
	}
}
