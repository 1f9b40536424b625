package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/stonemarket/storefront/internal/core/domain"
	"github.com/stonemarket/storefront/internal/core/ports"
)

const (
	keySessionToken = "session_token"
	keyIdentity     = "identity"
)

// SessionCookies reads and writes the signed session cookie.
type SessionCookies struct {
	Name   string
	Secure bool
	Codec  *SessionCodec
}

// Read returns the session token carried by the request, if the cookie is
// present and its signature checks out.
func (s *SessionCookies) Read(c echo.Context) (string, bool) {
	cookie, err := c.Cookie(s.Name)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	token, err := s.Codec.Decode(cookie.Value)
	if err != nil {
		return "", false
	}
	return token, true
}

// Write points the client at token and records it on the context.
func (s *SessionCookies) Write(c echo.Context, token string) error {
	value, err := s.Codec.Encode(token)
	if err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:     s.Name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	c.Set(keySessionToken, token)
	return nil
}

// Session resolves the request's session before the handler runs. Missing,
// forged, unknown or stale cookies are replaced by a fresh anonymous session.
func Session(auth ports.AuthService, cookies *SessionCookies, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			if token, ok := cookies.Read(c); ok {
				_, identity, err := auth.Resume(ctx, token)
				if err == nil {
					SetSession(c, token, identity)
					return next(c)
				}
				log.Debug().Err(err).Msg("session cookie not resumable")
			}

			token, err := auth.StartSession(ctx)
			if err != nil {
				return err
			}
			if err := cookies.Write(c, token); err != nil {
				return err
			}
			SetSession(c, token, nil)
			return next(c)
		}
	}
}

// SetSession records the resolved session on the context.
func SetSession(c echo.Context, token string, identity *domain.Identity) {
	c.Set(keySessionToken, token)
	c.Set(keyIdentity, identity)
}

// SessionToken returns the token resolved by Session, or "".
func SessionToken(c echo.Context) string {
	token, _ := c.Get(keySessionToken).(string)
	return token
}

// Identity returns the identity bound to the current session, or nil.
func Identity(c echo.Context) *domain.Identity {
	identity, _ := c.Get(keyIdentity).(*domain.Identity)
	return identity
}
