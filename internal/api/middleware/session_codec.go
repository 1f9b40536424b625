package middleware

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var errInvalidSessionCookie = errors.New("invalid session cookie")

type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// SessionCodec signs session tokens into cookie values and back. The cookie
// is an HS256 JWT whose sid claim is the server-side session token; it
// carries no identity.
type SessionCodec struct {
	secret []byte
	now    func() time.Time
}

func NewSessionCodec(secret []byte) *SessionCodec {
	return &SessionCodec{secret: secret, now: time.Now}
}

func (c *SessionCodec) Encode(token string) (string, error) {
	claims := sessionClaims{
		SessionID: token,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(c.now()),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign session cookie: %w", err)
	}
	return signed, nil
}

// Decode verifies value and returns the session token inside it.
func (c *SessionCodec) Decode(value string) (string, error) {
	var claims sessionClaims
	tkn, err := jwt.ParseWithClaims(value, &claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tkn.Valid || claims.SessionID == "" {
		return "", errInvalidSessionCookie
	}
	return claims.SessionID, nil
}
