package ports

import (
	"context"

	"github.com/stonemarket/storefront/internal/core/domain"
)

// AuthService drives the Anonymous -> Authenticated -> Anonymous session lifecycle.
type AuthService interface {
	Signup(ctx context.Context, signup domain.Signup) (domain.Identity, error)
	Authenticate(ctx context.Context, creds domain.Credentials) (domain.Identity, error)
	// StartSession issues a new anonymous session token.
	StartSession(ctx context.Context) (string, error)
	// Resume loads a session and its identity (nil when anonymous). Unknown
	// or stale tokens return domain.ErrNotFound.
	Resume(ctx context.Context, token string) (domain.Session, *domain.Identity, error)
	CurrentIdentity(ctx context.Context, token string) *domain.Identity
	// Login authenticates and rotates token into a new authenticated session.
	Login(ctx context.Context, token string, creds domain.Credentials) (string, domain.Identity, error)
	Logout(ctx context.Context, token string) error
}
