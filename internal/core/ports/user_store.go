package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/stonemarket/storefront/internal/core/domain"
)

// PasswordHasher derives and checks password digests.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	// Verify reports whether plaintext matches digest. A malformed digest is an
	// error wrapping domain.ErrHashingFailed, never a match.
	Verify(plaintext, digest string) (bool, error)
}

// UserStore owns registered identities keyed by email.
type UserStore interface {
	// Add hashes the password, assigns an id and inserts the identity.
	// Returns domain.ErrDuplicateEmail when the email is taken.
	Add(ctx context.Context, signup domain.Signup) (domain.Identity, error)
	FindByEmail(ctx context.Context, email string) (domain.Identity, error)
	FindByID(ctx context.Context, id uuid.UUID) (domain.Identity, error)
}
