package ports

import (
	"context"
	"time"

	"github.com/stonemarket/storefront/internal/core/domain"
)

// SessionStore keeps live sessions keyed by token.
type SessionStore interface {
	Create(ctx context.Context, session domain.Session) error
	// Get returns domain.ErrNotFound for unknown or deleted tokens.
	Get(ctx context.Context, token string) (domain.Session, error)
	// Delete is idempotent.
	Delete(ctx context.Context, token string) error
	Count(ctx context.Context) int
	// DeleteAnonymousBefore drops anonymous sessions created before cutoff
	// and returns how many went.
	DeleteAnonymousBefore(ctx context.Context, cutoff time.Time) int
}
