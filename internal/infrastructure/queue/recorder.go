package queue

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/stonemarket/storefront/internal/core/domain"
)

// LogRecorder writes audit events as structured log lines.
type LogRecorder struct {
	log zerolog.Logger
}

func NewLogRecorder(log zerolog.Logger) *LogRecorder {
	return &LogRecorder{log: log.With().Str("component", "audit").Logger()}
}

func (r *LogRecorder) Record(_ context.Context, event domain.AuditEvent) error {
	entry := r.log.Info().
		Str("kind", string(event.Kind)).
		Str("outcome", event.Outcome).
		Time("at", event.At.UTC().Truncate(time.Millisecond))
	if event.IdentityID != uuid.Nil {
		entry = entry.Str("identity_id", event.IdentityID.String())
	}
	if event.Email != "" {
		entry = entry.Str("email", event.Email)
	}
	entry.Msg("audit")
	return nil
}
