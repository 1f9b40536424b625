package domain

import (
	"time"

	"github.com/google/uuid"
)

// Session binds an opaque token to zero or one identity.
//
// AuthHash holds the identity's password digest at login time. A session whose
// AuthHash no longer matches the identity is stale and must be discarded.
type Session struct {
	Token      string
	IdentityID uuid.UUID
	AuthHash   []byte
	CreatedAt  time.Time
}

// Authenticated reports whether the session is bound to an identity.
func (s Session) Authenticated() bool {
	return s.IdentityID != uuid.Nil
}
