package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditKind names an auditable storefront action.
type AuditKind string

const (
	AuditSignup      AuditKind = "signup"
	AuditLogin       AuditKind = "login"
	AuditLoginFailed AuditKind = "login_failed"
	AuditLogout      AuditKind = "logout"
	AuditCheckout    AuditKind = "checkout"
)

// AuditEvent records who did what. IdentityID is uuid.Nil for failed logins.
type AuditEvent struct {
	Kind       AuditKind
	IdentityID uuid.UUID
	Email      string
	Outcome    string
	At         time.Time
}
