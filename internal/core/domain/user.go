package domain

import "github.com/google/uuid"

// Identity models a registered shopper. PasswordDigest is never serialised.
type Identity struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	Username       string    `json:"username"`
	PasswordDigest string    `json:"-"`
}

// Signup carries the plaintext form of a new registration.
type Signup struct {
	Email    string
	Username string
	Password string
}

// Credentials is what a shopper presents at login.
type Credentials struct {
	Email    string
	Password string
}
