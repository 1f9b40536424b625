package domain

import "errors"

var (
	// ErrNotFound is returned when an identity, session or product lookup misses.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is returned when the email exists but the password does not match.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrDuplicateEmail is returned when signing up with an email that is already registered.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrInvalidSignup is returned when a signup is missing email, username or password.
	ErrInvalidSignup = errors.New("invalid signup")
	// ErrHashingFailed wraps failures of the password hashing primitive or a malformed digest.
	ErrHashingFailed = errors.New("password hashing failed")

	ErrMissingInventory  = errors.New("item unavailable")
	ErrInvalidQuantity   = errors.New("quantity must be at least 1")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidCounters   = errors.New("inventory counters must be non-negative")
	ErrEmptyCart         = errors.New("cart is empty")
)

// IsCredentialError reports whether err is one of the two login failures that
// must look identical to the caller.
func IsCredentialError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrUnauthorized)
}
