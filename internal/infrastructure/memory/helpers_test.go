package memory_test

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stonemarket/storefront/internal/core/domain"
)

// stubHasher produces salted-looking digests without the Argon2 cost.
type stubHasher struct {
	n       atomic.Int64
	hashErr error
}

func (h *stubHasher) Hash(plaintext string) (string, error) {
	if h.hashErr != nil {
		return "", h.hashErr
	}
	return fmt.Sprintf("stub$%d$%s", h.n.Add(1), plaintext), nil
}

func (h *stubHasher) Verify(plaintext, digest string) (bool, error) {
	parts := strings.SplitN(digest, "$", 3)
	if len(parts) != 3 || parts[0] != "stub" {
		return false, errors.Join(domain.ErrHashingFailed, errors.New("malformed"))
	}
	return parts[2] == plaintext, nil
}

func product(name, price string) domain.Product {
	return domain.Product{
		ListingID:   uuid.New(),
		Name:        name,
		Price:       decimal.RequireFromString(price),
		Description: name + " description",
		Image:       strings.ToLower(name) + ".jpg",
	}
}
