// Package memory holds the process-local stores. Each store guards its table
// with one exclusive lock taken and released inside every method, and hands
// out copies only.
package memory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/stonemarket/storefront/internal/core/domain"
	"github.com/stonemarket/storefront/internal/core/ports"
)

// UserStore keeps identities keyed by normalised email.
type UserStore struct {
	hasher ports.PasswordHasher

	mu    sync.Mutex
	users map[string]domain.Identity
}

var _ ports.UserStore = (*UserStore)(nil)

func NewUserStore(hasher ports.PasswordHasher) *UserStore {
	return &UserStore{
		hasher: hasher,
		users:  make(map[string]domain.Identity),
	}
}

// Add hashes outside the lock; the duplicate check and insert happen under it,
// so a losing concurrent signup for the same email gets ErrDuplicateEmail.
func (s *UserStore) Add(_ context.Context, signup domain.Signup) (domain.Identity, error) {
	key := normalizeEmail(signup.Email)
	if key == "" || signup.Username == "" || signup.Password == "" {
		return domain.Identity{}, domain.ErrInvalidSignup
	}

	digest, err := s.hasher.Hash(signup.Password)
	if err != nil {
		if !errors.Is(err, domain.ErrHashingFailed) {
			err = fmt.Errorf("%w: %v", domain.ErrHashingFailed, err)
		}
		return domain.Identity{}, err
	}

	identity := domain.Identity{
		ID:             uuid.New(),
		Email:          key,
		Username:       signup.Username,
		PasswordDigest: digest,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[key]; exists {
		return domain.Identity{}, domain.ErrDuplicateEmail
	}
	s.users[key] = identity
	return identity, nil
}

func (s *UserStore) FindByEmail(_ context.Context, email string) (domain.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	identity, ok := s.users[normalizeEmail(email)]
	if !ok {
		return domain.Identity{}, domain.ErrNotFound
	}
	return identity, nil
}

func (s *UserStore) FindByID(_ context.Context, id uuid.UUID) (domain.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, identity := range s.users {
		if identity.ID == id {
			return identity, nil
		}
	}
	return domain.Identity{}, domain.ErrNotFound
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
