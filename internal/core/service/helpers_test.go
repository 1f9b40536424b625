package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stonemarket/storefront/internal/core/domain"
)

type stubHasher struct {
	mu    sync.Mutex
	n     int
	calls int
}

func (h *stubHasher) Hash(plaintext string) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.n++
	return fmt.Sprintf("stub$%d$%s", h.n, plaintext), nil
}

func (h *stubHasher) Verify(plaintext, digest string) (bool, error) {
	h.mu.Lock()
	h.calls++
	h.mu.Unlock()
	parts := strings.SplitN(digest, "$", 3)
	if len(parts) != 3 || parts[0] != "stub" {
		return false, fmt.Errorf("%w: malformed digest", domain.ErrHashingFailed)
	}
	return parts[2] == plaintext, nil
}

func (h *stubHasher) verifyCalls() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.calls
}

type stubUserStore struct {
	hasher *stubHasher
	users  map[string]domain.Identity
}

func newStubUserStore(hasher *stubHasher) *stubUserStore {
	return &stubUserStore{hasher: hasher, users: make(map[string]domain.Identity)}
}

func (s *stubUserStore) Add(_ context.Context, signup domain.Signup) (domain.Identity, error) {
	if _, ok := s.users[signup.Email]; ok {
		return domain.Identity{}, domain.ErrDuplicateEmail
	}
	digest, err := s.hasher.Hash(signup.Password)
	if err != nil {
		return domain.Identity{}, err
	}
	identity := domain.Identity{ID: uuid.New(), Email: signup.Email, Username: signup.Username, PasswordDigest: digest}
	s.users[signup.Email] = identity
	return identity, nil
}

func (s *stubUserStore) FindByEmail(_ context.Context, email string) (domain.Identity, error) {
	identity, ok := s.users[email]
	if !ok {
		return domain.Identity{}, domain.ErrNotFound
	}
	return identity, nil
}

func (s *stubUserStore) FindByID(_ context.Context, id uuid.UUID) (domain.Identity, error) {
	for _, identity := range s.users {
		if identity.ID == id {
			return identity, nil
		}
	}
	return domain.Identity{}, domain.ErrNotFound
}

// changePassword rewrites the stored digest, as a password reset would.
func (s *stubUserStore) changePassword(email, password string) {
	identity := s.users[email]
	identity.PasswordDigest, _ = s.hasher.Hash(password)
	s.users[email] = identity
}

type stubSessionStore struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
}

func newStubSessionStore() *stubSessionStore {
	return &stubSessionStore{sessions: make(map[string]domain.Session)}
}

func (s *stubSessionStore) Create(_ context.Context, session domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[session.Token]; ok {
		return errors.New("token collision")
	}
	s.sessions[session.Token] = session
	return nil
}

func (s *stubSessionStore) Get(_ context.Context, token string) (domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[token]
	if !ok {
		return domain.Session{}, domain.ErrNotFound
	}
	return session, nil
}

func (s *stubSessionStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

func (s *stubSessionStore) Count(_ context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *stubSessionStore) DeleteAnonymousBefore(_ context.Context, cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for token, session := range s.sessions {
		if !session.Authenticated() && session.CreatedAt.Before(cutoff) {
			delete(s.sessions, token)
			removed++
		}
	}
	return removed
}

type recordingSink struct {
	mu     sync.Mutex
	events []domain.AuditEvent
}

func (r *recordingSink) Emit(event domain.AuditEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingSink) kinds() []domain.AuditKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.AuditKind, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Kind)
	}
	return out
}
