package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/stonemarket/storefront/internal/core/domain"
	"github.com/stonemarket/storefront/internal/core/ports"
)

const sessionTokenBytes = 32

// AuthService implements signup, credential checks and the session lifecycle.
type AuthService struct {
	users    ports.UserStore
	sessions ports.SessionStore
	hasher   ports.PasswordHasher
	audit    ports.AuditSink
	log      zerolog.Logger
	now      func() time.Time

	// dummyDigest is verified against when the email is unknown so that a
	// miss costs the same as a wrong password.
	dummyDigest string
}

var _ ports.AuthService = (*AuthService)(nil)

func NewAuthService(
	users ports.UserStore,
	sessions ports.SessionStore,
	hasher ports.PasswordHasher,
	audit ports.AuditSink,
	log zerolog.Logger,
) (*AuthService, error) {
	filler, err := newToken()
	if err != nil {
		return nil, err
	}
	dummy, err := hasher.Hash(filler)
	if err != nil {
		return nil, fmt.Errorf("auth service: %w", err)
	}
	return &AuthService{
		users:       users,
		sessions:    sessions,
		hasher:      hasher,
		audit:       audit,
		log:         log,
		now:         time.Now,
		dummyDigest: dummy,
	}, nil
}

func (s *AuthService) Signup(ctx context.Context, signup domain.Signup) (domain.Identity, error) {
	if strings.TrimSpace(signup.Email) == "" || signup.Username == "" || signup.Password == "" {
		return domain.Identity{}, domain.ErrInvalidSignup
	}

	identity, err := s.users.Add(ctx, signup)
	if err != nil {
		if errors.Is(err, domain.ErrHashingFailed) {
			s.log.Error().Err(err).Msg("signup: password hashing failed")
		}
		return domain.Identity{}, err
	}

	s.log.Info().Str("identity_id", identity.ID.String()).Str("username", identity.Username).Msg("identity created")
	s.emit(domain.AuditSignup, identity.ID, identity.Email, "ok")
	return identity, nil
}

// Authenticate returns domain.ErrNotFound for an unknown email and
// domain.ErrUnauthorized for a wrong password. Callers must render both the same.
func (s *AuthService) Authenticate(ctx context.Context, creds domain.Credentials) (domain.Identity, error) {
	identity, err := s.users.FindByEmail(ctx, creds.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			_, _ = s.hasher.Verify(creds.Password, s.dummyDigest)
		}
		return domain.Identity{}, err
	}

	ok, err := s.hasher.Verify(creds.Password, identity.PasswordDigest)
	if err != nil {
		s.log.Error().Err(err).Str("identity_id", identity.ID.String()).Msg("stored digest could not be verified")
		return domain.Identity{}, err
	}
	if !ok {
		return domain.Identity{}, domain.ErrUnauthorized
	}
	return identity, nil
}

func (s *AuthService) StartSession(ctx context.Context) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", err
	}
	if err := s.sessions.Create(ctx, domain.Session{Token: token, CreatedAt: s.now()}); err != nil {
		return "", fmt.Errorf("start session: %w", err)
	}
	return token, nil
}

// Resume drops sessions whose identity vanished or whose password digest
// changed since login, and reports them as domain.ErrNotFound.
func (s *AuthService) Resume(ctx context.Context, token string) (domain.Session, *domain.Identity, error) {
	if token == "" {
		return domain.Session{}, nil, domain.ErrNotFound
	}
	session, err := s.sessions.Get(ctx, token)
	if err != nil {
		return domain.Session{}, nil, err
	}
	if !session.Authenticated() {
		return session, nil, nil
	}

	identity, err := s.users.FindByID(ctx, session.IdentityID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			_ = s.sessions.Delete(ctx, token)
		}
		return domain.Session{}, nil, err
	}
	if subtle.ConstantTimeCompare(session.AuthHash, []byte(identity.PasswordDigest)) != 1 {
		s.log.Info().Str("identity_id", identity.ID.String()).Msg("stale session discarded")
		_ = s.sessions.Delete(ctx, token)
		return domain.Session{}, nil, domain.ErrNotFound
	}
	return session, &identity, nil
}

func (s *AuthService) CurrentIdentity(ctx context.Context, token string) *domain.Identity {
	_, identity, err := s.Resume(ctx, token)
	if err != nil {
		return nil
	}
	return identity
}

// Login replaces token with a fresh authenticated session so a token seen
// before login cannot ride the new identity.
func (s *AuthService) Login(ctx context.Context, token string, creds domain.Credentials) (string, domain.Identity, error) {
	identity, err := s.Authenticate(ctx, creds)
	if err != nil {
		if domain.IsCredentialError(err) {
			s.log.Info().Msg("login rejected")
			s.emit(domain.AuditLoginFailed, uuid.Nil, creds.Email, "invalid_credentials")
		}
		return "", domain.Identity{}, err
	}

	next, err := newToken()
	if err != nil {
		return "", domain.Identity{}, err
	}
	if token != "" {
		if err := s.sessions.Delete(ctx, token); err != nil {
			return "", domain.Identity{}, fmt.Errorf("login: drop old session: %w", err)
		}
	}
	err = s.sessions.Create(ctx, domain.Session{
		Token:      next,
		IdentityID: identity.ID,
		AuthHash:   []byte(identity.PasswordDigest),
		CreatedAt:  s.now(),
	})
	if err != nil {
		return "", domain.Identity{}, fmt.Errorf("login: %w", err)
	}

	s.log.Info().Str("identity_id", identity.ID.String()).Msg("identity logged in")
	s.emit(domain.AuditLogin, identity.ID, identity.Email, "ok")
	return next, identity, nil
}

// Logout deletes the session. Replaying token afterwards resolves to nothing.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	session, err := s.sessions.Get(ctx, token)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	if err := s.sessions.Delete(ctx, token); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	if session.Authenticated() {
		s.log.Info().Str("identity_id", session.IdentityID.String()).Msg("identity logged out")
		s.emit(domain.AuditLogout, session.IdentityID, "", "ok")
	}
	return nil
}

// PruneAnonymous drops anonymous sessions older than maxAge. A client still
// holding such a cookie simply gets a fresh anonymous session.
func (s *AuthService) PruneAnonymous(ctx context.Context, maxAge time.Duration) int {
	removed := s.sessions.DeleteAnonymousBefore(ctx, s.now().Add(-maxAge))
	if removed > 0 {
		s.log.Debug().Int("removed", removed).Msg("anonymous sessions pruned")
	}
	return removed
}

func (s *AuthService) emit(kind domain.AuditKind, id uuid.UUID, email, outcome string) {
	if s.audit == nil {
		return
	}
	s.audit.Emit(domain.AuditEvent{Kind: kind, IdentityID: id, Email: email, Outcome: outcome, At: s.now()})
}

func newToken() (string, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
