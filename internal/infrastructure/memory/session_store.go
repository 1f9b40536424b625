package memory

import (
	"context"
	"sync"
	"time"

	"github.com/stonemarket/storefront/internal/core/domain"
	"github.com/stonemarket/storefront/internal/core/ports"
)

// SessionStore is the process-local session table. Authenticated sessions live
// until deleted or the process exits; anonymous ones are also swept by age.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
}

var _ ports.SessionStore = (*SessionStore)(nil)

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]domain.Session)}
}

func (s *SessionStore) Create(_ context.Context, session domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session.AuthHash = append([]byte(nil), session.AuthHash...)
	s.sessions[session.Token] = session
	return nil
}

func (s *SessionStore) Get(_ context.Context, token string) (domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[token]
	if !ok {
		return domain.Session{}, domain.ErrNotFound
	}
	session.AuthHash = append([]byte(nil), session.AuthHash...)
	return session, nil
}

func (s *SessionStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, token)
	return nil
}

func (s *SessionStore) Count(_ context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.sessions)
}

func (s *SessionStore) DeleteAnonymousBefore(_ context.Context, cutoff time.Time) int {
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
