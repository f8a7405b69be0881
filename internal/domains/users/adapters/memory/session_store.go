package memory

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/Apurer/go-gin-order-api/internal/domains/users/ports"
)

var (
	_ ports.SessionStore  = (*SessionStore)(nil)
	_ ports.SessionPurger = (*SessionStore)(nil)
)

// SessionStore is an in-memory SessionStore implementation.
type SessionStore struct {
	sessions sync.Map
	now      func() time.Time
}

func NewSessionStore() *SessionStore {
	return NewSessionStoreWithClock(time.Now)
}

// NewSessionStoreWithClock judges expiry against now instead of the wall clock.
func NewSessionStoreWithClock(now func() time.Time) *SessionStore {
	if now == nil {
		now = time.Now
	}
	return &SessionStore{now: now}
}

func (s *SessionStore) Save(_ context.Context, session ports.Session) error {
	if strings.TrimSpace(session.ID) == "" || session.UserID <= 0 {
		return errors.New("session id and user id are required")
	}
	s.sessions.Store(session.ID, session)
	return nil
}

// Get returns the session unless it is missing or already expired.
func (s *SessionStore) Get(_ context.Context, id string) (*ports.Session, error) {
	value, ok := s.sessions.Load(id)
	if !ok {
		return nil, ports.ErrSessionNotFound
	}
	session := value.(ports.Session)
	if !session.ExpiresAt.After(s.now()) {
		return nil, ports.ErrSessionNotFound
	}
	return &session, nil
}

func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.sessions.Delete(id)
	return nil
}

func (s *SessionStore) PurgeExpired(_ context.Context) (int64, error) {
	now := s.now()
	var purged int64
	s.sessions.Range(func(key, value any) bool {
		if !value.(ports.Session).ExpiresAt.After(now) {
			s.sessions.Delete(key)
			purged++
		}
		return true
	})
	return purged, nil
}
