package ports

import (
	"context"
	"errors"
	"time"
)

var ErrSessionNotFound = errors.New("session not found")

// Session records an issued refresh token so it can be checked and revoked.
type Session struct {
	ID        string
	UserID    int64
	ExpiresAt time.Time
}

// SessionStore abstracts refresh session persistence.
type SessionStore interface {
	Save(ctx context.Context, session Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}

// SessionPurger removes sessions past their expiry.
type SessionPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}
