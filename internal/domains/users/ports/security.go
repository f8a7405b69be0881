package ports

import (
	"errors"
	"time"
)

var (
	ErrInvalidToken = errors.New("token is invalid")
	ErrTokenExpired = errors.New("token has expired")
)

// TokenKind separates short-lived access tokens from refresh tokens.
type TokenKind string

const (
	TokenAccess  TokenKind = "access"
	TokenRefresh TokenKind = "refresh"
)

// Token is a signed, time-limited credential.
type Token struct {
	ID        string
	Value     string
	Kind      TokenKind
	UserID    int64
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenIssuer signs and verifies tokens.
type TokenIssuer interface {
	Issue(userID int64, kind TokenKind, ttl time.Duration) (Token, error)
	// Verify checks signature, expiry and kind. It returns ErrTokenExpired or ErrInvalidToken.
	Verify(value string, kind TokenKind) (Token, error)
}

// PasswordHasher produces and checks password digests.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}
