package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrEmptyName     = errors.New("name is required")
	ErrInvalidEmail  = errors.New("email must contain '@'")
	ErrEmptyPassword = errors.New("password is required")
	ErrWeakPassword  = errors.New("password must be at least 4 characters")
	ErrLongPassword  = errors.New("password must be at most 72 bytes")
)

const (
	// MinPasswordLength is the shortest accepted plaintext password.
	MinPasswordLength = 4
	// MaxPasswordBytes is the bcrypt input limit.
	MaxPasswordBytes = 72
)

// User is an account able to own orders. PasswordHash always holds a digest,
// never the plaintext.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Active       bool
	Admin        bool
	CreatedAt    time.Time
}

// NewUser builds an active, non-admin user ensuring required invariants.
func NewUser(name, email string) (*User, error) {
	user := &User{Active: true}
	if err := user.SetName(name); err != nil {
		return nil, err
	}
	if err := user.SetEmail(email); err != nil {
		return nil, err
	}
	return user, nil
}

// SetName trims and validates the display name.
func (u *User) SetName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	u.Name = name
	return nil
}

// SetEmail normalizes and validates the login address.
func (u *User) SetEmail(email string) error {
	normalized, err := NormalizeEmail(email)
	if err != nil {
		return err
	}
	u.Email = normalized
	return nil
}

// NormalizeEmail trims and lower-cases an address so lookups are case-insensitive.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return "", ErrInvalidEmail
	}
	return email, nil
}

// ValidatePassword checks basic plaintext strength before hashing.
func ValidatePassword(password string) error {
	if strings.TrimSpace(password) == "" {
		return ErrEmptyPassword
	}
	if len(password) < MinPasswordLength {
		return ErrWeakPassword
	}
	if len(password) > MaxPasswordBytes {
		return ErrLongPassword
	}
	return nil
}

// CanAuthenticate reports whether the account may log in or use its tokens.
func (u *User) CanAuthenticate() bool {
	return u != nil && u.Active
}

// Validate re-applies core invariants for persistence.
func (u *User) Validate() error {
	if err := u.SetName(u.Name); err != nil {
		return err
	}
	if err := u.SetEmail(u.Email); err != nil {
		return err
	}
	if strings.TrimSpace(u.PasswordHash) == "" {
		return ErrEmptyPassword
	}
	return nil
}
