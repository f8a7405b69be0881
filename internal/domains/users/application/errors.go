package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/go-gin-order-api/internal/domains/users/domain"
	"github.com/Apurer/go-gin-order-api/internal/domains/users/ports"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid user input")
	// ErrAuthentication wraps authentication failures.
	ErrAuthentication = errors.New("authentication failed")
	// ErrAdminConflict signals the bootstrap address belongs to a regular account.
	ErrAdminConflict = errors.New("admin email belongs to a non-admin account")
)

var errBadCredentials = errors.New("invalid email or password")

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrEmptyName) ||
		errors.Is(err, domain.ErrEmptyPassword) ||
		errors.Is(err, domain.ErrWeakPassword) ||
		errors.Is(err, domain.ErrLongPassword) ||
		errors.Is(err, domain.ErrInvalidEmail) ||
		errors.Is(err, ports.ErrEmailTaken) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if errors.Is(err, ports.ErrInvalidToken) ||
		errors.Is(err, ports.ErrTokenExpired) ||
		errors.Is(err, ports.ErrSessionNotFound) ||
		errors.Is(err, errBadCredentials) {
		return fmt.Errorf("%w: %w", ErrAuthentication, err)
	}
	return err
}
