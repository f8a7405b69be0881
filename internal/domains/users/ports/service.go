package ports

import (
	"context"
	"time"

	"github.com/Apurer/go-gin-order-api/internal/domains/users/domain"
)

// SignupInput carries the fields needed to register an account.
type SignupInput struct {
	Name     string
	Email    string
	Password string
}

// TokenPair is returned by login and refresh. RefreshToken is empty when the
// caller already holds one.
type TokenPair struct {
	AccessToken     string
	RefreshToken    string
	AccessExpiresAt time.Time
}

// Service exposes user bounded context use cases to adapters.
type Service interface {
	Signup(ctx context.Context, input SignupInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Authenticate(ctx context.Context, accessToken string) (*domain.User, error)
	EnsureAdmin(ctx context.Context, input SignupInput) (*domain.User, error)
}
