package ports

import (
	"context"
	"errors"

	"github.com/Apurer/go-gin-order-api/internal/domains/users/domain"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already registered")
)

// Repository is the credential store. It reports existence only and never
// interprets business rules.
type Repository interface {
	// Insert stores a new user and assigns its ID. Duplicate emails yield ErrEmailTaken.
	Insert(ctx context.Context, user *domain.User) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}
