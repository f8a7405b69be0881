package ports

import (
	"context"
	"errors"

	"github.com/Apurer/go-gin-order-api/internal/domains/orders/domain"
)

var (
	ErrNotFound     = errors.New("order not found")
	ErrItemNotFound = errors.New("order item not found")
	ErrUserNotFound = errors.New("order owner not found")
)

// ListFilter narrows order listings. Zero values match everything.
type ListFilter struct {
	OwnerID  int64
	Statuses []domain.Status
}

// Mutation changes an order inside a repository unit of work. Returning an
// error aborts the unit of work without persisting anything.
type Mutation func(order *domain.Order) error

// Repository persists orders together with their items.
type Repository interface {
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	// Update loads the order under an exclusive lock, applies mutate and writes
	// status, total and the item diff atomically. New items get their IDs assigned.
	Update(ctx context.Context, id int64, mutate Mutation) (*domain.Order, error)
	FindItem(ctx context.Context, itemID int64) (*domain.Item, error)
	// Delete removes the order and cascades to its items.
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter ListFilter) ([]*domain.Order, error)
}

// UserDirectory answers whether a user referenced by an order exists.
type UserDirectory interface {
	Exists(ctx context.Context, userID int64) (bool, error)
}
