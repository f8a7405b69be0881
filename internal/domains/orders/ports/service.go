package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Apurer/go-gin-order-api/internal/domains/orders/domain"
)

// Service exposes the order lifecycle use cases to adapters.
type Service interface {
	Create(ctx context.Context, ownerID int64) (*domain.Order, error)
	Cancel(ctx context.Context, actor domain.Actor, orderID int64) (*domain.Order, error)
	Finalize(ctx context.Context, actor domain.Actor, orderID int64) (*domain.Order, error)
	View(ctx context.Context, actor domain.Actor, orderID int64) (*domain.Order, error)
	ListAll(ctx context.Context, actor domain.Actor, statuses []domain.Status) ([]*domain.Order, error)
	ListMine(ctx context.Context, actor domain.Actor, statuses []domain.Status) ([]*domain.Order, error)
}

// ItemInput describes a line item to add.
type ItemInput struct {
	Flavor    string
	Size      string
	Quantity  int32
	UnitPrice decimal.Decimal
}

// AddItemResult reports the created item and the recomputed order.
type AddItemResult struct {
	ItemID int64
	Total  decimal.Decimal
	Order  *domain.Order
}

// RemoveItemResult reports the removed item and what is left on the order.
type RemoveItemResult struct {
	Removed   domain.Item
	ItemCount int
	Order     *domain.Order
}

// ItemService exposes item management use cases to adapters.
type ItemService interface {
	AddItem(ctx context.Context, actor domain.Actor, orderID int64, input ItemInput) (*AddItemResult, error)
	RemoveItem(ctx context.Context, actor domain.Actor, itemID int64) (*RemoveItemResult, error)
}
