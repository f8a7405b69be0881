package application

import (
	"context"

	"github.com/Apurer/go-gin-order-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-order-api/internal/domains/orders/ports"
)

// ItemService manages the line items of pending orders.
type ItemService struct {
	repo   ports.Repository
	policy domain.Policy
}

// NewItemService wires the item management service.
func NewItemService(repo ports.Repository, opts ...Option) *ItemService {
	o := buildOptions(opts)
	return &ItemService{repo: repo, policy: o.policy}
}

// AddItem attaches a new item to the order and returns the recomputed total.
func (s *ItemService) AddItem(ctx context.Context, actor domain.Actor, orderID int64, input ports.ItemInput) (*ports.AddItemResult, error) {
	updated, err := s.repo.Update(ctx, orderID, func(order *domain.Order) error {
		if !s.policy.Authorize(actor, order, domain.OpAddItem).Allowed() {
			return forbidden(domain.OpAddItem, orderID)
		}
		item, err := domain.NewItem(input.Flavor, input.Size, input.Quantity, input.UnitPrice)
		if err != nil {
			return err
		}
		return order.AddItem(item)
	})
	if err != nil {
		return nil, mapError(err)
	}
	var itemID int64
	if n := len(updated.Items); n > 0 {
		itemID = updated.Items[n-1].ID
	}
	return &ports.AddItemResult{ItemID: itemID, Total: updated.Total, Order: updated}, nil
}

// RemoveItem deletes an item from its order. The item is resolved before
// its parent so a missing item is reported as not found.
func (s *ItemService) RemoveItem(ctx context.Context, actor domain.Actor, itemID int64) (*ports.RemoveItemResult, error) {
	item, err := s.repo.FindItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	var removed domain.Item
	updated, err := s.repo.Update(ctx, item.OrderID, func(order *domain.Order) error {
		if !s.policy.Authorize(actor, order, domain.OpRemoveItem).Allowed() {
			return forbidden(domain.OpRemoveItem, order.ID)
		}
		var err error
		removed, err = order.RemoveItem(itemID)
		return err
	})
	if err != nil {
		return nil, mapError(err)
	}
	return &ports.RemoveItemResult{Removed: removed, ItemCount: updated.ItemCount(), Order: updated}, nil
}

var _ ports.ItemService = (*ItemService)(nil)
