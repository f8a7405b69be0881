package memory

import (
	"context"
	"errors"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/Apurer/go-gin-order-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-order-api/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory order persistence adapter. A single mutex
// serializes every unit of work.
type Repository struct {
	mu         sync.RWMutex
	orders     map[int64]*domain.Order
	itemOwners map[int64]int64
	nextID     int64
	nextItemID int64
	now        func() time.Time
}

func NewRepository() *Repository {
	return &Repository{
		orders:     map[int64]*domain.Order{},
		itemOwners: map[int64]int64{},
		now:        time.Now,
	}
}

func (r *Repository) Create(_ context.Context, order *domain.Order) (*domain.Order, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	clone := order.Clone()
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if clone.ID == 0 {
		r.nextID++
		clone.ID = r.nextID
	} else if _, exists := r.orders[clone.ID]; exists {
		return nil, errors.New("order already exists")
	} else if clone.ID > r.nextID {
		r.nextID = clone.ID
	}
	now := r.now()
	clone.CreatedAt, clone.UpdatedAt = now, now
	r.assignItemIDs(clone)
	clone.RecomputeTotal()
	r.orders[clone.ID] = clone
	return clone.Clone(), nil
}

func (r *Repository) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return order.Clone(), nil
}

func (r *Repository) Update(_ context.Context, id int64, mutate ports.Mutation) (*domain.Order, error) {
	if mutate == nil {
		return nil, errors.New("mutation is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	working := current.Clone()
	if err := mutate(working); err != nil {
		return nil, err
	}
	working.ID = current.ID
	working.CreatedAt = current.CreatedAt
	working.UpdatedAt = r.now()
	if err := working.Validate(); err != nil {
		return nil, err
	}
	for _, item := range current.Items {
		if !slices.ContainsFunc(working.Items, func(i domain.Item) bool { return i.ID == item.ID }) {
			delete(r.itemOwners, item.ID)
		}
	}
	r.assignItemIDs(working)
	working.RecomputeTotal()
	r.orders[id] = working
	return working.Clone(), nil
}

func (r *Repository) FindItem(_ context.Context, itemID int64) (*domain.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	orderID, ok := r.itemOwners[itemID]
	if !ok {
		return nil, ports.ErrItemNotFound
	}
	for _, item := range r.orders[orderID].Items {
		if item.ID == itemID {
			found := item
			return &found, nil
		}
	}
	return nil, ports.ErrItemNotFound
}

func (r *Repository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return ports.ErrNotFound
	}
	for _, item := range order.Items {
		delete(r.itemOwners, item.ID)
	}
	delete(r.orders, id)
	return nil
}

func (r *Repository) List(_ context.Context, filter ports.ListFilter) ([]*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.Order, 0, len(r.orders))
	for _, order := range r.orders {
		if filter.OwnerID > 0 && order.OwnerID != filter.OwnerID {
			continue
		}
		if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, order.Status) {
			continue
		}
		list = append(list, order.Clone())
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

// assignItemIDs gives unsaved items an identifier. Callers hold the write lock.
func (r *Repository) assignItemIDs(order *domain.Order) {
	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID
		if item.ID == 0 {
			r.nextItemID++
			item.ID = r.nextItemID
		} else if item.ID > r.nextItemID {
			r.nextItemID = item.ID
		}
		r.itemOwners[item.ID] = order.ID
	}
}
