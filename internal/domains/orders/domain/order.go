package domain

import (
	"errors"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// Status enumerates order progression.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCanceled  Status = "CANCELED"
	StatusFinalized Status = "FINALIZED"
)

var (
	ErrInvalidOwner   = errors.New("owner id must be greater than zero")
	ErrInvalidStatus  = errors.New("order status is invalid")
	ErrOrderClosed    = errors.New("order already closed")
	ErrItemNotInOrder = errors.New("item does not belong to order")
	ErrTotalTooLarge  = errors.New("order total exceeds the maximum")
)

// MaxTotal is the largest order total that can be stored.
var MaxTotal = decimal.RequireFromString("9999999999.99")

// Order models the pedido aggregate. Items are kept in ascending ID order,
// unsaved items (ID zero) last.
type Order struct {
	ID        int64
	OwnerID   int64
	Status    Status
	Total     decimal.Decimal
	Items     []Item
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewOrder constructs a pending order with no items.
func NewOrder(ownerID int64) (*Order, error) {
	if ownerID <= 0 {
		return nil, ErrInvalidOwner
	}
	return &Order{
		OwnerID: ownerID,
		Status:  StatusPending,
		Total:   decimal.Zero,
	}, nil
}

// Validate enforces invariants on the aggregate.
func (o *Order) Validate() error {
	if o.OwnerID <= 0 {
		return ErrInvalidOwner
	}
	if !isValidStatus(o.Status) {
		return ErrInvalidStatus
	}
	for _, item := range o.Items {
		if err := item.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// IsClosed reports whether the order reached a terminal state.
func (o *Order) IsClosed() bool {
	return o.Status == StatusCanceled || o.Status == StatusFinalized
}

// Cancel moves a pending order to CANCELED.
func (o *Order) Cancel() error {
	return o.transition(StatusCanceled)
}

// Finalize moves a pending order to FINALIZED.
func (o *Order) Finalize() error {
	return o.transition(StatusFinalized)
}

func (o *Order) transition(to Status) error {
	if o.Status != StatusPending {
		return ErrOrderClosed
	}
	o.Status = to
	return nil
}

// AddItem attaches a validated item and recomputes the total.
func (o *Order) AddItem(item Item) error {
	if o.IsClosed() {
		return ErrOrderClosed
	}
	if err := item.Validate(); err != nil {
		return err
	}
	if o.Total.Add(item.Subtotal()).GreaterThan(MaxTotal) {
		return ErrTotalTooLarge
	}
	item.ID = 0
	item.OrderID = o.ID
	o.Items = append(o.Items, item)
	o.RecomputeTotal()
	return nil
}

// RemoveItem detaches the item with the given ID and recomputes the total.
func (o *Order) RemoveItem(itemID int64) (Item, error) {
	if o.IsClosed() {
		return Item{}, ErrOrderClosed
	}
	idx := slices.IndexFunc(o.Items, func(item Item) bool { return item.ID == itemID })
	if idx < 0 {
		return Item{}, ErrItemNotInOrder
	}
	removed := o.Items[idx]
	o.Items = slices.Delete(o.Items, idx, idx+1)
	o.RecomputeTotal()
	return removed, nil
}

// RecomputeTotal derives the total from the attached items.
func (o *Order) RecomputeTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Subtotal())
	}
	o.Total = total
	return total
}

// ItemCount returns the number of attached items.
func (o *Order) ItemCount() int {
	return len(o.Items)
}

// Clone returns a deep copy of the aggregate.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	clone.Items = slices.Clone(o.Items)
	return &clone
}

// ParseStatus validates a status string coming from an adapter.
func ParseStatus(raw string) (Status, error) {
	status := Status(raw)
	if !isValidStatus(status) {
		return "", ErrInvalidStatus
	}
	return status, nil
}

func isValidStatus(status Status) bool {
	switch status {
	case StatusPending, StatusCanceled, StatusFinalized:
		return true
	default:
		return false
	}
}
