package domain

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
	ErrNegativePrice   = errors.New("unit price must not be negative")
	ErrEmptyFlavor     = errors.New("flavor is required")
	ErrEmptySize       = errors.New("size is required")
	ErrPriceTooHigh    = errors.New("unit price exceeds the maximum")
	ErrSizeTooLong     = errors.New("size is too long")
)

// MaxUnitPrice bounds a single unit price. Totals are bounded by MaxTotal.
var MaxUnitPrice = decimal.NewFromInt(1_000_000)

// MaxSizeLength matches the stored size column.
const MaxSizeLength = 64

// Item is a line entry (item de pedido) of an order.
type Item struct {
	ID        int64
	OrderID   int64
	Flavor    string
	Size      string
	Quantity  int32
	UnitPrice decimal.Decimal
}

// NewItem builds a line item ensuring required invariants.
func NewItem(flavor, size string, quantity int32, unitPrice decimal.Decimal) (Item, error) {
	item := Item{
		Flavor:    strings.TrimSpace(flavor),
		Size:      strings.TrimSpace(size),
		Quantity:  quantity,
		UnitPrice: unitPrice,
	}
	if err := item.Validate(); err != nil {
		return Item{}, err
	}
	return item, nil
}

// Validate checks quantity, price and descriptors.
func (i Item) Validate() error {
	if i.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if i.UnitPrice.IsNegative() {
		return ErrNegativePrice
	}
	if i.UnitPrice.GreaterThan(MaxUnitPrice) {
		return ErrPriceTooHigh
	}
	if strings.TrimSpace(i.Flavor) == "" {
		return ErrEmptyFlavor
	}
	if strings.TrimSpace(i.Size) == "" {
		return ErrEmptySize
	}
	if len(i.Size) > MaxSizeLength {
		return ErrSizeTooLong
	}
	return nil
}

// Subtotal is quantity times unit price.
func (i Item) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt32(i.Quantity))
}
