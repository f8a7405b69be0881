package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/go-gin-order-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-order-api/internal/domains/orders/ports"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid order input")
	// ErrForbidden signals the actor may not touch the order.
	ErrForbidden = errors.New("operation not allowed for this user")
	// ErrConflict signals the order state does not permit the operation.
	ErrConflict = errors.New("order state conflict")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrInvalidOwner) ||
		errors.Is(err, domain.ErrInvalidQuantity) ||
		errors.Is(err, domain.ErrNegativePrice) ||
		errors.Is(err, domain.ErrEmptyFlavor) ||
		errors.Is(err, domain.ErrEmptySize) ||
		errors.Is(err, domain.ErrPriceTooHigh) ||
		errors.Is(err, domain.ErrSizeTooLong) ||
		errors.Is(err, domain.ErrTotalTooLarge) ||
		errors.Is(err, domain.ErrInvalidStatus) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if errors.Is(err, domain.ErrOrderClosed) {
		return fmt.Errorf("%w: %w", ErrConflict, err)
	}
	if errors.Is(err, domain.ErrItemNotInOrder) {
		return fmt.Errorf("%w: %w", ports.ErrItemNotFound, err)
	}
	return err
}

func forbidden(op domain.Operation, orderID int64) error {
	return fmt.Errorf("%w: %s order %d", ErrForbidden, op, orderID)
}
