package orders

import (
	"errors"

	"go.temporal.io/sdk/temporal"

	ordersapp "github.com/Apurer/go-gin-order-api/internal/domains/orders/application"
	ordersports "github.com/Apurer/go-gin-order-api/internal/domains/orders/ports"
)

// Application error types carried across the workflow boundary.
const (
	ErrorTypeNotFound     = "OrderNotFound"
	ErrorTypeItemNotFound = "OrderItemNotFound"
	ErrorTypeForbidden    = "OrderForbidden"
	ErrorTypeConflict     = "OrderConflict"
	ErrorTypeInvalidInput = "OrderInvalidInput"
)

var errorTypes = []struct {
	kind     string
	sentinel error
}{
	{ErrorTypeNotFound, ordersports.ErrNotFound},
	{ErrorTypeItemNotFound, ordersports.ErrItemNotFound},
	{ErrorTypeForbidden, ordersapp.ErrForbidden},
	{ErrorTypeConflict, ordersapp.ErrConflict},
	{ErrorTypeInvalidInput, ordersapp.ErrInvalidInput},
}

// EncodeError converts business errors into non-retryable application errors.
// Anything else is returned untouched and retried per the activity policy.
func EncodeError(err error) error {
	if err == nil {
		return nil
	}
	for _, et := range errorTypes {
		if errors.Is(err, et.sentinel) {
			return temporal.NewNonRetryableApplicationError(err.Error(), et.kind, err)
		}
	}
	return err
}

// DecodeError maps an application error surfaced by a workflow run back onto
// the order sentinels so transports can classify it.
func DecodeError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *temporal.ApplicationError
	if !errors.As(err, &appErr) {
		return err
	}
	for _, et := range errorTypes {
		if appErr.Type() == et.kind {
			return &decodedError{sentinel: et.sentinel, msg: appErr.Error()}
		}
	}
	return err
}

type decodedError struct {
	sentinel error
	msg      string
}

func (e *decodedError) Error() string { return e.msg }

func (e *decodedError) Unwrap() error { return e.sentinel }
