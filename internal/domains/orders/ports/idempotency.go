package ports

import (
	"context"
	"errors"
	"time"

	"github.com/Apurer/go-gin-order-api/internal/domains/orders/domain"
)

// ErrIdempotencyConflict indicates the same key was used for a different request.
var ErrIdempotencyConflict = errors.New("idempotency key reused with a different request")

// IdempotencyRecord ties a client-supplied key to the order it created.
type IdempotencyRecord struct {
	Key         string
	RequestHash string
	OrderID     int64
	CreatedAt   time.Time
}

// IdempotencyStore persists idempotency keys so creation retries can be replayed.
type IdempotencyStore interface {
	// Get returns the stored record for the key, or nil when unknown.
	Get(ctx context.Context, key string) (*IdempotencyRecord, error)
	// Save stores record unless the key exists. An existing record with the
	// same hash and order is returned as is; any other existing record is
	// returned together with ErrIdempotencyConflict.
	Save(ctx context.Context, record IdempotencyRecord) (*IdempotencyRecord, error)
}

// CreateResult reports whether the order was created now or replayed from an earlier request.
type CreateResult struct {
	Order    *domain.Order
	Replayed bool
}

// IdempotentCreator creates at most one order per caller and idempotency key.
// Replays are subject to the same access rules as viewing the order.
type IdempotentCreator interface {
	CreateOnce(ctx context.Context, actor domain.Actor, key string, ownerID int64) (*CreateResult, error)
}
