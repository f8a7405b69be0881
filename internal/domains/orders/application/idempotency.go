package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Apurer/go-gin-order-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-order-api/internal/domains/orders/ports"
)

// MaxIdempotencyKeyLength bounds client-supplied keys.
const MaxIdempotencyKeyLength = 255

var _ ports.IdempotentCreator = (*IdempotentCreator)(nil)

// IdempotentCreator replays order creation for a repeated Idempotency-Key.
type IdempotentCreator struct {
	orders ports.Service
	repo   ports.Repository
	store  ports.IdempotencyStore
}

// NewIdempotentCreator creates orders through orders and remembers keys in store.
func NewIdempotentCreator(orders ports.Service, repo ports.Repository, store ports.IdempotencyStore) *IdempotentCreator {
	return &IdempotentCreator{orders: orders, repo: repo, store: store}
}

var errAnonymousKey = errors.New("idempotency key requires an authenticated caller")

// FingerprintCreate hashes the creation payload, excluding the key itself.
func FingerprintCreate(actorID, ownerID int64) (string, error) {
	payload, err := json.Marshal(struct {
		ActorID int64 `json:"actor_id"`
		OwnerID int64 `json:"owner_id"`
	}{ActorID: actorID, OwnerID: ownerID})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

// scopedKey namespaces a client key by the caller so callers never share keys.
func scopedKey(actor domain.Actor, key string) string {
	return strconv.FormatInt(actor.UserID, 10) + ":" + key
}

// CreateOnce behaves like Create when key is blank. A key is scoped to the
// calling actor and a replay goes through View, so it never reveals an order
// the actor may not see.
func (c *IdempotentCreator) CreateOnce(ctx context.Context, actor domain.Actor, key string, ownerID int64) (*ports.CreateResult, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		order, err := c.orders.Create(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		return &ports.CreateResult{Order: order}, nil
	}
	if len(key) > MaxIdempotencyKeyLength {
		return nil, fmt.Errorf("%w: idempotency key longer than %d characters", ErrInvalidInput, MaxIdempotencyKeyLength)
	}
	if actor.UserID <= 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, errAnonymousKey)
	}
	key = scopedKey(actor, key)
	hash, err := FingerprintCreate(actor.UserID, ownerID)
	if err != nil {
		return nil, err
	}

	existing, err := c.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return c.replay(ctx, actor, existing, hash)
	}

	order, err := c.orders.Create(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	stored, err := c.store.Save(ctx, ports.IdempotencyRecord{Key: key, RequestHash: hash, OrderID: order.ID})
	if errors.Is(err, ports.ErrIdempotencyConflict) && stored != nil {
		// A concurrent request with the same key won the race.
		if delErr := c.repo.Delete(ctx, order.ID); delErr != nil && !errors.Is(delErr, ports.ErrNotFound) {
			return nil, delErr
		}
		return c.replay(ctx, actor, stored, hash)
	}
	if err != nil {
		return nil, err
	}
	return &ports.CreateResult{Order: order}, nil
}

func (c *IdempotentCreator) replay(ctx context.Context, actor domain.Actor, record *ports.IdempotencyRecord, hash string) (*ports.CreateResult, error) {
	if record.RequestHash != hash {
		return nil, fmt.Errorf("%w: %w", ErrConflict, ports.ErrIdempotencyConflict)
	}
	order, err := c.orders.View(ctx, actor, record.OrderID)
	if err != nil {
		return nil, err
	}
	return &ports.CreateResult{Order: order, Replayed: true}, nil
}
