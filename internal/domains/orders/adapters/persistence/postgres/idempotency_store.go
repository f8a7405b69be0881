package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Apurer/go-gin-order-api/internal/domains/orders/ports"
)

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

// IdempotencyStore persists creation keys in order_idempotency_keys.
type IdempotencyStore struct {
	db *gorm.DB
}

func NewIdempotencyStore(db *gorm.DB) *IdempotencyStore {
	return &IdempotencyStore{db: db}
}

type idempotencyRecord struct {
	Key         string    `gorm:"primaryKey;column:key;size:320"`
	RequestHash string    `gorm:"column:request_hash;size:64;not null"`
	OrderID     int64     `gorm:"column:order_id;not null"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (idempotencyRecord) TableName() string { return "order_idempotency_keys" }

func (s *IdempotencyStore) Get(ctx context.Context, key string) (*ports.IdempotencyRecord, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("postgres idempotency store not configured")
	}
	var record idempotencyRecord
	if err := s.db.WithContext(ctx).First(&record, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return toPortIdempotency(record), nil
}

// Save relies on the primary key; a duplicate insert means another request
// stored the key first.
func (s *IdempotencyStore) Save(ctx context.Context, record ports.IdempotencyRecord) (*ports.IdempotencyRecord, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("postgres idempotency store not configured")
	}
	row := idempotencyRecord{Key: record.Key, RequestHash: record.RequestHash, OrderID: record.OrderID}
	err := s.db.WithContext(ctx).Create(&row).Error
	if err == nil {
		return toPortIdempotency(row), nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, err
	}
	existing, getErr := s.Get(ctx, record.Key)
	if getErr != nil {
		return nil, getErr
	}
	if existing == nil {
		return nil, err
	}
	if existing.RequestHash != record.RequestHash || existing.OrderID != record.OrderID {
		return existing, ports.ErrIdempotencyConflict
	}
	return existing, nil
}

func toPortIdempotency(row idempotencyRecord) *ports.IdempotencyRecord {
	return &ports.IdempotencyRecord{
		Key:         row.Key,
		RequestHash: row.RequestHash,
		OrderID:     row.OrderID,
		CreatedAt:   row.CreatedAt,
	}
}
