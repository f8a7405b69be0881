package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/go-gin-order-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-order-api/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists orders and their items in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle
// and schema (see platform/migrations).
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type orderRecord struct {
	ID        int64             `gorm:"primaryKey;column:id"`
	OwnerID   int64             `gorm:"column:owner_id;not null;index:idx_orders_owner_status"`
	Status    string            `gorm:"column:status;type:varchar(32);not null;index:idx_orders_owner_status"`
	Total     decimal.Decimal   `gorm:"column:total;type:numeric(12,2);not null;default:0"`
	Items     []orderItemRecord `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time         `gorm:"column:created_at;index"`
	UpdatedAt time.Time         `gorm:"column:updated_at"`
}

func (orderRecord) TableName() string { return "orders" }

type orderItemRecord struct {
	ID        int64           `gorm:"primaryKey;column:id"`
	OrderID   int64           `gorm:"column:order_id;not null;index"`
	Flavor    string          `gorm:"column:flavor;not null"`
	Size      string          `gorm:"column:size;type:varchar(64);not null"`
	Quantity  int32           `gorm:"column:quantity;not null"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
}

func (orderItemRecord) TableName() string { return "order_items" }

// Create inserts a new order with any items it already carries.
func (r *Repository) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	clone := order.Clone()
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	clone.RecomputeTotal()
	record := toRecord(clone)
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, ports.ErrUserNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// GetByID fetches an order with its items.
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record orderRecord
	if err := r.db.WithContext(ctx).Preload("Items", orderedItems).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// Update locks the order row for the duration of the transaction so concurrent
// item changes and transitions on the same order are serialized.
func (r *Repository) Update(ctx context.Context, id int64, mutate ports.Mutation) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if mutate == nil {
		return nil, errors.New("mutation is nil")
	}
	var result *domain.Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record orderRecord
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&record, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ports.ErrNotFound
			}
			return err
		}
		if err := tx.Where("order_id = ?", id).Order("id").Find(&record.Items).Error; err != nil {
			return err
		}
		current := record.toDomain()
		working := current.Clone()
		if err := mutate(working); err != nil {
			return err
		}
		if err := working.Validate(); err != nil {
			return err
		}
		if removed := removedItemIDs(current, working); len(removed) > 0 {
			if err := tx.Where("order_id = ? AND id IN ?", id, removed).Delete(&orderItemRecord{}).Error; err != nil {
				return err
			}
		}
		for i := range working.Items {
			item := &working.Items[i]
			if item.ID != 0 {
				continue
			}
			rec := toItemRecord(id, *item)
			if err := tx.Create(&rec).Error; err != nil {
				return err
			}
			item.ID = rec.ID
			item.OrderID = id
		}
		working.RecomputeTotal()
		now := time.Now().UTC()
		if err := tx.Model(&orderRecord{}).Where("id = ?", id).Updates(map[string]any{
			"status":     string(working.Status),
			"total":      working.Total,
			"updated_at": now,
		}).Error; err != nil {
			return err
		}
		working.ID = current.ID
		working.CreatedAt = current.CreatedAt
		working.UpdatedAt = now
		result = working
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// FindItem resolves an item by its own identifier.
func (r *Repository) FindItem(ctx context.Context, itemID int64) (*domain.Item, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record orderItemRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrItemNotFound
		}
		return nil, err
	}
	item := record.toDomain()
	return &item, nil
}

// Delete removes an order; items go with it through the foreign key cascade.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Delete(&orderRecord{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// List returns orders matching the filter ordered by identifier.
func (r *Repository) List(ctx context.Context, filter ports.ListFilter) ([]*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	query := r.db.WithContext(ctx).Preload("Items", orderedItems).Order("id")
	if filter.OwnerID > 0 {
		query = query.Where("owner_id = ?", filter.OwnerID)
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, status := range filter.Statuses {
			statuses = append(statuses, string(status))
		}
		query = query.Where("status = ANY(?)", pq.Array(statuses))
	}
	var records []orderRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	orders := make([]*domain.Order, 0, len(records))
	for i := range records {
		orders = append(orders, records[i].toDomain())
	}
	return orders, nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres order repository not configured")
	}
	return nil
}

func orderedItems(db *gorm.DB) *gorm.DB {
	return db.Order("id")
}

func removedItemIDs(before, after *domain.Order) []int64 {
	kept := make(map[int64]struct{}, len(after.Items))
	for _, item := range after.Items {
		kept[item.ID] = struct{}{}
	}
	var removed []int64
	for _, item := range before.Items {
		if _, ok := kept[item.ID]; !ok {
			removed = append(removed, item.ID)
		}
	}
	return removed
}

func toRecord(order *domain.Order) orderRecord {
	rec := orderRecord{
		ID:      order.ID,
		OwnerID: order.OwnerID,
		Status:  string(order.Status),
		Total:   order.Total,
	}
	for _, item := range order.Items {
		rec.Items = append(rec.Items, toItemRecord(order.ID, item))
	}
	return rec
}

func toItemRecord(orderID int64, item domain.Item) orderItemRecord {
	return orderItemRecord{
		ID:        item.ID,
		OrderID:   orderID,
		Flavor:    item.Flavor,
		Size:      item.Size,
		Quantity:  item.Quantity,
		UnitPrice: item.UnitPrice,
	}
}

func (r orderRecord) toDomain() *domain.Order {
	order := &domain.Order{
		ID:        r.ID,
		OwnerID:   r.OwnerID,
		Status:    domain.Status(r.Status),
		Total:     r.Total,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	for _, item := range r.Items {
		order.Items = append(order.Items, item.toDomain())
	}
	return order
}

func (r orderItemRecord) toDomain() domain.Item {
	return domain.Item{
		ID:        r.ID,
		OrderID:   r.OrderID,
		Flavor:    r.Flavor,
		Size:      r.Size,
		Quantity:  r.Quantity,
		UnitPrice: r.UnitPrice,
	}
}
