package migrations

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Run applies the schema for the bounded contexts. Adapters never migrate on their own.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&userRecord{},
		&sessionRecord{},
		&orderRecord{},
		&orderItemRecord{},
		&idempotencyRecord{},
	)
}

// User schema mirrors the users Postgres adapter.
type userRecord struct {
	ID           int64     `gorm:"primaryKey;column:id"`
	Name         string    `gorm:"column:name;not null"`
	Email        string    `gorm:"column:email;not null;uniqueIndex"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	Active       bool      `gorm:"column:active;not null;default:true"`
	Admin        bool      `gorm:"column:admin;not null;default:false"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (userRecord) TableName() string { return "users" }

// Session schema mirrors the session store: one row per issued refresh token.
type sessionRecord struct {
	ID        string     `gorm:"primaryKey;column:id;size:64"`
	UserID    int64      `gorm:"column:user_id;not null;index"`
	User      userRecord `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	ExpiresAt time.Time  `gorm:"column:expires_at;not null;index"`
	CreatedAt time.Time  `gorm:"column:created_at"`
}

func (sessionRecord) TableName() string { return "user_sessions" }

// Order schema mirrors the orders Postgres adapter.
type orderRecord struct {
	ID        int64             `gorm:"primaryKey;column:id"`
	OwnerID   int64             `gorm:"column:owner_id;not null;index:idx_orders_owner_status"`
	Owner     userRecord        `gorm:"foreignKey:OwnerID;constraint:OnDelete:RESTRICT"`
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
	Quantity  int32           `gorm:"column:quantity;not null;check:quantity > 0"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null;check:unit_price >= 0"`
}

func (orderItemRecord) TableName() string { return "order_items" }

// Idempotency keys go away with the order they point at.
type idempotencyRecord struct {
	Key         string      `gorm:"primaryKey;column:key;size:320"`
	RequestHash string      `gorm:"column:request_hash;size:64;not null"`
	OrderID     int64       `gorm:"column:order_id;not null;index"`
	Order       orderRecord `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time   `gorm:"column:created_at"`
}

func (idempotencyRecord) TableName() string { return "order_idempotency_keys" }
