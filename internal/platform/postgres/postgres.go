package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// PoolOptions tunes the underlying database/sql pool.
type PoolOptions struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DefaultPool keeps a small pool suited to a single API replica.
var DefaultPool = PoolOptions{MaxOpenConns: 20, MaxIdleConns: 5, ConnMaxLifetime: 30 * time.Minute}

// Connect opens a PostgreSQL connection via GORM and verifies connectivity.
// Driver errors are translated so unique and foreign key violations surface
// as gorm.ErrDuplicatedKey and gorm.ErrForeignKeyViolated.
func Connect(ctx context.Context, dsn string, pool PoolOptions) (*gorm.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(pool.ConnMaxLifetime)
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// ConnectOptional dials PostgreSQL when a DSN is configured and returns the DB plus
// a cleanup function. An empty DSN yields a nil DB so callers can keep state in memory;
// a configured DSN that cannot be reached is an error.
func ConnectOptional(ctx context.Context, dsn string, logger *slog.Logger) (*gorm.DB, func(), error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(dsn) == "" {
		logger.Warn("POSTGRES_DSN not set, using in-memory repositories")
		return nil, func() {}, nil
	}
	db, err := Connect(ctx, dsn, DefaultPool)
	if err != nil {
		return nil, func() {}, fmt.Errorf("connect postgres: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, func() {}, fmt.Errorf("unwrap postgres connection: %w", err)
	}
	logger.Info("postgres connection established")
	return db, func() { _ = sqlDB.Close() }, nil
}
