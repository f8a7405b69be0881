package api

import (
	"context"
	"fmt"
	"log/slog"

	ordersmemory "github.com/Apurer/go-gin-order-api/internal/domains/orders/adapters/memory"
	ordersobs "github.com/Apurer/go-gin-order-api/internal/domains/orders/adapters/observability"
	orderspostgres "github.com/Apurer/go-gin-order-api/internal/domains/orders/adapters/persistence/postgres"
	orderusers "github.com/Apurer/go-gin-order-api/internal/domains/orders/adapters/users"
	ordersapp "github.com/Apurer/go-gin-order-api/internal/domains/orders/application"
	ordersports "github.com/Apurer/go-gin-order-api/internal/domains/orders/ports"
	usersmemory "github.com/Apurer/go-gin-order-api/internal/domains/users/adapters/memory"
	usersobs "github.com/Apurer/go-gin-order-api/internal/domains/users/adapters/observability"
	userspostgres "github.com/Apurer/go-gin-order-api/internal/domains/users/adapters/persistence/postgres"
	"github.com/Apurer/go-gin-order-api/internal/domains/users/adapters/security"
	usersapp "github.com/Apurer/go-gin-order-api/internal/domains/users/application"
	usersports "github.com/Apurer/go-gin-order-api/internal/domains/users/ports"
	"github.com/Apurer/go-gin-order-api/internal/platform/migrations"
	platformobservability "github.com/Apurer/go-gin-order-api/internal/platform/observability"
	platformpostgres "github.com/Apurer/go-gin-order-api/internal/platform/postgres"
)

// Backend holds the decorated application services shared by the API and the worker.
type Backend struct {
	Users  usersports.Service
	Orders ordersports.Service
	Items  ordersports.ItemService

	// Creator replays order creation for a repeated Idempotency-Key.
	Creator ordersports.IdempotentCreator

	// Sessions is exposed for the purger.
	Sessions usersports.SessionPurger

	// Persistent is false when state only lives in this process.
	Persistent bool
}

type stores struct {
	users    usersports.Repository
	sessions interface {
		usersports.SessionStore
		usersports.SessionPurger
	}
	orders      ordersports.Repository
	idempotency ordersports.IdempotencyStore
}

// NewBackend connects storage and builds the services. Without POSTGRES_DSN
// every repository is in memory.
func NewBackend(ctx context.Context, cfg Config, instruments *platformobservability.Instruments) (*Backend, func(), error) {
	logger := effectiveLogger(instruments)
	db, cleanup, err := platformpostgres.ConnectOptional(ctx, cfg.PostgresDSN, logger)
	if err != nil {
		return nil, nil, err
	}
	var st stores
	if db == nil {
		st = stores{
			users:       usersmemory.NewRepository(),
			sessions:    usersmemory.NewSessionStore(),
			orders:      ordersmemory.NewRepository(),
			idempotency: ordersmemory.NewIdempotencyStore(),
		}
	} else {
		if err := migrations.Run(db); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("repositories configured with postgres")
		st = stores{
			users:       userspostgres.NewRepository(db),
			sessions:    userspostgres.NewSessionStore(db),
			orders:      orderspostgres.NewRepository(db),
			idempotency: orderspostgres.NewIdempotencyStore(db),
		}
	}

	tokens, err := security.NewJWTIssuer([]byte(cfg.JWTSecret))
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	coreUsers := usersapp.NewService(st.users, st.sessions, security.NewBcryptHasher(cfg.BcryptCost), tokens,
		usersapp.WithTokenTTL(cfg.AccessTokenTTL, cfg.RefreshTokenTTL))
	coreOrders := ordersapp.NewService(st.orders, orderusers.NewDirectory(st.users))
	coreItems := ordersapp.NewItemService(st.orders)

	orderOpts := []ordersobs.Option{
		ordersobs.WithLogger(logger),
		ordersobs.WithTracer(instruments.Tracer("internal.orders.application")),
		ordersobs.WithMeter(instruments.Meter("internal.orders.application")),
	}
	backend := &Backend{
		Users: usersobs.New(coreUsers,
			usersobs.WithLogger(logger),
			usersobs.WithTracer(instruments.Tracer("internal.users.application")),
			usersobs.WithMeter(instruments.Meter("internal.users.application")),
		),
		Orders:     ordersobs.New(coreOrders, orderOpts...),
		Items:      ordersobs.NewItemService(coreItems, orderOpts...),
		Sessions:   st.sessions,
		Persistent: db != nil,
	}
	backend.Creator = ordersapp.NewIdempotentCreator(backend.Orders, st.orders, st.idempotency)
	return backend, cleanup, nil
}

// EnsureAdmin provisions the configured bootstrap administrator.
func (b *Backend) EnsureAdmin(ctx context.Context, cfg AdminConfig, logger *slog.Logger) error {
	if !cfg.Enabled() {
		return nil
	}
	admin, err := b.Users.EnsureAdmin(ctx, usersports.SignupInput{Name: cfg.Name, Email: cfg.Email, Password: cfg.Password})
	if err != nil {
		return fmt.Errorf("ensure admin %s: %w", cfg.Email, err)
	}
	logger.Info("admin account ready", slog.Int64("user.id", admin.ID), slog.String("user.email", admin.Email))
	return nil
}
