package application

import (
	"context"
	"fmt"

	"github.com/Apurer/go-gin-order-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-order-api/internal/domains/orders/ports"
)

// Service orchestrates the order lifecycle use cases.
type Service struct {
	repo   ports.Repository
	users  ports.UserDirectory
	policy domain.Policy
}

// Option customises the application services.
type Option func(*options)

type options struct {
	policy domain.Policy
}

// WithPolicy replaces the default owner-or-admin policy.
func WithPolicy(policy domain.Policy) Option {
	return func(o *options) {
		if policy != nil {
			o.policy = policy
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{policy: domain.OwnerOrAdmin{}}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// NewService wires the lifecycle service with its store handles.
func NewService(repo ports.Repository, users ports.UserDirectory, opts ...Option) *Service {
	o := buildOptions(opts)
	return &Service{repo: repo, users: users, policy: o.policy}
}

// Create opens a pending order for an existing user.
func (s *Service) Create(ctx context.Context, ownerID int64) (*domain.Order, error) {
	order, err := domain.NewOrder(ownerID)
	if err != nil {
		return nil, mapError(err)
	}
	if s.users != nil {
		exists, err := s.users.Exists(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, fmt.Errorf("%w: owner %d", ports.ErrUserNotFound, ownerID)
		}
	}
	return s.repo.Create(ctx, order)
}

// Cancel moves a pending order to CANCELED.
func (s *Service) Cancel(ctx context.Context, actor domain.Actor, orderID int64) (*domain.Order, error) {
	return s.transition(ctx, actor, orderID, domain.OpCancel, (*domain.Order).Cancel)
}

// Finalize moves a pending order to FINALIZED.
func (s *Service) Finalize(ctx context.Context, actor domain.Actor, orderID int64) (*domain.Order, error) {
	return s.transition(ctx, actor, orderID, domain.OpFinalize, (*domain.Order).Finalize)
}

func (s *Service) transition(ctx context.Context, actor domain.Actor, orderID int64, op domain.Operation, apply func(*domain.Order) error) (*domain.Order, error) {
	updated, err := s.repo.Update(ctx, orderID, func(order *domain.Order) error {
		if !s.policy.Authorize(actor, order, op).Allowed() {
			return forbidden(op, orderID)
		}
		return apply(order)
	})
	if err != nil {
		return nil, mapError(err)
	}
	return updated, nil
}

// View returns the order when the actor owns it or is an admin.
func (s *Service) View(ctx context.Context, actor domain.Actor, orderID int64) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !s.policy.Authorize(actor, order, domain.OpView).Allowed() {
		return nil, forbidden(domain.OpView, orderID)
	}
	return order, nil
}

// ListAll returns every order; admin only.
func (s *Service) ListAll(ctx context.Context, actor domain.Actor, statuses []domain.Status) ([]*domain.Order, error) {
	if !s.policy.Authorize(actor, nil, domain.OpListAll).Allowed() {
		return nil, fmt.Errorf("%w: list all orders", ErrForbidden)
	}
	return s.repo.List(ctx, ports.ListFilter{Statuses: statuses})
}

// ListMine returns the orders owned by the actor.
func (s *Service) ListMine(ctx context.Context, actor domain.Actor, statuses []domain.Status) ([]*domain.Order, error) {
	if actor.UserID <= 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, domain.ErrInvalidOwner)
	}
	return s.repo.List(ctx, ports.ListFilter{OwnerID: actor.UserID, Statuses: statuses})
}

var _ ports.Service = (*Service)(nil)
