package orders

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"

	"github.com/Apurer/go-gin-order-api/internal/domains/orders/domain"
	ordersports "github.com/Apurer/go-gin-order-api/internal/domains/orders/ports"
)

const (
	// FinalizeOrderActivityName moves a pending order to FINALIZED.
	FinalizeOrderActivityName = "orders.activities.FinalizeOrder"
)

// FinalizeOrderInput identifies the order and the actor requesting finalization.
type FinalizeOrderInput struct {
	OrderID int64
	Actor   domain.Actor
}

// Activities groups activities that operate on the orders bounded context.
type Activities struct {
	service ordersports.Service
}

// NewActivities wires the order lifecycle service into the Temporal activities bundle.
func NewActivities(service ordersports.Service) *Activities {
	return &Activities{service: service}
}

// FinalizeOrder calls the lifecycle service. Business rejections are returned as
// non-retryable application errors so the workflow fails fast.
func (a *Activities) FinalizeOrder(ctx context.Context, input FinalizeOrderInput) (*domain.Order, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("finalize order activity not initialized", "orderId", input.OrderID)
		return nil, errors.New("finalize order activity not initialized")
	}
	logger.Info("FinalizeOrder activity started", "orderId", input.OrderID, "actorId", input.Actor.UserID)
	order, err := a.service.Finalize(ctx, input.Actor, input.OrderID)
	if err != nil {
		logger.Error("FinalizeOrder activity failed", "orderId", input.OrderID, "error", err)
		return nil, EncodeError(err)
	}
	logger.Info("FinalizeOrder activity completed", "orderId", order.ID, "status", string(order.Status))
	return order, nil
}
