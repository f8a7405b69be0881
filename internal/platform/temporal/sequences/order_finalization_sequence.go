package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/go-gin-order-api/internal/domains/orders/domain"
	orderactivities "github.com/Apurer/go-gin-order-api/internal/platform/temporal/activities/orders"
)

// RunOrderFinalizationSequence executes the activities that close a pending order.
func RunOrderFinalizationSequence(ctx workflow.Context, input orderactivities.FinalizeOrderInput) (*domain.Order, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("order finalization sequence started", "orderId", input.OrderID)
	options := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    5,
		},
	}

	var order domain.Order
	err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, options), orderactivities.FinalizeOrderActivityName, input).Get(ctx, &order)
	if err != nil {
		logger.Error("order finalization sequence failed", "orderId", input.OrderID, "error", err)
		return nil, err
	}
	logger.Info("order finalization sequence completed", "orderId", order.ID, "status", string(order.Status))
	return &order, nil
}
