package orders

import (
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/go-gin-order-api/internal/domains/orders/domain"
	orderactivities "github.com/Apurer/go-gin-order-api/internal/platform/temporal/activities/orders"
	"github.com/Apurer/go-gin-order-api/internal/platform/temporal/sequences"
)

const (
	// OrderFinalizationWorkflowName is the public identifier for registering the workflow.
	OrderFinalizationWorkflowName = "orders.workflows.Finalization"
	// OrderFinalizationTaskQueue is the queue consumed by the worker processing order workflows.
	OrderFinalizationTaskQueue = "ORDER_FINALIZATION"
)

// OrderFinalizationWorkflowInput captures the payload required to finalize an order.
type OrderFinalizationWorkflowInput struct {
	Command orderactivities.FinalizeOrderInput
	TraceID string
}

// OrderFinalizationWorkflow closes a pending order as FINALIZED.
func OrderFinalizationWorkflow(ctx workflow.Context, input OrderFinalizationWorkflowInput) (*domain.Order, error) {
	logger := workflow.GetLogger(ctx)
	orderID := input.Command.OrderID
	logger.Info("OrderFinalizationWorkflow started", withTraceID(input.TraceID, "orderId", orderID)...)
	order, err := sequences.RunOrderFinalizationSequence(ctx, input.Command)
	if err != nil {
		logger.Error("OrderFinalizationWorkflow failed", withTraceID(input.TraceID, "orderId", orderID, "error", err)...)
		return nil, err
	}
	logger.Info("OrderFinalizationWorkflow completed", withTraceID(input.TraceID, "orderId", order.ID)...)
	return order, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
