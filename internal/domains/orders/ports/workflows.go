package ports

import (
	"context"

	"github.com/Apurer/go-gin-order-api/internal/domains/orders/domain"
)

// WorkflowOrchestrator runs order lifecycle steps that may execute durably.
type WorkflowOrchestrator interface {
	FinalizeOrder(ctx context.Context, actor domain.Actor, orderID int64) (*domain.Order, error)
}
