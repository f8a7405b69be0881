package workflows

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	ordersmemory "github.com/Apurer/go-gin-order-api/internal/domains/orders/adapters/memory"
	ordersapp "github.com/Apurer/go-gin-order-api/internal/domains/orders/application"
	"github.com/Apurer/go-gin-order-api/internal/domains/orders/domain"
)

type everyoneExists struct{}

func (everyoneExists) Exists(context.Context, int64) (bool, error) { return true, nil }

func TestInlineOrderWorkflows_FinalizeOrder(t *testing.T) {
	service := ordersapp.NewService(ordersmemory.NewRepository(), everyoneExists{})
	order, err := service.Create(context.Background(), 1)
	require.NoError(t, err)

	orchestrator := NewInlineOrderWorkflows(service)
	finalized, err := orchestrator.FinalizeOrder(context.Background(), domain.Actor{UserID: 1}, order.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusFinalized, finalized.Status)

	_, err = orchestrator.FinalizeOrder(context.Background(), domain.Actor{UserID: 1}, order.ID)
	require.ErrorIs(t, err, ordersapp.ErrConflict)
}

func TestUnconfiguredOrchestrators(t *testing.T) {
	_, err := (*InlineOrderWorkflows)(nil).FinalizeOrder(context.Background(), domain.Actor{}, 1)
	require.Error(t, err)
	_, err = NewTemporalOrderWorkflows(nil).FinalizeOrder(context.Background(), domain.Actor{}, 1)
	require.Error(t, err)
}
