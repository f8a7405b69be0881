package orders

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"

	ordersmemory "github.com/Apurer/go-gin-order-api/internal/domains/orders/adapters/memory"
	ordersapp "github.com/Apurer/go-gin-order-api/internal/domains/orders/application"
	"github.com/Apurer/go-gin-order-api/internal/domains/orders/domain"
	orderactivities "github.com/Apurer/go-gin-order-api/internal/platform/temporal/activities/orders"
)

type everyoneExists struct{}

func (everyoneExists) Exists(context.Context, int64) (bool, error) { return true, nil }

func newEnv(t *testing.T) (*testsuite.TestWorkflowEnvironment, *ordersapp.Service) {
	t.Helper()
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	service := ordersapp.NewService(ordersmemory.NewRepository(), everyoneExists{})
	acts := orderactivities.NewActivities(service)
	env.RegisterActivityWithOptions(acts.FinalizeOrder, activity.RegisterOptions{Name: orderactivities.FinalizeOrderActivityName})
	return env, service
}

func TestOrderFinalizationWorkflow_FinalizesPendingOrder(t *testing.T) {
	env, service := newEnv(t)
	order, err := service.Create(context.Background(), 5)
	require.NoError(t, err)

	env.ExecuteWorkflow(OrderFinalizationWorkflow, OrderFinalizationWorkflowInput{
		Command: orderactivities.FinalizeOrderInput{OrderID: order.ID, Actor: domain.Actor{UserID: 5}},
	})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var result domain.Order
	require.NoError(t, env.GetWorkflowResult(&result))
	require.Equal(t, domain.StatusFinalized, result.Status)
}

func TestOrderFinalizationWorkflow_ForbiddenIsNotRetried(t *testing.T) {
	env, service := newEnv(t)
	order, err := service.Create(context.Background(), 5)
	require.NoError(t, err)

	env.ExecuteWorkflow(OrderFinalizationWorkflow, OrderFinalizationWorkflowInput{
		Command: orderactivities.FinalizeOrderInput{OrderID: order.ID, Actor: domain.Actor{UserID: 6}},
	})
	require.True(t, env.IsWorkflowCompleted())
	wfErr := env.GetWorkflowError()
	require.Error(t, wfErr)
	require.ErrorIs(t, orderactivities.DecodeError(wfErr), ordersapp.ErrForbidden)

	stored, err := service.View(context.Background(), domain.Actor{UserID: 5}, order.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusPending, stored.Status)
}
