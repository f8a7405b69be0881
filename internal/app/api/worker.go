package api

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	platformobservability "github.com/Apurer/go-gin-order-api/internal/platform/observability"
	orderactivities "github.com/Apurer/go-gin-order-api/internal/platform/temporal/activities/orders"
	orderworkflows "github.com/Apurer/go-gin-order-api/internal/platform/temporal/workflows/orders"
)

// RunWorker hosts the order finalization workflow and its activity until ctx is canceled.
func RunWorker(ctx context.Context) error {
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, cfg.Observability("pedidos-worker"))
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	backend, cleanup, err := NewBackend(ctx, cfg, instruments)
	if err != nil {
		return err
	}
	defer cleanup()
	if !backend.Persistent {
		logger.Warn("worker running with in-memory repositories, orders created by the API are not visible")
	}

	temporalClient, err := ConnectTemporal(cfg, instruments, "temporal-worker")
	if err != nil {
		return fmt.Errorf("failed to create Temporal client: %w", err)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, orderworkflows.OrderFinalizationTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(orderworkflows.OrderFinalizationWorkflow, workflow.RegisterOptions{Name: orderworkflows.OrderFinalizationWorkflowName})
	activities := orderactivities.NewActivities(backend.Orders)
	w.RegisterActivityWithOptions(activities.FinalizeOrder, activity.RegisterOptions{Name: orderactivities.FinalizeOrderActivityName})

	stop := make(chan any)
	go func() {
		<-ctx.Done()
		close(stop)
	}()
	logger.Info("worker listening", slog.String("taskQueue", orderworkflows.OrderFinalizationTaskQueue), slog.String("namespace", cfg.TemporalNamespace))
	if err := w.Run(stop); err != nil {
		return fmt.Errorf("temporal worker exited: %w", err)
	}
	logger.Info("Temporal worker stopped")
	return nil
}
