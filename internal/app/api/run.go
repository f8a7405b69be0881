package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"

	orderserver "github.com/Apurer/go-gin-order-api/go"
	ordersworkflows "github.com/Apurer/go-gin-order-api/internal/domains/orders/adapters/workflows"
	ordersports "github.com/Apurer/go-gin-order-api/internal/domains/orders/ports"
	platformobservability "github.com/Apurer/go-gin-order-api/internal/platform/observability"
)

const serviceName = "pedidos-api"

// Run boots the order HTTP API with observability, repositories, and workflows wired.
// It returns when ctx is canceled or the server stops.
func Run(ctx context.Context) error {
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, cfg.Observability(serviceName))
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
	if err := backend.EnsureAdmin(ctx, cfg.Admin, logger); err != nil {
		return err
	}

	var workflows ordersports.WorkflowOrchestrator = ordersworkflows.NewInlineOrderWorkflows(backend.Orders)
	switch {
	case !backend.Persistent:
		logger.Warn("in-memory repositories are not shared with the worker, finalizing orders inline")
	default:
		temporalClient, err := ConnectTemporal(cfg, instruments, "temporal-client")
		if err != nil {
			logger.Warn("Temporal workflows unavailable, finalizing orders inline", slog.String("error", err.Error()))
			break
		}
		defer temporalClient.Close()
		workflows = ordersworkflows.NewTemporalOrderWorkflows(temporalClient)
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	handlers := orderserver.ApiHandleFunctions{
		AuthAPI:  orderserver.NewAuthAPI(backend.Users),
		OrderAPI: orderserver.NewOrderAPI(backend.Orders, backend.Items, workflows, orderserver.WithIdempotentCreator(backend.Creator)),
	}
	router := gin.New()
	router.Use(gin.Recovery(), otelgin.Middleware(serviceName))
	orderserver.NewRouterWithGinEngine(router, handlers)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("order API listening", slog.String("addr", server.Addr), slog.String("environment", cfg.Environment))
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("order API server exited", slog.String("addr", server.Addr), slog.String("error", err.Error()))
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("shutting down order API")
	return server.Shutdown(shutdownCtx)
}

// ConnectTemporal dials Temporal with tracing and structured logging, unless disabled.
func ConnectTemporal(cfg Config, instruments *platformobservability.Instruments, tracer string) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(temporalotel.TracerOptions{
		Tracer: instruments.Tracer(tracer),
	})
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(effectiveLogger(instruments)),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
