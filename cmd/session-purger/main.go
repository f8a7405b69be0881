package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Apurer/go-gin-order-api/internal/app/api"
	platformobservability "github.com/Apurer/go-gin-order-api/internal/platform/observability"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	logger := platformobservability.NewLogger(os.Stdout, cfg.LogLevel)
	if cfg.PostgresDSN == "" {
		log.Fatal("POSTGRES_DSN not set; sessions only live inside the API process")
	}
	backend, cleanup, err := api.NewBackend(ctx, cfg, &platformobservability.Instruments{Logger: logger})
	if err != nil {
		log.Fatalf("cannot purge sessions: %v", err)
	}
	defer cleanup()

	purge := func() {
		purgeCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		removed, err := backend.Sessions.PurgeExpired(purgeCtx)
		if err != nil {
			logger.Error("session purge failed", slog.String("error", err.Error()))
			return
		}
		logger.Info("session purge completed", slog.Int64("sessions.removed", removed))
	}

	purge()
	if cfg.SessionPurgeInterval == 0 {
		return
	}
	ticker := time.NewTicker(cfg.SessionPurgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purge()
		}
	}
}
