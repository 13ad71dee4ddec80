package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"assessment-backend/internal/bootstrap"
	"assessment-backend/internal/shared/config"
	"assessment-backend/internal/shared/server"
	"assessment-backend/internal/shared/telemetry"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg := config.Load()
	telemetry.Init(cfg.Env)
	defer telemetry.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Build(ctx, cfg)
	if err != nil {
		telemetry.Error("api.bootstrap_failed", map[string]any{"err": err})
		telemetry.Sync()
		os.Exit(1)
	}
	defer app.Close()

	srv := &http.Server{
		Addr:              server.Addr(cfg.Port),
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		telemetry.Info("api.listening", map[string]any{
			"addr":     srv.Addr,
			"env":      cfg.Env,
			"provider": cfg.GenerationProvider,
			"store":    cfg.ObjectStoreType,
		})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		telemetry.Info("api.shutdown", nil)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			telemetry.Error("api.server_failed", map[string]any{"err": err})
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		telemetry.Error("api.shutdown_failed", map[string]any{"err": err})
	}
}
