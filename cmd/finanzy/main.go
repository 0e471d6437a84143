package main

import (
	"context"
	"os"
	"time"

	"finanzy/internal/cli"
	apphttp "finanzy/internal/http"
	"finanzy/internal/log"
	"finanzy/internal/metrics"
	"finanzy/internal/store"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL")).WithComponent(log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger, nil)

	rc, err := cli.NewRemote(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize remote collection", log.FieldError, err, log.FieldBackend, cfg.RemoteBackend)
		os.Exit(1)
	}

	m := metrics.New("finanzy")
	st := store.New(rc,
		store.WithLogger(logger),
		store.WithObserver(m))

	// A failed initial load is not fatal: pages and /readyz retry it.
	loadCtx, cancel := context.WithTimeout(context.Background(), cfg.RemoteTimeout)
	if err := st.Load(loadCtx); err != nil {
		logger.Warn("Initial load failed, will retry on first request", log.FieldError, err)
	}
	cancel()

	srv := apphttp.NewServer(":"+cfg.Port, st, apphttp.Options{
		Logger:             logger,
		Metrics:            m,
		PageSize:           cfg.PageSize,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})
	cli.ConfigureServer(&srv.Server)

	ctx, stop := cli.SignalContext()
	defer stop()

	logger.Info("Starting finanzy", "port", cfg.Port, log.FieldBackend, cfg.RemoteBackend, "started_at", time.Now().Format(time.RFC3339))
	if err := cli.Serve(ctx, logger, srv, cfg.ShutdownTimeout); err != nil {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}
}
