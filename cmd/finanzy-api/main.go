package main

import (
	"context"
	"net/http"
	"os"

	"finanzy/internal/api"
	"finanzy/internal/backend"
	"finanzy/internal/cli"
	"finanzy/internal/log"
	"finanzy/internal/metrics"
	"finanzy/internal/middleware/security"
	"finanzy/internal/middleware/trace"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL")).WithComponent(log.ComponentAPI)
	cfg := cli.LoadAndValidateConfig(logger, nil)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err, log.FieldErrorType, log.ErrorTypeConfiguration)
		os.Exit(1)
	}

	result, err := backend.NewFactory(logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err, log.FieldBackend, backendCfg.Type.String())
		os.Exit(1)
	}
	defer func() {
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", log.FieldError, err)
		}
	}()

	handler, err := api.NewHandler(result.Service, logger)
	if err != nil {
		logger.Error("Failed to initialize API handler", log.FieldError, err)
		os.Exit(1)
	}

	m := metrics.New("finanzy-api")
	mux := http.NewServeMux()
	handler.Register(mux)
	mux.Handle("GET /metrics", m.Handler())

	detector := security.NewDetector()
	srv := cli.ConfigureServer(&http.Server{
		Addr:    ":" + cfg.APIPort,
		Handler: trace.NewMiddleware(logger, detector.ClientIP, m).Middleware(mux),
	})

	ctx, stop := cli.SignalContext()
	defer stop()

	logger.Info("Starting finanzy-api", "port", cfg.APIPort, log.FieldBackend, backendCfg.Type.String())
	if err := cli.Serve(ctx, logger, srv, cfg.ShutdownTimeout); err != nil {
		logger.Error("Server error", log.FieldError, err, "port", cfg.APIPort)
		os.Exit(1)
	}
}
