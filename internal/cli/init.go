// Package cli holds the start-up and shutdown plumbing shared by
// cmd/finanzy, cmd/finanzy-api and cmd/finanzy-worker.
package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"finanzy/internal/config"
	"finanzy/internal/log"
	"finanzy/internal/remote"
	"finanzy/internal/remote/httpapi"
	"finanzy/internal/remote/memory"
)

// SetupLogger builds the process logger at the given LOG_LEVEL and installs
// it as the slog default. Unknown levels fall back to info.
func SetupLogger(level string) *log.Logger {
	lvl, err := log.ParseLevel(level)
	cfg := log.DefaultConfig()
	cfg.Level = lvl
	logger := log.New(cfg)
	log.SetDefault(logger)
	if err != nil {
		logger.Warn("Falling back to info log level", log.FieldError, err)
	}
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and runs validate on it.
// Exits the process on validation failure.
func LoadAndValidateConfig(logger *log.Logger, validate func(*config.Config) error) *config.Config {
	cfg := config.Load()
	if validate == nil {
		validate = (*config.Config).Validate
	}
	if err := validate(cfg); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err, log.FieldErrorType, log.ErrorTypeConfiguration)
		os.Exit(1)
	}
	return cfg
}

// NewRemote builds the remote collection selected by REMOTE_BACKEND.
func NewRemote(cfg *config.Config, logger *log.Logger) (remote.Collection, error) {
	switch cfg.RemoteBackend {
	case "memory":
		rc, err := memory.NewFromFile(cfg.SeedFile)
		if err != nil {
			return nil, err
		}
		logger.Info("Using in-memory transaction collection", log.FieldBackend, "memory", "seed_file", cfg.SeedFile)
		return rc, nil
	case "http", "":
		rc, err := httpapi.New(cfg.APIBaseURL, cfg.RemoteTimeout)
		if err != nil {
			return nil, err
		}
		logger.Info("Using remote transaction collection", log.FieldBackend, "http", "base_url", cfg.APIBaseURL)
		return rc, nil
	default:
		return nil, fmt.Errorf("unknown remote backend %q", cfg.RemoteBackend)
	}
}

// SignalContext is cancelled on SIGINT or SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// ConfigureServer applies the timeouts every HTTP binary uses.
func ConfigureServer(srv *http.Server) *http.Server {
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 15 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16
	return srv
}

// Server is what Serve drives: a plain *http.Server or one wrapping it with
// its own Shutdown.
type Server interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// Serve runs srv until ctx is done, then shuts it down within timeout.
// Extra goroutines run in the same group and share its cancellation.
func Serve(ctx context.Context, logger *log.Logger, srv Server, timeout time.Duration, extra ...func(context.Context) error) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received", log.FieldOperation, log.OpShutdown)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	for _, fn := range extra {
		g.Go(func() error { return fn(gctx) })
	}

	err := g.Wait()
	if err == nil || errors.Is(err, context.Canceled) {
		logger.Info("Server stopped gracefully")
		return nil
	}
	return err
}
