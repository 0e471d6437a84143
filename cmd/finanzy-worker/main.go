package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"finanzy/internal/amqp"
	"finanzy/internal/cli"
	"finanzy/internal/config"
	"finanzy/internal/log"
	"finanzy/internal/metrics"
	"finanzy/internal/sheets"
	gsheet "finanzy/internal/sheets/google"
	memsheet "finanzy/internal/sheets/memory"
	"finanzy/internal/worker"
)

const resyncInterval = 30 * time.Minute

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL")).WithComponent(log.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger, (*config.Config).ValidateWorker)

	ctx, stop := cli.SignalContext()
	defer stop()

	sheet, err := openSheet(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize spreadsheet", log.FieldError, err)
		os.Exit(1)
	}

	source, err := cli.NewRemote(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize transaction source", log.FieldError, err)
		os.Exit(1)
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Error("AMQP close failed", log.FieldError, err)
		}
	}()

	m := metrics.New("finanzy-worker")
	exporter := worker.NewExportWorker(source, sheet, logger)
	handle := func(ctx context.Context, ev amqp.TransactionEvent) error {
		err := exporter.HandleEvent(ctx, ev)
		m.ObserveEvent(string(ev.Action), err)
		return err
	}

	if err := exporter.Resync(ctx); err != nil {
		// Events still flow; the periodic resync catches up later.
		logger.Warn("Initial resync failed", log.FieldError, err)
	}

	// The worker's own HTTP surface only serves probes and metrics.
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("GET /metrics", m.Handler())
	srv := cli.ConfigureServer(&http.Server{Addr: ":" + cfg.Port, Handler: mux})

	logger.Info("Starting finanzy-worker", "queue", cfg.AMQPQueue, "port", cfg.Port, "resync_interval", resyncInterval.String())
	err = cli.Serve(ctx, logger, srv, cfg.ShutdownTimeout,
		func(ctx context.Context) error { return client.ConsumeChanges(ctx, handle) },
		func(ctx context.Context) error { return exporter.RunPeriodicResync(ctx, resyncInterval) },
	)
	if err != nil {
		logger.Error("Worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}
}

// openSheet returns the Google Sheets mirror when a spreadsheet is
// configured and an in-memory sheet otherwise.
func openSheet(ctx context.Context, cfg *config.Config, logger *log.Logger) (sheets.TransactionSheet, error) {
	if cfg.GoogleSpreadsheetID == "" {
		logger.Info("No spreadsheet configured, mirroring into memory")
		return memsheet.New(), nil
	}
	creds, err := cfg.GoogleCredentials()
	if err != nil {
		return nil, err
	}
	client, err := gsheet.New(ctx, gsheet.Options{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: creds,
		Logger:          logger,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)
	return client, nil
}
