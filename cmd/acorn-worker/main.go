package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"acorn/internal/cli"
	"acorn/internal/config"
	"acorn/internal/log"
	"acorn/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg, os.Stdout)
	logger.Info("Starting acorn-worker")

	if err := run(cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker exited with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}

func run(cfg *config.Config, logger *log.Logger) error {
	if !cfg.SheetsConfigured() {
		return errors.New("GOOGLE_SPREADSHEET_ID is required for the sheet sync worker")
	}
	if cfg.AMQPURL == "" {
		return errors.New("AMQP_URL is required for the sheet sync worker")
	}
	if cfg.DataBackend == "memory" {
		logger.Warn("Memory backend does not share data with the server; the sheet will only mirror this process")
	}

	ctx, cancel := cli.SignalContext(context.Background(), logger)
	defer cancel()

	app, err := cli.OpenApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("Backend cleanup failed", log.FieldError, err)
		}
	}()
	if app.Backend.Publisher == nil {
		return errors.New("AMQP broker unreachable")
	}

	sheet, err := cli.SheetClient(ctx, cfg)
	if err != nil {
		return err
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	w := worker.NewSyncWorker(app.Expenses, sheet, logger)
	if err := w.StartupSync(ctx); err != nil {
		logger.Warn("Startup sync failed, continuing with events", log.FieldError, err)
	}

	err = app.Backend.Publisher.Consume(ctx, w.HandleEvent)
	stats := w.Stats()
	logger.Info("Sheet sync stopped", "syncs", stats.Syncs, "failures", stats.Failures)
	return err
}
