// Package cli provides common initialization utilities shared by the
// acorn server and the acorn-cli tool.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"acorn/internal/backend"
	"acorn/internal/config"
	"acorn/internal/log"
	"acorn/internal/services"
	gsheet "acorn/internal/sheets/google"
	"acorn/internal/store"
)

// SetupLogger builds the application logger from the configured level and
// format and installs it as the slog default. An unknown level falls back
// to info and is reported once on the new logger.
func SetupLogger(cfg *config.Config, out io.Writer) *log.Logger {
	lc := log.DefaultConfig()
	if out != nil {
		lc.Output = out
	}
	level, levelErr := log.ParseLevel(cfg.LogLevel)
	lc.Level = level
	lc.Format = cfg.LogFormat

	logger := log.New(lc)
	log.SetDefault(logger)
	if levelErr != nil {
		logger.Warn("Unknown log level, using info", log.FieldError, levelErr)
	}
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration from the environment and
// validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// App bundles the wired service with the resources backing it.
type App struct {
	Backend  *backend.Result
	Store    *store.Store
	Expenses *services.ExpenseService
}

// Close releases the backend.
func (a *App) Close() error {
	if a.Backend != nil && a.Backend.Cleanup != nil {
		return a.Backend.Cleanup()
	}
	return nil
}

// OpenApp opens the configured backend and builds the expense service on
// top of it. The AMQP publisher is only attached when one is connected.
func OpenApp(ctx context.Context, cfg *config.Config, logger *log.Logger, opts ...services.Option) (*App, error) {
	if logger == nil {
		logger = log.FromContext(ctx)
	}
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("open backend: %w", err)
	}

	st := store.New(res.Storage, store.WithLogger(logger), store.WithCapacity(cfg.StorageCapacity))

	var publisher services.EventPublisher
	if res.Publisher != nil {
		publisher = res.Publisher
	}
	opts = append([]services.Option{services.WithLogger(logger)}, opts...)

	return &App{
		Backend:  res,
		Store:    st,
		Expenses: services.NewExpenseService(st, publisher, opts...),
	}, nil
}

// SheetClient connects to the configured spreadsheet.
func SheetClient(ctx context.Context, cfg *config.Config) (*gsheet.Client, error) {
	c, err := gsheet.NewClient(ctx, gsheet.Config{
		SpreadsheetID:          cfg.GoogleSpreadsheetID,
		SheetName:              cfg.GoogleSheetName,
		ServiceAccountJSON:     cfg.GoogleServiceAccountJSON,
		ServiceAccountFile:     cfg.GoogleServiceAccountFile,
		ApplicationCredentials: cfg.GoogleApplicationCredPath,
	})
	if err != nil {
		return nil, fmt.Errorf("google sheets client: %w", err)
	}
	return c, nil
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context, logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
