package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"acorn/internal/cache"
	"acorn/internal/cli"
	"acorn/internal/config"
	apphttp "acorn/internal/http"
	"acorn/internal/log"
	"acorn/internal/query"
	"acorn/internal/services"
)

const (
	summaryCacheSize = 16
	summaryCacheTTL  = time.Minute
	shutdownTimeout  = 30 * time.Second
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg, os.Stdout)

	if err := run(cfg, logger); err != nil {
		logger.Error("Server exited with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

func run(cfg *config.Config, logger *log.Logger) error {
	ctx, cancel := cli.SignalContext(context.Background(), logger)
	defer cancel()

	summaries := cache.NewLRUCache[query.Summary](summaryCacheSize, summaryCacheTTL)
	cacheManager := cache.NewManager(logger)
	cacheManager.Register(summaries)

	app, err := cli.OpenApp(ctx, cfg, logger, services.WithSummaryCache(summaries))
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("Backend cleanup failed", log.FieldError, err)
		}
	}()

	srv, err := apphttp.NewServer(":"+cfg.Port, app.Expenses, apphttp.Options{
		LookupDelay:        cfg.LookupDelay,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		TrustedProxies:     cfg.TrustedProxies,
		Logger:             logger,
		Ready:              app.Backend.Ping,
	})
	if err != nil {
		return err
	}

	cacheManager.StartCleanup(summaryCacheTTL)
	defer cacheManager.Stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting acorn server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"amqp_enabled", app.Backend.Publisher != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
