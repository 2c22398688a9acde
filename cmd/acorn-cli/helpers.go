package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"acorn/internal/cli"
	"acorn/internal/config"
	"acorn/internal/core"
	"acorn/internal/log"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// loadConfig reads the environment and applies command line overrides.
func loadConfig(flags *rootFlags) (*config.Config, error) {
	cfg := config.Load()
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}
	if flags.backend != "" {
		cfg.DataBackend = flags.backend
	}
	if flags.dbPath != "" {
		cfg.SQLiteDBPath = flags.dbPath
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// withApp opens the configured store for the duration of fn. Logs go to
// stderr so command output stays scriptable.
func withApp(cmd *cobra.Command, flags *rootFlags, fn func(ctx context.Context, app *cli.App, logger *log.Logger) error) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	logger := cli.SetupLogger(cfg, cmd.ErrOrStderr()).WithComponent(log.ComponentCLI)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	app, err := cli.OpenApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("Backend cleanup failed", log.FieldError, err)
		}
	}()

	return fn(ctx, app, logger)
}

func printHeader(w io.Writer, title string) {
	fmt.Fprintln(w, headerStyle.Render(title))
}

func optionValues(opts []core.Option) string {
	values := make([]string, len(opts))
	for i, o := range opts {
		values[i] = o.Value
	}
	return strings.Join(values, ", ")
}
