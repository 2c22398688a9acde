package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"acorn/internal/amqp"
	"acorn/internal/cli"
	"acorn/internal/log"
	"acorn/internal/sheets"
	sheetmem "acorn/internal/sheets/memory"
)

func exportSheetCmd(flags *rootFlags) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "export-sheet",
		Short: "Rewrite the configured Google Sheet with every expense",
		Long: `export-sheet replaces the contents of GOOGLE_SHEET_NAME in
GOOGLE_SPREADSHEET_ID with one row per expense. With --dry-run the rows are
printed instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if !dryRun && !cfg.SheetsConfigured() {
				return errors.New("GOOGLE_SPREADSHEET_ID is not set; use --dry-run to preview")
			}

			return withApp(cmd, flags, func(ctx context.Context, app *cli.App, _ *log.Logger) error {
				var target sheets.ExpenseExporter
				preview := sheetmem.New()
				if dryRun {
					target = preview
				} else {
					client, err := cli.SheetClient(ctx, cfg)
					if err != nil {
						return err
					}
					target = client
				}

				rng, err := app.Expenses.ExportToSheet(ctx, target)
				if err != nil {
					return err
				}
				if dryRun {
					for _, row := range preview.Rows() {
						fmt.Fprintln(cmd.OutOrStdout(), strings.Join(row, "\t"))
					}
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", rng)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the rows instead of writing the sheet")
	return cmd
}

func eventsCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "events",
		Short: "Print expense change events from AMQP until interrupted",
		Long: `events consumes AMQP_QUEUE and prints one line per event. It competes
with acorn-worker for deliveries, so run it against a separate queue when
the worker is active.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *cli.App, logger *log.Logger) error {
				if app.Backend.Publisher == nil {
					return errors.New("AMQP is not configured or unreachable; set AMQP_URL")
				}
				ctx, cancel := cli.SignalContext(ctx, logger)
				defer cancel()

				err := app.Backend.Publisher.Consume(ctx, func(_ context.Context, ev *amqp.ExpenseEvent) error {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%d\n",
						ev.Timestamp.Format("2006-01-02T15:04:05Z07:00"), ev.Type, ev.ExpenseID, ev.Count)
					return nil
				})
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			})
		},
	}
}
