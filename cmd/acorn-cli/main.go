package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"acorn/internal/cli"
)

var version = "dev"

// rootFlags are shared by every subcommand that touches storage.
type rootFlags struct {
	logLevel string
	backend  string
	dbPath   string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "acorn-cli",
		Short: "🌰 Cost-of-living budgets and expense tracking",
		Long: `acorn-cli looks up monthly budget templates for supported cities and
manages the same expense store the acorn server uses.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flags.backend, "backend", "", "storage backend (memory, sqlite); defaults to DATA_BACKEND")
	root.PersistentFlags().StringVar(&flags.dbPath, "db", "", "SQLite database path; defaults to SQLITE_DB_PATH")

	root.AddCommand(lookupCmd())
	root.AddCommand(citiesCmd())
	root.AddCommand(suggestCmd())
	root.AddCommand(expensesCmd(flags))
	root.AddCommand(categoriesCmd(flags))
	root.AddCommand(exportCmd(flags))
	root.AddCommand(importCmd(flags))
	root.AddCommand(usageCmd(flags))
	root.AddCommand(exportSheetCmd(flags))
	root.AddCommand(eventsCmd(flags))
	root.AddCommand(versionCmd())

	return root
}

func main() {
	cli.LoadEnvFile()

	ctx, cancel := context.WithCancel(context.Background())
	err := newRootCmd().ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "acorn-cli %s\n", version)
		},
	}
}
