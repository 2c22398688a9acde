package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"acorn/internal/cli"
	"acorn/internal/core"
	"acorn/internal/log"
)

func categoriesCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List or add expense categories",
	}
	cmd.AddCommand(listCategoriesCmd(flags))
	cmd.AddCommand(addCategoryCmd(flags))
	return cmd
}

func listCategoriesCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List built-in and custom categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *cli.App, _ *log.Logger) error {
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				defer w.Flush()

				fmt.Fprintf(w, "%s\t%s\t%s\n",
					headerStyle.Render("ID"),
					headerStyle.Render("Name"),
					headerStyle.Render("Subcategories"))
				fmt.Fprintf(w, "%s\t%s\t%s\n",
					strings.Repeat("-", 14),
					strings.Repeat("-", 20),
					strings.Repeat("-", 30))

				for _, c := range app.Expenses.Categories(ctx) {
					subs := strings.Join(c.Subcategories, ", ")
					if subs == "" {
						subs = mutedStyle.Render("(none)")
					}
					name := c.Name
					if !core.IsBuiltinCategory(c.ID) {
						name += " *"
					}
					fmt.Fprintf(w, "%s\t%s %s\t%s\n", c.ID, c.Icon, name, subs)
				}
				return nil
			})
		},
	}
}

func addCategoryCmd(flags *rootFlags) *cobra.Command {
	var c core.CustomCategory

	cmd := &cobra.Command{
		Use:   "add <id> <name>",
		Short: "Add a custom category",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c.ID = args[0]
			c.Name = strings.Join(args[1:], " ")

			return withApp(cmd, flags, func(ctx context.Context, app *cli.App, _ *log.Logger) error {
				added, err := app.Expenses.AddCategory(ctx, c)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added category %s (%s)\n", added.Name, added.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&c.Icon, "icon", "📦", "display icon")
	cmd.Flags().StringVar(&c.Color, "color", "#95A5A6", "display color")
	return cmd
}

func exportCmd(flags *rootFlags) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all expenses and custom categories as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *cli.App, _ *log.Logger) error {
				data, err := app.Expenses.Export(ctx)
				if err != nil {
					return err
				}
				if outPath == "" {
					_, err = cmd.OutOrStdout().Write(append(data, '\n'))
					return err
				}
				if err := os.WriteFile(outPath, data, 0o644); err != nil {
					return fmt.Errorf("write export: %w", err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Exported to %s\n", outPath)
				return nil
			})
		},
	}

	defaultName := fmt.Sprintf("acorn-expenses-%s.json", time.Now().Format(core.DateLayout))
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file, e.g. "+defaultName+" (default stdout)")
	return cmd
}

func importCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Merge an export file into the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read import file: %w", err)
			}
			return withApp(cmd, flags, func(ctx context.Context, app *cli.App, _ *log.Logger) error {
				res := app.Expenses.Import(ctx, data)
				if !res.Success {
					return errors.New(res.Message)
				}
				fmt.Fprintln(cmd.OutOrStdout(), res.Message)
				return nil
			})
		},
	}
}

func usageCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "usage",
		Short: "Show how much of the storage quota is used",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *cli.App, _ *log.Logger) error {
				u := app.Expenses.Usage(ctx)
				out := cmd.OutOrStdout()
				printHeader(out, "Storage")
				fmt.Fprintf(out, "Used:       %d of %d bytes (%.2f%%)\n", u.Used, u.Capacity, u.PercentUsed)
				fmt.Fprintf(out, "Expenses:   %d\n", u.ExpenseCount)
				fmt.Fprintf(out, "Categories: %d custom\n", u.CustomCategoryCount)
				return nil
			})
		},
	}
}
