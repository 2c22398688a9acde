package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"acorn/internal/cli"
	"acorn/internal/core"
	"acorn/internal/log"
	"acorn/internal/query"
	"acorn/internal/services"
)

const displayCurrency = "USD"

func expensesCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "expenses",
		Aliases: []string{"exp"},
		Short:   "Record and inspect expenses",
	}

	cmd.AddCommand(addExpenseCmd(flags))
	cmd.AddCommand(listExpensesCmd(flags))
	cmd.AddCommand(summaryCmd(flags))
	cmd.AddCommand(deleteExpenseCmd(flags))
	cmd.AddCommand(dueCmd(flags))
	cmd.AddCommand(clearCmd(flags))

	return cmd
}

func addExpenseCmd(flags *rootFlags) *cobra.Command {
	var d core.Draft
	var payment, frequency, status string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a new expense",
		Example: `  acorn-cli expenses add --amount 42.50 --merchant "Whole Foods"
  acorn-cli expenses add --amount 15 --merchant Netflix --category entertainment --recurring --frequency monthly`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d.PaymentMethod = core.PaymentMethod(payment)
			d.Frequency = core.Frequency(frequency)
			d.Status = core.Status(status)

			return withApp(cmd, flags, func(ctx context.Context, app *cli.App, _ *log.Logger) error {
				if d.Category == "" {
					id, ok := query.SuggestCategory(d.Merchant)
					if !ok {
						id = core.DefaultCategoryID
					}
					d.Category = id
					fmt.Fprintln(cmd.ErrOrStderr(), mutedStyle.Render("Using suggested category "+id))
				}

				res, err := app.Expenses.Create(ctx, d)
				if err != nil {
					return describeServiceError(cmd.ErrOrStderr(), err)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Added %s: %s %s\n", res.Record.ID, res.Record.Merchant,
					core.FormatAmount(res.Record.Amount.Float(), displayCurrency))
				if len(res.Duplicates) > 0 {
					fmt.Fprintln(cmd.ErrOrStderr(), warnStyle.Render(
						fmt.Sprintf("Possible duplicate of %d existing expense(s)", len(res.Duplicates))))
				}
				return nil
			})
		},
	}

	f := cmd.Flags()
	f.Var(newAmountValue(&d.Amount), "amount", "amount, e.g. 12.50")
	f.StringVar(&d.Merchant, "merchant", "", "merchant name")
	f.StringVar(&d.Category, "category", "", "category id; suggested from the merchant when empty, else "+core.DefaultCategoryID)
	f.StringVar(&d.Date, "date", time.Now().Format(core.DateLayout), "date (YYYY-MM-DD)")
	f.StringVar(&d.Notes, "notes", "", "free-form notes")
	f.StringVar(&payment, "payment", "", "payment method ("+optionValues(core.PaymentMethods())+")")
	f.BoolVar(&d.IsRecurring, "recurring", false, "mark as a recurring expense")
	f.StringVar(&frequency, "frequency", "", "recurrence ("+optionValues(core.Frequencies())+")")
	f.StringVar(&status, "status", "", "status ("+optionValues(core.Statuses())+")")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("merchant")

	return cmd
}

func listExpensesCmd(flags *rootFlags) *cobra.Command {
	var (
		opts    services.ListOptions
		period  string
		payment string
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List expenses, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if period != "" {
				opts.Period = query.ParsePeriod(period)
			}
			opts.Criteria.PaymentMethod = core.PaymentMethod(payment)

			return withApp(cmd, flags, func(ctx context.Context, app *cli.App, _ *log.Logger) error {
				records := app.Expenses.List(ctx, opts)
				if asJSON {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					if records == nil {
						records = []core.ExpenseRecord{}
					}
					return enc.Encode(records)
				}
				return printExpenses(cmd.OutOrStdout(), records, app.Expenses.Categories(ctx))
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.Criteria.Category, "category", "", "only this category id")
	f.StringVar(&payment, "payment", "", "only this payment method")
	f.StringVar(&opts.Criteria.StartDate, "from", "", "start date (inclusive)")
	f.StringVar(&opts.Criteria.EndDate, "to", "", "end date (inclusive)")
	f.StringVar(&opts.Criteria.Search, "search", "", "text in merchant, notes or category")
	f.StringVar(&period, "period", "", "today, week, month, year or all")
	f.StringVar(&opts.SortBy, "sort", "", "date, amount, merchant or category")
	f.StringVar(&opts.Order, "order", "", "asc or desc")
	f.BoolVar(&asJSON, "json", false, "print JSON instead of a table")

	return cmd
}

func printExpenses(out io.Writer, records []core.ExpenseRecord, categories []core.Category) error {
	if len(records) == 0 {
		fmt.Fprintln(out, mutedStyle.Render("No expenses found. Use 'acorn-cli expenses add' to record one."))
		return nil
	}

	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
		headerStyle.Render("Date"),
		headerStyle.Render("Merchant"),
		headerStyle.Render("Category"),
		headerStyle.Render("Amount"),
		headerStyle.Render("ID"))
	for _, r := range records {
		name, ok := names[r.CategoryOrDefault()]
		if !ok {
			name = r.CategoryOrDefault()
		}
		merchant := r.Merchant
		if r.IsRecurring {
			merchant += " ↻"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.Date, merchant, name,
			core.FormatAmount(r.Amount.Float(), displayCurrency), r.ID)
	}
	return w.Flush()
}

func summaryCmd(flags *rootFlags) *cobra.Command {
	var period string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Summarize spending over a period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *cli.App, _ *log.Logger) error {
				s := app.Expenses.Summary(ctx, query.ParsePeriod(period))
				out := cmd.OutOrStdout()

				printHeader(out, s.Label)
				fmt.Fprintf(out, "Total:   %s\n", core.FormatAmount(s.Total, displayCurrency))
				fmt.Fprintf(out, "Count:   %d\n", s.Count)
				fmt.Fprintf(out, "Average: %s\n", core.FormatAmount(s.Average, displayCurrency))
				if s.Highest != nil {
					fmt.Fprintf(out, "Highest: %s %s\n", s.Highest.Merchant,
						core.FormatAmount(s.Highest.Amount.Float(), displayCurrency))
				}
				if len(s.Breakdown) == 0 {
					return nil
				}

				fmt.Fprintln(out)
				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				for _, share := range s.Breakdown {
					fmt.Fprintf(w, "%s %s\t%s\t%.1f%%\n", share.Category.Icon, share.Category.Name,
						core.FormatAmount(share.Total, displayCurrency), share.Percentage)
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().StringVar(&period, "period", string(query.PeriodMonth), "today, week, month, year or all")
	return cmd
}

func deleteExpenseCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *cli.App, _ *log.Logger) error {
				if err := app.Expenses.Delete(ctx, args[0]); err != nil {
					return describeServiceError(cmd.ErrOrStderr(), err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
				return nil
			})
		},
	}
}

func dueCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "due",
		Short: "List recurring expenses that are due again",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *cli.App, _ *log.Logger) error {
				due := app.Expenses.Due(ctx)
				if len(due) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("Nothing is due."))
					return nil
				}
				return printExpenses(cmd.OutOrStdout(), due, app.Expenses.Categories(ctx))
			})
		},
	}
}

func clearCmd(flags *rootFlags) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every stored expense",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return errors.New("refusing to clear without --yes")
			}
			return withApp(cmd, flags, func(ctx context.Context, app *cli.App, _ *log.Logger) error {
				if err := app.Expenses.Clear(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "All expenses cleared")
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")
	return cmd
}

// describeServiceError prints validation messages one per line.
func describeServiceError(w io.Writer, err error) error {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		for _, msg := range verr.Errors {
			fmt.Fprintln(w, errorStyle.Render("• "+msg))
		}
		return errors.New("expense is invalid")
	}
	return err
}

// amountValue lets --amount keep the raw text so validation sees exactly
// what was typed.
type amountValue struct {
	target *core.AmountText
}

func newAmountValue(target *core.AmountText) *amountValue {
	return &amountValue{target: target}
}

func (a *amountValue) String() string {
	if a.target == nil {
		return ""
	}
	return string(*a.target)
}

func (a *amountValue) Set(s string) error {
	*a.target = core.AmountText(strings.TrimSpace(s))
	return nil
}

func (a *amountValue) Type() string { return "amount" }
