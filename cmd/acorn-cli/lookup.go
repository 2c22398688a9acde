package main

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"acorn/internal/catalog"
	"acorn/internal/core"
	"acorn/internal/query"
)

var errLocationNotFound = errors.New("location not found")

func lookupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <City, ST>",
		Short: "Show the monthly budget template for a city",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			location := strings.Join(args, " ")

			tmpl, ok := catalog.Lookup(location)
			if !ok {
				fmt.Fprintln(cmd.ErrOrStderr(), warnStyle.Render(catalog.NotFoundMessage()))
				return fmt.Errorf("%w: %s", errLocationNotFound, location)
			}

			printHeader(out, fmt.Sprintf("Monthly budget for %s", tmpl.Display()))
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			for _, line := range tmpl.Budget.Lines() {
				fmt.Fprintf(w, "%s\t%s\n", core.CategoryByID(line.Category).Name, core.FormatAmount(line.Amount, tmpl.Currency))
			}
			fmt.Fprintf(w, "%s\t%s\n", strings.Repeat("-", 14), strings.Repeat("-", 10))
			fmt.Fprintf(w, "Total\t%s\n", core.FormatAmount(tmpl.Budget.Total(), tmpl.Currency))
			return w.Flush()
		},
	}
}

func citiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cities",
		Short: "List locations with cost-of-living data",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for _, loc := range catalog.Locations() {
				fmt.Fprintln(cmd.OutOrStdout(), loc)
			}
		},
	}
}

func suggestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "suggest <merchant>",
		Short: "Suggest a category for a merchant name",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			merchant := strings.Join(args, " ")
			id, ok := query.SuggestCategory(merchant)
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("No suggestion for "+merchant))
				return
			}
			c := core.CategoryByID(id)
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", c.Icon, c.Name, c.ID)
		},
	}
}
