package sheets

import (
	"context"
	"strconv"

	"acorn/internal/core"
)

// Ports for outbound adapters.
type (
	// ExpenseExporter writes a full snapshot of the expense list to a sheet.
	ExpenseExporter interface {
		// ExportExpenses replaces the sheet contents with records and returns
		// a reference to the written range.
		ExportExpenses(ctx context.Context, records []core.ExpenseRecord, custom []core.CustomCategory) (rangeRef string, err error)
	}
)

// Header is the first row of every exported sheet.
var Header = []string{
	"Date", "Merchant", "Category", "Amount", "Payment Method",
	"Status", "Recurring", "Frequency", "Notes", "ID",
}

// Rows renders records as sheet rows below Header. Category ids are resolved
// to display names, custom categories included.
func Rows(records []core.ExpenseRecord, custom []core.CustomCategory) [][]string {
	out := make([][]string, 0, len(records))
	for _, r := range records {
		recurring := "No"
		if r.IsRecurring {
			recurring = "Yes"
		}
		out = append(out, []string{
			r.Date,
			r.Merchant,
			core.ResolveCategory(r.CategoryOrDefault(), custom).Name,
			strconv.FormatFloat(r.Amount.Float(), 'f', 2, 64),
			r.PaymentMethod.Label(),
			string(r.Status),
			recurring,
			string(r.Frequency),
			r.Notes,
			r.ID,
		})
	}
	return out
}
