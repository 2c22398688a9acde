package query

import (
	"strings"

	"acorn/internal/core"
)

// Criteria narrows a record list. Empty fields are ignored and the rest are
// combined with AND. StartDate and EndDate are inclusive calendar dates.
type Criteria struct {
	Category      string
	PaymentMethod core.PaymentMethod
	StartDate     string
	EndDate       string
	Search        string

	// Custom categories are consulted when matching Search against
	// category names.
	Custom []core.CustomCategory
}

// IsZero reports whether no criterion is set.
func (c Criteria) IsZero() bool {
	return c.Category == "" && c.PaymentMethod == "" && c.StartDate == "" && c.EndDate == "" && c.Search == ""
}

// Filter returns the records matching every criterion, in input order.
// A record or bound whose date cannot be parsed never excludes the record
// on date grounds.
func Filter(records []core.ExpenseRecord, c Criteria) []core.ExpenseRecord {
	out := make([]core.ExpenseRecord, 0, len(records))
	search := strings.ToLower(strings.TrimSpace(c.Search))
	for _, r := range records {
		if c.Category != "" && r.Category != c.Category {
			continue
		}
		if c.PaymentMethod != "" && r.PaymentMethod != c.PaymentMethod {
			continue
		}
		if c.StartDate != "" && dateBefore(r.Date, c.StartDate) {
			continue
		}
		if c.EndDate != "" && dateBefore(c.EndDate, r.Date) {
			continue
		}
		if search != "" && !matchesSearch(r, search, c.Custom) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// dateBefore reports a < b; false when either side does not parse.
func dateBefore(a, b string) bool {
	ta, errA := core.ParseDate(a, nil)
	tb, errB := core.ParseDate(b, nil)
	if errA != nil || errB != nil {
		return false
	}
	return ta.Before(tb)
}

func matchesSearch(r core.ExpenseRecord, needle string, custom []core.CustomCategory) bool {
	if strings.Contains(strings.ToLower(r.Merchant), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(r.Notes), needle) {
		return true
	}
	name := core.ResolveCategory(r.Category, custom).Name
	return strings.Contains(strings.ToLower(name), needle)
}
