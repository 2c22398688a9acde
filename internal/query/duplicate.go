package query

import (
	"math"
	"strings"

	"acorn/internal/core"
)

// IsDuplicate reports whether two records look like the same transaction:
// amounts within a cent, same calendar day and same merchant ignoring case.
func IsDuplicate(a, b core.ExpenseRecord) bool {
	if math.Abs(a.Amount.Float()-b.Amount.Float()) >= 0.01 {
		return false
	}
	da, errA := core.ParseDate(a.Date, nil)
	db, errB := core.ParseDate(b.Date, nil)
	if errA != nil || errB != nil || !core.SameDay(da, db) {
		return false
	}
	return normalizeMerchant(a.Merchant) == normalizeMerchant(b.Merchant)
}

// FindDuplicates returns the records that look like candidate, skipping
// candidate itself.
func FindDuplicates(records []core.ExpenseRecord, candidate core.ExpenseRecord) []core.ExpenseRecord {
	var out []core.ExpenseRecord
	for _, r := range records {
		if r.ID != "" && r.ID == candidate.ID {
			continue
		}
		if IsDuplicate(r, candidate) {
			out = append(out, r)
		}
	}
	return out
}

func normalizeMerchant(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
