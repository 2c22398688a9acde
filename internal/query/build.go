package query

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"acorn/internal/core"
)

// NewExpenseID returns a fresh record id of the form exp_<millis>_<random>.
func NewExpenseID(now time.Time) string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("exp_%d_%s", now.UnixMilli(), random[:9])
}

// BuildRecord turns a draft into a complete record, filling defaults for
// every omitted field. An existing id and createdAt are carried through,
// updatedAt is always now. Amounts that do not parse become zero, so
// callers are expected to Validate first.
func BuildRecord(d core.Draft, now time.Time) core.ExpenseRecord {
	r := core.ExpenseRecord{
		ID:            strings.TrimSpace(d.ID),
		Merchant:      strings.TrimSpace(d.Merchant),
		Category:      strings.TrimSpace(d.Category),
		Date:          strings.TrimSpace(d.Date),
		Notes:         d.Notes,
		PaymentMethod: d.PaymentMethod,
		IsRecurring:   d.IsRecurring,
		Frequency:     d.Frequency,
		Status:        d.Status,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     core.FormatTimestamp(now),
	}
	if v, err := core.ParseAmount(string(d.Amount)); err == nil {
		r.Amount = core.Amount(v)
	}
	if r.ID == "" {
		r.ID = NewExpenseID(now)
	}
	if r.Category == "" {
		r.Category = core.DefaultCategoryID
	}
	if r.Date == "" {
		r.Date = core.FormatDate(now)
	}
	if r.PaymentMethod == "" {
		r.PaymentMethod = core.PaymentCash
	}
	if r.Frequency == "" {
		r.Frequency = core.Once
	}
	if r.Status == "" {
		r.Status = core.StatusCompleted
	}
	if r.CreatedAt == "" {
		r.CreatedAt = core.FormatTimestamp(now)
	}
	return r
}
