package query

import (
	"cmp"
	"sort"
	"strings"

	"acorn/internal/core"
)

// Sort fields understood by Sort. Any other field name compares records as
// equal, which leaves the input order unchanged.
const (
	FieldDate          = "date"
	FieldAmount        = "amount"
	FieldMerchant      = "merchant"
	FieldCategory      = "category"
	FieldNotes         = "notes"
	FieldPaymentMethod = "paymentMethod"
	FieldFrequency     = "frequency"
	FieldStatus        = "status"
	FieldCreatedAt     = "createdAt"
	FieldUpdatedAt     = "updatedAt"
	FieldID            = "id"
)

const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// Sort returns a sorted copy of records. Dates compare chronologically,
// amounts numerically and everything else as case-insensitive text.
// Empty field defaults to date and any order other than "asc" is
// descending. The sort is stable.
func Sort(records []core.ExpenseRecord, field, order string) []core.ExpenseRecord {
	if field == "" {
		field = FieldDate
	}
	out := make([]core.ExpenseRecord, len(records))
	copy(out, records)

	compare := comparator(field)
	desc := !strings.EqualFold(order, OrderAsc)
	sort.SliceStable(out, func(i, j int) bool {
		c := compare(out[i], out[j])
		if desc {
			return c > 0
		}
		return c < 0
	})
	return out
}

func comparator(field string) func(a, b core.ExpenseRecord) int {
	switch field {
	case FieldDate:
		return func(a, b core.ExpenseRecord) int {
			return cmp.Compare(epoch(a.Date), epoch(b.Date))
		}
	case FieldAmount:
		return func(a, b core.ExpenseRecord) int {
			return cmp.Compare(a.Amount.Float(), b.Amount.Float())
		}
	}
	text := textField(field)
	if text == nil {
		return func(core.ExpenseRecord, core.ExpenseRecord) int { return 0 }
	}
	return func(a, b core.ExpenseRecord) int {
		return strings.Compare(strings.ToLower(text(a)), strings.ToLower(text(b)))
	}
}

func textField(field string) func(core.ExpenseRecord) string {
	switch field {
	case FieldMerchant:
		return func(r core.ExpenseRecord) string { return r.Merchant }
	case FieldCategory:
		return func(r core.ExpenseRecord) string { return r.Category }
	case FieldNotes:
		return func(r core.ExpenseRecord) string { return r.Notes }
	case FieldPaymentMethod:
		return func(r core.ExpenseRecord) string { return string(r.PaymentMethod) }
	case FieldFrequency:
		return func(r core.ExpenseRecord) string { return string(r.Frequency) }
	case FieldStatus:
		return func(r core.ExpenseRecord) string { return string(r.Status) }
	case FieldCreatedAt:
		return func(r core.ExpenseRecord) string { return r.CreatedAt }
	case FieldUpdatedAt:
		return func(r core.ExpenseRecord) string { return r.UpdatedAt }
	case FieldID:
		return func(r core.ExpenseRecord) string { return r.ID }
	}
	return nil
}

// epoch returns milliseconds since the Unix epoch; unparseable dates sort
// as the zero time.
func epoch(date string) int64 {
	t, err := core.ParseDate(date, nil)
	if err != nil {
		return 0
	}
	return t.UnixMilli()
}
