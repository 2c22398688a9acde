package query

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"acorn/internal/core"
)

func TestSort_Defaults(t *testing.T) {
	got := Sort(sampleRecords(), "", "")
	// Date descending; records "1" and "2" share a date and keep input order.
	assert.Equal(t, []string{"6", "4", "3", "1", "2", "5"}, ids(got))
}

func TestSort_Fields(t *testing.T) {
	tests := []struct {
		field, order string
		want         []string
	}{
		{FieldAmount, OrderAsc, []string{"5", "3", "6", "1", "4", "2"}},
		{FieldAmount, OrderDesc, []string{"2", "4", "1", "6", "3", "5"}},
		{FieldDate, OrderAsc, []string{"5", "1", "2", "3", "4", "6"}},
		{FieldMerchant, OrderAsc, []string{"3", "6", "2", "5", "4", "1"}},
		{FieldCategory, OrderAsc, []string{"5", "1", "3", "6", "2", "4"}},
		{"unknown", OrderAsc, []string{"1", "2", "3", "4", "5", "6"}},
	}
	for _, tt := range tests {
		t.Run(tt.field+"_"+tt.order, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Sort(sampleRecords(), tt.field, tt.order)))
		})
	}
}

func TestSort_DoesNotMutateInput(t *testing.T) {
	records := sampleRecords()
	before := ids(records)
	_ = Sort(records, FieldAmount, OrderAsc)
	assert.Equal(t, before, ids(records))
}

func TestFilterThenSort(t *testing.T) {
	got := Sort(Filter(sampleRecords(), Criteria{Category: "food"}), FieldAmount, OrderDesc)
	assert.NotEmpty(t, got)
	for i, r := range got {
		assert.Equal(t, "food", r.Category)
		if i > 0 {
			assert.LessOrEqual(t, r.Amount, got[i-1].Amount)
		}
	}
}

func TestSort_CaseInsensitiveText(t *testing.T) {
	records := []core.ExpenseRecord{{ID: "a", Merchant: "banana"}, {ID: "b", Merchant: "Apple"}, {ID: "c", Merchant: "cherry"}}
	assert.Equal(t, []string{"b", "a", "c"}, ids(Sort(records, FieldMerchant, OrderAsc)))
}
