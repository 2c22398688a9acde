package query

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"acorn/internal/core"
)

var idPattern = regexp.MustCompile(`^exp_\d+_[0-9a-f]{9}$`)

func TestBuildRecord_Defaults(t *testing.T) {
	now := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)
	r := BuildRecord(core.Draft{Amount: "19.99", Merchant: " Target "}, now)

	assert.Regexp(t, idPattern, r.ID)
	assert.Equal(t, core.Amount(19.99), r.Amount)
	assert.Equal(t, "Target", r.Merchant)
	assert.Equal(t, "other", r.Category)
	assert.Equal(t, "2024-06-01", r.Date)
	assert.Equal(t, "", r.Notes)
	assert.Equal(t, core.PaymentCash, r.PaymentMethod)
	assert.False(t, r.IsRecurring)
	assert.Equal(t, core.Once, r.Frequency)
	assert.Equal(t, core.StatusCompleted, r.Status)
	assert.Equal(t, "2024-06-01T09:30:00.000Z", r.CreatedAt)
	assert.Equal(t, r.CreatedAt, r.UpdatedAt)
}

func TestBuildRecord_CarriesIdentity(t *testing.T) {
	now := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)
	r := BuildRecord(core.Draft{
		ID:        "exp_1_abc",
		CreatedAt: "2024-01-01T00:00:00.000Z",
		Amount:    "5",
		Category:  "food",
		Date:      "2024-05-30",
		Status:    core.StatusPending,
		Frequency: core.Weekly,
	}, now)

	assert.Equal(t, "exp_1_abc", r.ID)
	assert.Equal(t, "2024-01-01T00:00:00.000Z", r.CreatedAt)
	assert.Equal(t, "2024-06-02T00:00:00.000Z", r.UpdatedAt)
	assert.Equal(t, "2024-05-30", r.Date)
	assert.Equal(t, core.StatusPending, r.Status)
	assert.Equal(t, core.Weekly, r.Frequency)
}

func TestBuildRecord_BadAmountIsZero(t *testing.T) {
	r := BuildRecord(core.Draft{Amount: "lots"}, time.Now())
	assert.Zero(t, r.Amount)
}

func TestNewExpenseID_Unique(t *testing.T) {
	now := time.Now()
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := NewExpenseID(now)
		assert.False(t, seen[id], id)
		seen[id] = true
	}
}
