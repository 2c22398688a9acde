package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentDebit    PaymentMethod = "debit"
	PaymentCredit   PaymentMethod = "credit"
	PaymentCheck    PaymentMethod = "check"
	PaymentTransfer PaymentMethod = "transfer"
	PaymentDigital  PaymentMethod = "digital"
	PaymentOther    PaymentMethod = "other"
)

const (
	Once      Frequency = "once"
	Daily     Frequency = "daily"
	Weekly    Frequency = "weekly"
	Biweekly  Frequency = "biweekly"
	Monthly   Frequency = "monthly"
	Quarterly Frequency = "quarterly"
	Yearly    Frequency = "yearly"
)

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// DefaultCategoryID is used whenever a record carries no category.
const DefaultCategoryID = "other"

type (
	PaymentMethod string
	Frequency     string
	Status        string

	// Amount is a monetary value as stored in expense documents. Documents
	// written by older clients may carry it as a string.
	Amount float64

	// AmountText is raw amount input as typed by the user.
	AmountText string

	// ExpenseRecord is a single stored spending transaction.
	ExpenseRecord struct {
		ID            string        `json:"id"`
		Amount        Amount        `json:"amount"`
		Merchant      string        `json:"merchant"`
		Category      string        `json:"category"`
		Date          string        `json:"date"`
		Notes         string        `json:"notes"`
		PaymentMethod PaymentMethod `json:"paymentMethod"`
		IsRecurring   bool          `json:"isRecurring"`
		Frequency     Frequency     `json:"frequency"`
		Status        Status        `json:"status"`
		CreatedAt     string        `json:"createdAt"`
		UpdatedAt     string        `json:"updatedAt"`
	}

	// Draft is unvalidated expense input. ID and CreatedAt are set when an
	// existing record is being edited.
	Draft struct {
		ID            string        `json:"id,omitempty"`
		Amount        AmountText    `json:"amount"`
		Merchant      string        `json:"merchant"`
		Category      string        `json:"category"`
		Date          string        `json:"date"`
		Notes         string        `json:"notes"`
		PaymentMethod PaymentMethod `json:"paymentMethod"`
		IsRecurring   bool          `json:"isRecurring"`
		Frequency     Frequency     `json:"frequency"`
		Status        Status        `json:"status"`
		CreatedAt     string        `json:"createdAt,omitempty"`
	}

	// Patch holds the mutable fields of a record. Nil fields are left
	// untouched by Apply.
	Patch struct {
		Amount        *Amount        `json:"amount,omitempty"`
		Merchant      *string        `json:"merchant,omitempty"`
		Category      *string        `json:"category,omitempty"`
		Date          *string        `json:"date,omitempty"`
		Notes         *string        `json:"notes,omitempty"`
		PaymentMethod *PaymentMethod `json:"paymentMethod,omitempty"`
		IsRecurring   *bool          `json:"isRecurring,omitempty"`
		Frequency     *Frequency     `json:"frequency,omitempty"`
		Status        *Status        `json:"status,omitempty"`
	}
)

var (
	ErrAmountRequired    = errors.New("amount is required")
	ErrAmountNotNumber   = errors.New("amount is not a number")
	ErrAmountNotPositive = errors.New("amount must be greater than zero")
	ErrDateRequired      = errors.New("date is required")
	ErrInvalidDate       = errors.New("invalid date")
)

// Float returns the amount as a plain float64.
func (a Amount) Float() float64 {
	return float64(a)
}

// UnmarshalJSON accepts numbers and numeric strings. Anything else decodes
// to zero rather than failing the whole document.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*a = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = finiteAmount(strings.TrimSpace(s))
		return nil
	}
	*a = finiteAmount(string(data))
	return nil
}

func finiteAmount(s string) Amount {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return Amount(v)
}

// UnmarshalJSON keeps numbers in their literal form so that form input and
// JSON clients go through the same parsing.
func (t *AmountText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*t = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = AmountText(s)
	default:
		*t = AmountText(data)
	}
	return nil
}

// Apply merges the non-nil fields of p into r. ID and CreatedAt are never
// touched; UpdatedAt is the caller's job.
func (p Patch) Apply(r ExpenseRecord) ExpenseRecord {
	if p.Amount != nil {
		r.Amount = *p.Amount
	}
	if p.Merchant != nil {
		r.Merchant = *p.Merchant
	}
	if p.Category != nil {
		r.Category = *p.Category
	}
	if p.Date != nil {
		r.Date = *p.Date
	}
	if p.Notes != nil {
		r.Notes = *p.Notes
	}
	if p.PaymentMethod != nil {
		r.PaymentMethod = *p.PaymentMethod
	}
	if p.IsRecurring != nil {
		r.IsRecurring = *p.IsRecurring
	}
	if p.Frequency != nil {
		r.Frequency = *p.Frequency
	}
	if p.Status != nil {
		r.Status = *p.Status
	}
	return r
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p == Patch{}
}

// PatchFromDraft builds a patch that overwrites every mutable field with the
// draft's values. The amount must already be parsed.
func PatchFromDraft(d Draft, amount float64) Patch {
	a := Amount(amount)
	return Patch{
		Amount:        &a,
		Merchant:      &d.Merchant,
		Category:      &d.Category,
		Date:          &d.Date,
		Notes:         &d.Notes,
		PaymentMethod: &d.PaymentMethod,
		IsRecurring:   &d.IsRecurring,
		Frequency:     &d.Frequency,
		Status:        &d.Status,
	}
}

// CategoryOrDefault returns the record's category id, or "other" when unset.
func (r ExpenseRecord) CategoryOrDefault() string {
	if r.Category == "" {
		return DefaultCategoryID
	}
	return r.Category
}

// Time parses the record date in loc.
func (r ExpenseRecord) Time(loc *time.Location) (time.Time, error) {
	return ParseDate(r.Date, loc)
}
