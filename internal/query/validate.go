package query

import (
	"errors"
	"strings"

	"acorn/internal/core"
)

// Validation messages, reported in this order.
const (
	MsgAmountInvalid     = "Amount is required and must be a valid number"
	MsgAmountNotPositive = "Amount must be greater than zero"
	MsgDateRequired      = "Date is required"
	MsgDateInvalid       = "Invalid date format"
	MsgMerchantRequired  = "Merchant name is required"
	MsgCategoryRequired  = "Category is required"
	MsgPaymentInvalid    = "Invalid payment method"
	MsgFrequencyRequired = "Frequency is required for recurring expenses"
)

// ValidationResult lists every problem found in a draft.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// Validate checks a draft and accumulates all applicable messages.
func Validate(d core.Draft) ValidationResult {
	errs := []string{}

	if _, err := core.ParseAmount(string(d.Amount)); err != nil {
		if errors.Is(err, core.ErrAmountNotPositive) {
			errs = append(errs, MsgAmountNotPositive)
		} else {
			errs = append(errs, MsgAmountInvalid)
		}
	}

	if strings.TrimSpace(d.Date) == "" {
		errs = append(errs, MsgDateRequired)
	} else if _, err := core.ParseDate(d.Date, nil); err != nil {
		errs = append(errs, MsgDateInvalid)
	}

	if strings.TrimSpace(d.Merchant) == "" {
		errs = append(errs, MsgMerchantRequired)
	}

	if strings.TrimSpace(d.Category) == "" {
		errs = append(errs, MsgCategoryRequired)
	}

	if d.PaymentMethod != "" && !d.PaymentMethod.IsValid() {
		errs = append(errs, MsgPaymentInvalid)
	}

	if d.IsRecurring && strings.TrimSpace(string(d.Frequency)) == "" {
		errs = append(errs, MsgFrequencyRequired)
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}
