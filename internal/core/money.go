// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts from user input
// and formatting them for display.
package core

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.AmericanEnglish)

// ParseAmount converts user input to a positive amount.
//
// A decimal comma is accepted when the input has no dot ("12,34" -> 12.34).
// Returns ErrAmountRequired for blank input, ErrAmountNotNumber when the text
// is not a finite number and ErrAmountNotPositive for zero or negative values.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,34") -> 12.34, nil
//	ParseAmount("abc")   -> 0, ErrAmountNotNumber
//	ParseAmount("-1")    -> 0, ErrAmountNotPositive
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrAmountRequired
	}
	if !strings.Contains(s, ".") && strings.Count(s, ",") == 1 {
		s = strings.Replace(s, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrAmountNotNumber
	}
	if v <= 0 {
		return 0, ErrAmountNotPositive
	}
	return v, nil
}

// FormatAmount renders an amount with its currency symbol and thousands
// grouping, e.g. "$1,234.50". Unknown currencies are prefixed with the code.
func FormatAmount(v float64, currency string) string {
	neg := v < 0
	if neg {
		v = -v
	}
	var symbol string
	switch strings.ToUpper(currency) {
	case "", "USD":
		symbol = "$"
	case "EUR":
		symbol = "€"
	case "GBP":
		symbol = "£"
	default:
		symbol = strings.ToUpper(currency) + " "
	}
	s := symbol + printer.Sprintf("%.2f", v)
	if neg {
		return "-" + s
	}
	return s
}
