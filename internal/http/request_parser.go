// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data.
// Expense input arrives either as JSON or as form-encoded fields; both are
// normalized into core types here.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"acorn/internal/core"
	"acorn/internal/query"
	"acorn/internal/services"
)

// maxBodyBytes bounds request bodies, import documents included.
const maxBodyBytes = 10 << 20

var errEmptyBody = errors.New("request body is empty")

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data.
type RequestBodyParser struct {
	body        []byte
	contentType string
	formData    url.Values
	isJSON      bool
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing.
func NewRequestBodyParser(w http.ResponseWriter, r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	p.body, p.err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	return p
}

// Parse detects JSON by content type or leading brace and falls back to
// form parsing.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	trimmed := strings.TrimSpace(string(p.body))
	if trimmed == "" {
		p.formData = url.Values{}
		return nil
	}

	if strings.HasPrefix(p.contentType, "application/json") || trimmed[0] == '{' || trimmed[0] == '[' {
		p.isJSON = true
		if !json.Valid(p.body) {
			p.err = errors.New("invalid JSON body")
		}
		return p.err
	}

	p.formData, p.err = url.ParseQuery(trimmed)
	return p.err
}

// Decode unmarshals a JSON body into v.
func (p *RequestBodyParser) Decode(v interface{}) error {
	if err := p.Parse(); err != nil {
		return err
	}
	if !p.isJSON {
		if len(p.formData) == 0 {
			return errEmptyBody
		}
		return errors.New("expected a JSON body")
	}
	if err := json.Unmarshal(p.body, v); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

// Draft builds expense input from either encoding. Text fields are sanitized.
func (p *RequestBodyParser) Draft() (core.Draft, error) {
	if err := p.Parse(); err != nil {
		return core.Draft{}, err
	}

	var d core.Draft
	if p.isJSON {
		if err := json.Unmarshal(p.body, &d); err != nil {
			return core.Draft{}, fmt.Errorf("decode expense: %w", err)
		}
	} else {
		f := p.formData
		d = core.Draft{
			Amount:        core.AmountText(f.Get("amount")),
			Merchant:      f.Get("merchant"),
			Category:      f.Get("category"),
			Date:          f.Get("date"),
			Notes:         f.Get("notes"),
			PaymentMethod: core.PaymentMethod(f.Get("paymentMethod")),
			Frequency:     core.Frequency(f.Get("frequency")),
			Status:        core.Status(f.Get("status")),
		}
		d.IsRecurring, _ = strconv.ParseBool(strings.TrimSpace(f.Get("isRecurring")))
	}
	return sanitizeDraft(d), nil
}

// Patch decodes a partial update. Only JSON carries field presence.
func (p *RequestBodyParser) Patch() (core.Patch, error) {
	var patch core.Patch
	if err := p.Decode(&patch); err != nil {
		return core.Patch{}, err
	}
	for _, s := range []*string{patch.Merchant, patch.Category, patch.Date, patch.Notes} {
		if s != nil {
			*s = sanitizeInput(*s)
		}
	}
	return patch, nil
}

// Raw returns the raw body bytes.
func (p *RequestBodyParser) Raw() ([]byte, error) {
	return p.body, p.err
}

func sanitizeDraft(d core.Draft) core.Draft {
	d.Amount = core.AmountText(strings.TrimSpace(string(d.Amount)))
	d.Merchant = sanitizeInput(d.Merchant)
	d.Category = sanitizeInput(d.Category)
	d.Date = sanitizeInput(d.Date)
	d.Notes = sanitizeInput(d.Notes)
	d.PaymentMethod = core.PaymentMethod(sanitizeInput(string(d.PaymentMethod)))
	d.Frequency = core.Frequency(sanitizeInput(string(d.Frequency)))
	d.Status = core.Status(sanitizeInput(string(d.Status)))
	return d
}

// sanitizeInput removes control characters except tab and newlines, then
// trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// ParseListOptions reads filter, sort and period parameters from a query
// string. Unknown sort fields fall back to text comparison in query.Sort.
func ParseListOptions(q url.Values) services.ListOptions {
	get := func(k string) string { return sanitizeInput(q.Get(k)) }

	opts := services.ListOptions{
		Criteria: query.Criteria{
			Category:      get("category"),
			PaymentMethod: core.PaymentMethod(get("paymentMethod")),
			StartDate:     get("startDate"),
			EndDate:       get("endDate"),
			Search:        get("search"),
		},
		SortBy: get("sort"),
		Order:  get("order"),
	}
	if v := get("period"); v != "" {
		opts.Period = query.ParsePeriod(v)
	}
	return opts
}

// RequireMethod checks if the request method matches the expected method(s).
// Returns an error response builder if the method doesn't match.
func RequireMethod(r *http.Request, methods ...string) *JSONResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}
