package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"acorn/internal/core"
	"acorn/internal/query"
)

func newParser(body, contentType string) *RequestBodyParser {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return NewRequestBodyParser(httptest.NewRecorder(), req)
}

func TestRequestBodyParser_Draft(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		contentType string
		want        core.Draft
	}{
		{
			name:        "json with numeric amount",
			body:        `{"amount":12.5,"merchant":" Cafe ","category":"food","date":"2024-03-01"}`,
			contentType: "application/json",
			want:        core.Draft{Amount: "12.5", Merchant: "Cafe", Category: "food", Date: "2024-03-01"},
		},
		{
			name: "json detected without content type",
			body: `{"amount":"3","merchant":"Bus","category":"transportation","date":"2024-03-02","isRecurring":true,"frequency":"daily"}`,
			want: core.Draft{Amount: "3", Merchant: "Bus", Category: "transportation", Date: "2024-03-02", IsRecurring: true, Frequency: core.Daily},
		},
		{
			name:        "form encoded",
			body:        "amount=7&merchant=Deli%00&category=food&date=2024-03-03&paymentMethod=cash&isRecurring=no",
			contentType: "application/x-www-form-urlencoded",
			want:        core.Draft{Amount: "7", Merchant: "Deli", Category: "food", Date: "2024-03-03", PaymentMethod: core.PaymentCash},
		},
		{
			name: "empty body",
			want: core.Draft{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := newParser(tt.body, tt.contentType).Draft()
			if err != nil {
				t.Fatalf("Draft() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Draft() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRequestBodyParser_InvalidJSON(t *testing.T) {
	if _, err := newParser(`{"amount":`, "application/json").Draft(); err == nil {
		t.Error("expected error for truncated JSON")
	}
	var v map[string]any
	if err := newParser("a=b", "application/x-www-form-urlencoded").Decode(&v); err == nil {
		t.Error("Decode should reject form bodies")
	}
	if err := newParser("", "").Decode(&v); err != errEmptyBody {
		t.Errorf("Decode(empty) error = %v, want errEmptyBody", err)
	}
}

func TestRequestBodyParser_Patch(t *testing.T) {
	p, err := newParser(`{"merchant":"  New\u0001Name ","amount":9}`, "application/json").Patch()
	if err != nil {
		t.Fatalf("Patch() error = %v", err)
	}
	if p.Merchant == nil || *p.Merchant != "NewName" {
		t.Errorf("merchant = %v", p.Merchant)
	}
	if p.Amount == nil || *p.Amount != 9 {
		t.Errorf("amount = %v", p.Amount)
	}
	if p.Notes != nil || p.Category != nil {
		t.Error("absent fields must stay nil")
	}
}

func TestRequestBodyParser_BodyTooLarge(t *testing.T) {
	body := `{"notes":"` + strings.Repeat("x", maxBodyBytes) + `"}`
	if _, err := newParser(body, "application/json").Raw(); err == nil {
		t.Error("expected error for oversized body")
	}
}

func TestSanitizeInput(t *testing.T) {
	tests := map[string]string{
		"  plain  ":       "plain",
		"tab\tkept":       "tab\tkept",
		"bell\x07gone":    "bellgone",
		"line\nbreak\r\n": "line\nbreak",
		"":                "",
	}
	for in, want := range tests {
		if got := sanitizeInput(in); got != want {
			t.Errorf("sanitizeInput(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseListOptions(t *testing.T) {
	q := url.Values{
		"category":      {"food"},
		"paymentMethod": {"debit"},
		"startDate":     {"2024-01-01"},
		"endDate":       {"2024-01-31"},
		"search":        {" coffee "},
		"sort":          {"amount"},
		"order":         {"asc"},
		"period":        {"bogus"},
	}
	opts := ParseListOptions(q)

	want := query.Criteria{
		Category:      "food",
		PaymentMethod: core.PaymentDebit,
		StartDate:     "2024-01-01",
		EndDate:       "2024-01-31",
		Search:        "coffee",
	}
	if opts.Criteria.Category != want.Category || opts.Criteria.PaymentMethod != want.PaymentMethod ||
		opts.Criteria.StartDate != want.StartDate || opts.Criteria.EndDate != want.EndDate ||
		opts.Criteria.Search != want.Search {
		t.Errorf("criteria = %+v, want %+v", opts.Criteria, want)
	}
	if opts.SortBy != "amount" || opts.Order != "asc" {
		t.Errorf("sort = %q %q", opts.SortBy, opts.Order)
	}
	if opts.Period != query.PeriodAll {
		t.Errorf("unknown period should parse as all, got %q", opts.Period)
	}

	if got := ParseListOptions(url.Values{}); got.Period != "" || !got.Criteria.IsZero() {
		t.Errorf("empty query = %+v", got)
	}
}

func TestRequireMethod(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if RequireMethod(req, http.MethodGet, http.MethodHead) != nil {
		t.Error("GET should be allowed")
	}

	resp := RequireMethod(req, http.MethodPost, http.MethodPut)
	if resp == nil {
		t.Fatal("expected a 405 builder")
	}
	rr := httptest.NewRecorder()
	resp.Write(rr)
	if rr.Code != http.StatusMethodNotAllowed || rr.Header().Get("Allow") != "POST, PUT" {
		t.Errorf("got %d Allow=%q", rr.Code, rr.Header().Get("Allow"))
	}
}
