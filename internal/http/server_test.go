package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"acorn/internal/core"
	"acorn/internal/query"
	"acorn/internal/services"
	"acorn/internal/storage/memory"
	"acorn/internal/store"
)

var testNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T, opts Options) *Server {
	t.Helper()
	clock := func() time.Time { return testNow }
	st := store.New(memory.New(), store.WithClock(clock))
	svc := services.NewExpenseService(st, nil, services.WithClock(clock))
	srv, err := NewServer(":0", svc, opts)
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv
}

func do(t *testing.T, srv *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return v
}

func TestHealthAndReady(t *testing.T) {
	srv := newTestServer(t, Options{})
	for path, want := range map[string]string{"/healthz": "ok", "/readyz": "ready"} {
		rr := do(t, srv, http.MethodGet, path, "")
		if rr.Code != http.StatusOK || rr.Body.String() != want {
			t.Errorf("%s = %d %q", path, rr.Code, rr.Body.String())
		}
	}

	failing := newTestServer(t, Options{Ready: func(context.Context) error { return errors.New("db down") }})
	if rr := do(t, failing, http.MethodGet, "/readyz", ""); rr.Code != http.StatusServiceUnavailable {
		t.Errorf("readyz with failing check = %d, want 503", rr.Code)
	}
}

func TestCostOfLiving(t *testing.T) {
	srv := newTestServer(t, Options{})

	rr := do(t, srv, http.MethodGet, "/api/cost-of-living?location="+url.QueryEscape("  new york, NY "), "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rr.Code, rr.Body.String())
	}
	tmpl := decode[core.BudgetTemplate](t, rr)
	if tmpl.City != "New York" || tmpl.Budget.Total() != 5000 {
		t.Errorf("unexpected template: %+v", tmpl)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type = %q", ct)
	}

	rr = do(t, srv, http.MethodGet, "/api/cost-of-living?location=Paris", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("unknown location status = %d", rr.Code)
	}
	nf := decode[ErrorBody](t, rr)
	if nf.Error != "Location not found" || !strings.Contains(nf.Message, "New York, NY • Los Angeles, CA • Chicago, IL") {
		t.Errorf("unexpected not-found body: %+v", nf)
	}

	rr = do(t, srv, http.MethodGet, "/api/cost-of-living", "")
	if rr.Code != http.StatusBadRequest || decode[ErrorBody](t, rr).Error != "Location parameter is required" {
		t.Errorf("missing location = %d %s", rr.Code, rr.Body.String())
	}

	rr = do(t, srv, http.MethodPost, "/api/cost-of-living?location=Austin,%20TX", "")
	if rr.Code != http.StatusMethodNotAllowed || decode[ErrorBody](t, rr).Error != "Method not allowed" {
		t.Errorf("POST = %d %s", rr.Code, rr.Body.String())
	}
	if rr.Header().Get("Allow") != http.MethodGet {
		t.Errorf("Allow = %q", rr.Header().Get("Allow"))
	}
}

func TestCostOfLiving_CancelledDuringDelay(t *testing.T) {
	srv := newTestServer(t, Options{LookupDelay: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/cost-of-living?location=Austin,%20TX", nil).WithContext(ctx)
	rr := httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		srv.Handler.ServeHTTP(rr, req)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("handler did not return after cancellation")
	}
	if rr.Body.Len() != 0 {
		t.Errorf("expected no body after cancellation, got %q", rr.Body.String())
	}
}

func TestLocationsAndSuggest(t *testing.T) {
	srv := newTestServer(t, Options{})

	locs := decode[[]string](t, do(t, srv, http.MethodGet, "/api/locations", ""))
	if len(locs) != 8 || locs[0] != "New York, NY" {
		t.Errorf("locations = %v", locs)
	}

	got := decode[SuggestResponse](t, do(t, srv, http.MethodGet, "/api/suggest?merchant=Starbucks%20Reserve", ""))
	if !got.Found || got.Category == nil || got.Category.ID != "food" {
		t.Errorf("suggest = %+v", got)
	}
	got = decode[SuggestResponse](t, do(t, srv, http.MethodGet, "/api/suggest?merchant=zzz", ""))
	if got.Found || got.Category != nil {
		t.Errorf("expected no suggestion, got %+v", got)
	}
	if rr := do(t, srv, http.MethodGet, "/api/suggest", ""); rr.Code != http.StatusBadRequest {
		t.Errorf("missing merchant = %d", rr.Code)
	}
}

func TestExpenseLifecycle(t *testing.T) {
	srv := newTestServer(t, Options{})

	rr := do(t, srv, http.MethodPost, "/api/expenses", `{"amount":"42.50","merchant":"Whole Foods","category":"food","date":"2024-03-14"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create = %d %s", rr.Code, rr.Body.String())
	}
	created := decode[services.CreateResult](t, rr)
	id := created.Record.ID
	if !strings.HasPrefix(id, "exp_") || created.Record.Amount != 42.5 {
		t.Fatalf("unexpected record: %+v", created.Record)
	}

	got := decode[core.ExpenseRecord](t, do(t, srv, http.MethodGet, "/api/expenses/"+id, ""))
	if got.Merchant != "Whole Foods" {
		t.Errorf("get = %+v", got)
	}

	rr = do(t, srv, http.MethodPatch, "/api/expenses/"+id, `{"notes":"weekly shop"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("patch = %d %s", rr.Code, rr.Body.String())
	}
	patched := decode[core.ExpenseRecord](t, rr)
	if patched.Notes != "weekly shop" || patched.Merchant != "Whole Foods" {
		t.Errorf("patch result = %+v", patched)
	}

	rr = do(t, srv, http.MethodPut, "/api/expenses/"+id, `{"amount":10,"merchant":"Safeway","category":"food","date":"2024-03-13"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("put = %d %s", rr.Code, rr.Body.String())
	}
	replaced := decode[core.ExpenseRecord](t, rr)
	if replaced.Merchant != "Safeway" || replaced.Notes != "" || replaced.ID != id || replaced.CreatedAt != created.Record.CreatedAt {
		t.Errorf("put result = %+v", replaced)
	}

	if rr := do(t, srv, http.MethodDelete, "/api/expenses/"+id, ""); rr.Code != http.StatusNoContent {
		t.Errorf("delete = %d", rr.Code)
	}
	if rr := do(t, srv, http.MethodGet, "/api/expenses/"+id, ""); rr.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d", rr.Code)
	}
	if rr := do(t, srv, http.MethodDelete, "/api/expenses/"+id, ""); rr.Code != http.StatusNotFound {
		t.Errorf("second delete = %d", rr.Code)
	}
}

func TestCreateExpense_ValidationErrors(t *testing.T) {
	srv := newTestServer(t, Options{})

	rr := do(t, srv, http.MethodPost, "/api/expenses", `{"amount":"abc","isRecurring":true}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rr.Code)
	}
	body := decode[ValidationBody](t, rr)
	want := []string{
		query.MsgAmountInvalid,
		query.MsgDateRequired,
		query.MsgMerchantRequired,
		query.MsgCategoryRequired,
		query.MsgFrequencyRequired,
	}
	if strings.Join(body.Errors, "|") != strings.Join(want, "|") {
		t.Errorf("errors = %v, want %v", body.Errors, want)
	}

	if rr := do(t, srv, http.MethodPost, "/api/expenses", `{"amount":`); rr.Code != http.StatusBadRequest {
		t.Errorf("malformed JSON = %d", rr.Code)
	}
}

func TestCreateExpense_FormEncoded(t *testing.T) {
	srv := newTestServer(t, Options{})

	form := url.Values{
		"amount":      {"12,50"},
		"merchant":    {"  Corner Cafe\x07 "},
		"category":    {"food"},
		"date":        {"2024-03-10"},
		"isRecurring": {"true"},
		"frequency":   {"weekly"},
	}
	req := httptest.NewRequest(http.MethodPost, "/api/expenses", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d %s", rr.Code, rr.Body.String())
	}
	rec := decode[services.CreateResult](t, rr).Record
	if rec.Amount != 12.5 || rec.Merchant != "Corner Cafe" || !rec.IsRecurring || rec.Frequency != core.Weekly {
		t.Errorf("unexpected record: %+v", rec)
	}
}

func TestCreateExpense_ReportsDuplicates(t *testing.T) {
	srv := newTestServer(t, Options{})
	body := `{"amount":"20","merchant":"Shell","category":"transportation","date":"2024-03-14"}`
	do(t, srv, http.MethodPost, "/api/expenses", body)

	rr := do(t, srv, http.MethodPost, "/api/expenses", body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("duplicates must not block create, status = %d", rr.Code)
	}
	if got := decode[services.CreateResult](t, rr); len(got.Duplicates) != 1 {
		t.Errorf("duplicates = %d, want 1", len(got.Duplicates))
	}
}

func TestListFilterSortAndSummary(t *testing.T) {
	srv := newTestServer(t, Options{})
	for _, b := range []string{
		`{"amount":"5","merchant":"Starbucks","category":"food","date":"2024-03-14","paymentMethod":"credit"}`,
		`{"amount":"60","merchant":"Shell","category":"transportation","date":"2024-03-12"}`,
		`{"amount":"30","merchant":"Trader Joe's","category":"food","date":"2024-01-02"}`,
	} {
		if rr := do(t, srv, http.MethodPost, "/api/expenses", b); rr.Code != http.StatusCreated {
			t.Fatalf("seed = %d %s", rr.Code, rr.Body.String())
		}
	}

	all := decode[[]core.ExpenseRecord](t, do(t, srv, http.MethodGet, "/api/expenses", ""))
	if len(all) != 3 || all[0].Merchant != "Starbucks" {
		t.Errorf("default list should be newest first: %v", all)
	}

	food := decode[[]core.ExpenseRecord](t, do(t, srv, http.MethodGet, "/api/expenses?category=food&sort=amount&order=asc", ""))
	if len(food) != 2 || food[0].Amount != 5 || food[1].Amount != 30 {
		t.Errorf("filtered list = %v", food)
	}

	credit := decode[[]core.ExpenseRecord](t, do(t, srv, http.MethodGet, "/api/expenses?paymentMethod=credit", ""))
	if len(credit) != 1 {
		t.Errorf("payment filter = %v", credit)
	}

	week := decode[[]core.ExpenseRecord](t, do(t, srv, http.MethodGet, "/api/expenses?period=week", ""))
	if len(week) != 2 {
		t.Errorf("week period = %d records, want 2", len(week))
	}

	sum := decode[query.Summary](t, do(t, srv, http.MethodGet, "/api/expenses/summary?period=all", ""))
	if sum.Count != 3 || sum.Total != 95 {
		t.Errorf("summary = %+v", sum)
	}
	if sum.TopCategory == nil || sum.TopCategory.CategoryID != "transportation" {
		t.Errorf("top category = %+v", sum.TopCategory)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	src := newTestServer(t, Options{})
	do(t, src, http.MethodPost, "/api/categories", `{"id":"garden","name":"Garden","icon":"🌱","color":"#2E7D32"}`)
	do(t, src, http.MethodPost, "/api/expenses", `{"amount":"9.99","merchant":"Nursery","category":"garden","date":"2024-03-01"}`)

	rr := do(t, src, http.MethodGet, "/api/expenses/export", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("export = %d", rr.Code)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "acorn-expenses-") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	exported := rr.Body.Bytes()

	dst := newTestServer(t, Options{})
	req := httptest.NewRequest(http.MethodPost, "/api/expenses/import", bytes.NewReader(exported))
	rr = httptest.NewRecorder()
	dst.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("import = %d %s", rr.Code, rr.Body.String())
	}
	res := decode[store.ImportResult](t, rr)
	if !res.Success || res.Imported != 1 || res.Message != "Successfully imported 1 expenses" {
		t.Errorf("import result = %+v", res)
	}

	cats := decode[[]core.Category](t, do(t, dst, http.MethodGet, "/api/categories", ""))
	if cats[len(cats)-1].ID != "garden" {
		t.Errorf("custom category not imported: %v", cats[len(cats)-1])
	}

	rr = do(t, dst, http.MethodPost, "/api/expenses/import", `{"version":"1.0.0"}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("invalid import = %d", rr.Code)
	}
	if got := decode[store.ImportResult](t, rr); got.Success || got.Message != "Invalid data format: expenses array not found" {
		t.Errorf("invalid import result = %+v", got)
	}
}

func TestAddCategory_Invalid(t *testing.T) {
	srv := newTestServer(t, Options{})
	if rr := do(t, srv, http.MethodPost, "/api/categories", `{"id":"  ","name":"x"}`); rr.Code != http.StatusBadRequest {
		t.Errorf("blank id = %d", rr.Code)
	}
}

func TestClearAndStorage(t *testing.T) {
	srv := newTestServer(t, Options{})
	do(t, srv, http.MethodPost, "/api/expenses", `{"amount":"1","merchant":"A","category":"other","date":"2024-03-01"}`)

	usage := decode[store.Usage](t, do(t, srv, http.MethodGet, "/api/storage", ""))
	if usage.ExpenseCount != 1 || usage.Used == 0 || usage.Capacity != store.DefaultCapacity {
		t.Errorf("usage = %+v", usage)
	}

	if rr := do(t, srv, http.MethodDelete, "/api/expenses", ""); rr.Code != http.StatusNoContent {
		t.Fatalf("clear = %d", rr.Code)
	}
	if list := decode[[]core.ExpenseRecord](t, do(t, srv, http.MethodGet, "/api/expenses", "")); len(list) != 0 {
		t.Errorf("list after clear = %v", list)
	}
}

func TestDueRecurring(t *testing.T) {
	srv := newTestServer(t, Options{})
	do(t, srv, http.MethodPost, "/api/expenses", `{"amount":"15","merchant":"Netflix","category":"entertainment","date":"2024-02-01","isRecurring":true,"frequency":"monthly"}`)

	due := decode[[]core.ExpenseRecord](t, do(t, srv, http.MethodGet, "/api/expenses/recurring/due", ""))
	if len(due) != 1 || due[0].Merchant != "Netflix" {
		t.Errorf("due = %v", due)
	}
}

func TestMiddlewareHeadersAndRateLimit(t *testing.T) {
	srv := newTestServer(t, Options{RateLimitPerMinute: 1})

	rr := do(t, srv, http.MethodGet, "/api/locations", "")
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers missing")
	}
	if !strings.HasPrefix(rr.Header().Get("X-Request-ID"), "req_") {
		t.Errorf("X-Request-ID = %q", rr.Header().Get("X-Request-ID"))
	}

	body := `{"amount":"1","merchant":"A","category":"other","date":"2024-03-01"}`
	if rr := do(t, srv, http.MethodPost, "/api/expenses", body); rr.Code != http.StatusCreated {
		t.Fatalf("first POST = %d", rr.Code)
	}
	rr = do(t, srv, http.MethodPost, "/api/expenses", body)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("second POST = %d, want 429", rr.Code)
	}
	if rr.Header().Get("Retry-After") != "60" {
		t.Errorf("Retry-After = %q", rr.Header().Get("Retry-After"))
	}
	if rr := do(t, srv, http.MethodGet, "/api/expenses", ""); rr.Code != http.StatusOK {
		t.Errorf("reads are not limited, got %d", rr.Code)
	}

	m := decode[Metrics](t, do(t, srv, http.MethodGet, "/api/metrics", ""))
	if m.RateLimited != 1 || m.TotalRequests < 4 {
		t.Errorf("metrics = %+v", m)
	}
}

func TestNewServer_InvalidTrustedProxy(t *testing.T) {
	clock := func() time.Time { return testNow }
	svc := services.NewExpenseService(store.New(memory.New(), store.WithClock(clock)), nil)
	if _, err := NewServer(":0", svc, Options{TrustedProxies: []string{"nope"}}); err == nil {
		t.Error("expected error for invalid trusted proxy")
	}
}
