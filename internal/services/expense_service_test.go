package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"acorn/internal/amqp"
	"acorn/internal/cache"
	"acorn/internal/core"
	"acorn/internal/query"
	sheetmem "acorn/internal/sheets/memory"
	"acorn/internal/storage/memory"
	"acorn/internal/store"
)

var testNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	events []*amqp.ExpenseEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev *amqp.ExpenseEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) types() []amqp.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]amqp.EventType, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}

func newTestService(t *testing.T, pub EventPublisher) *ExpenseService {
	t.Helper()
	clock := func() time.Time { return testNow }
	st := store.New(memory.New(), store.WithClock(clock))
	return NewExpenseService(st, pub, WithClock(clock))
}

func validDraft() core.Draft {
	return core.Draft{
		Amount:   "42.50",
		Merchant: "Whole Foods",
		Category: "food",
		Date:     "2024-03-14",
	}
}

func TestExpenseService_CreateStoresAndPublishes(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc := newTestService(t, pub)

	res, err := svc.Create(ctx, validDraft())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if res.Record.Amount != 42.5 {
		t.Errorf("Amount = %v, want 42.5", res.Record.Amount)
	}
	if res.Record.PaymentMethod != core.PaymentCash {
		t.Errorf("PaymentMethod = %v, want cash default", res.Record.PaymentMethod)
	}
	if len(res.Duplicates) != 0 {
		t.Errorf("unexpected duplicates: %v", res.Duplicates)
	}

	got, err := svc.Get(ctx, res.Record.ID)
	if err != nil || got.Merchant != "Whole Foods" {
		t.Fatalf("Get() = %+v, %v", got, err)
	}

	if types := pub.types(); len(types) != 1 || types[0] != amqp.EventExpenseCreated {
		t.Errorf("published %v, want [expense.created]", types)
	}
}

func TestExpenseService_CreateIgnoresClientID(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)

	d := validDraft()
	d.ID = "exp_forged"
	res, err := svc.Create(ctx, d)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if res.Record.ID == "exp_forged" {
		t.Error("client supplied id should not be used")
	}
}

func TestExpenseService_CreateValidation(t *testing.T) {
	svc := newTestService(t, nil)

	_, err := svc.Create(context.Background(), core.Draft{Amount: "-3"})

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	want := []string{
		query.MsgAmountNotPositive,
		query.MsgDateRequired,
		query.MsgMerchantRequired,
		query.MsgCategoryRequired,
	}
	if len(verr.Errors) != len(want) {
		t.Fatalf("errors = %v, want %v", verr.Errors, want)
	}
	for i := range want {
		if verr.Errors[i] != want[i] {
			t.Errorf("errors[%d] = %q, want %q", i, verr.Errors[i], want[i])
		}
	}
}

func TestExpenseService_CreateReportsDuplicates(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)

	first, err := svc.Create(ctx, validDraft())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	d := validDraft()
	d.Merchant = "  whole foods "
	second, err := svc.Create(ctx, d)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if len(second.Duplicates) != 1 || second.Duplicates[0].ID != first.Record.ID {
		t.Fatalf("Duplicates = %v, want [%s]", second.Duplicates, first.Record.ID)
	}
	if n := len(svc.List(ctx, ListOptions{})); n != 2 {
		t.Errorf("duplicate should still be stored, have %d records", n)
	}
}

func TestExpenseService_PublishFailureDoesNotFailCreate(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc := newTestService(t, pub)

	if _, err := svc.Create(context.Background(), validDraft()); err != nil {
		t.Fatalf("Create() error = %v, want nil even when publish fails", err)
	}
}

func TestExpenseService_ReplaceAndPatch(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc := newTestService(t, pub)

	created, _ := svc.Create(ctx, validDraft())
	id := created.Record.ID

	d := validDraft()
	d.Amount = "10"
	d.Merchant = "Trader Joe's"
	d.Notes = "weekly shop"
	replaced, err := svc.Replace(ctx, id, d)
	if err != nil {
		t.Fatalf("Replace() error = %v", err)
	}
	if replaced.Amount != 10 || replaced.Merchant != "Trader Joe's" || replaced.Notes != "weekly shop" {
		t.Errorf("Replace() = %+v", replaced)
	}
	if replaced.CreatedAt != created.Record.CreatedAt {
		t.Errorf("createdAt changed: %s -> %s", created.Record.CreatedAt, replaced.CreatedAt)
	}

	status := core.StatusPending
	patched, err := svc.Patch(ctx, id, core.Patch{Status: &status})
	if err != nil {
		t.Fatalf("Patch() error = %v", err)
	}
	if patched.Status != core.StatusPending || patched.Merchant != "Trader Joe's" {
		t.Errorf("Patch() = %+v", patched)
	}

	empty := ""
	if _, err := svc.Patch(ctx, id, core.Patch{Merchant: &empty}); err == nil {
		t.Error("Patch() clearing the merchant should fail validation")
	}

	if _, err := svc.Replace(ctx, "missing", validDraft()); !errors.Is(err, ErrNotFound) {
		t.Errorf("Replace(missing) error = %v, want ErrNotFound", err)
	}
	if _, err := svc.Patch(ctx, "missing", core.Patch{Status: &status}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Patch(missing) error = %v, want ErrNotFound", err)
	}

	types := pub.types()
	if len(types) != 3 || types[1] != amqp.EventExpenseUpdated || types[2] != amqp.EventExpenseUpdated {
		t.Errorf("published %v", types)
	}
}

func TestExpenseService_Delete(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)
	created, _ := svc.Create(ctx, validDraft())

	if err := svc.Delete(ctx, created.Record.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := svc.Get(ctx, created.Record.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete error = %v, want ErrNotFound", err)
	}
	if err := svc.Delete(ctx, created.Record.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}

func TestExpenseService_ListFiltersSortsAndWindows(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)

	for _, d := range []core.Draft{
		{Amount: "5", Merchant: "Starbucks", Category: "food", Date: "2024-03-14"},
		{Amount: "1200", Merchant: "Landlord", Category: "housing", Date: "2024-03-01"},
		{Amount: "15", Merchant: "Chipotle", Category: "food", Date: "2023-12-01"},
	} {
		if _, err := svc.Create(ctx, d); err != nil {
			t.Fatalf("Create(%s) error = %v", d.Merchant, err)
		}
	}

	all := svc.List(ctx, ListOptions{})
	if len(all) != 3 || all[0].Merchant != "Starbucks" {
		t.Fatalf("default list should be newest first, got %v", all)
	}

	food := svc.List(ctx, ListOptions{Criteria: query.Criteria{Category: "food"}, SortBy: query.FieldAmount, Order: query.OrderAsc})
	if len(food) != 2 || food[0].Merchant != "Starbucks" || food[1].Merchant != "Chipotle" {
		t.Errorf("food by amount asc = %v", food)
	}

	month := svc.List(ctx, ListOptions{Period: query.PeriodMonth})
	if len(month) != 2 {
		t.Errorf("last 30 days = %d records, want 2", len(month))
	}

	byName := svc.List(ctx, ListOptions{Criteria: query.Criteria{Search: "food & dining"}})
	if len(byName) != 2 {
		t.Errorf("search by category name = %d records, want 2", len(byName))
	}
}

func TestExpenseService_SummaryAndCategories(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)
	_, _ = svc.Create(ctx, core.Draft{Amount: "30", Merchant: "Shell", Category: "transportation", Date: "2024-03-14"})
	_, _ = svc.Create(ctx, core.Draft{Amount: "10", Merchant: "Cafe", Category: "food", Date: "2024-03-13"})

	sum := svc.Summary(ctx, query.PeriodWeek)
	if sum.Count != 2 || sum.Total != 40 {
		t.Errorf("Summary() count=%d total=%v", sum.Count, sum.Total)
	}
	if sum.TopCategory == nil || sum.TopCategory.CategoryID != "transportation" {
		t.Errorf("TopCategory = %+v", sum.TopCategory)
	}

	if _, err := svc.AddCategory(ctx, core.CustomCategory{ID: " ", Name: "x"}); !errors.Is(err, ErrInvalidCategory) {
		t.Errorf("AddCategory(blank id) error = %v", err)
	}
	added, err := svc.AddCategory(ctx, core.CustomCategory{ID: " garden ", Name: "Garden"})
	if err != nil || added.ID != "garden" {
		t.Fatalf("AddCategory() = %+v, %v", added, err)
	}
	cats := svc.Categories(ctx)
	if len(cats) != len(core.Categories())+1 || cats[len(cats)-1].ID != "garden" {
		t.Errorf("Categories() tail = %+v", cats[len(cats)-1])
	}
}

func TestExpenseService_ImportExportClear(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc := newTestService(t, pub)
	_, _ = svc.Create(ctx, validDraft())

	data, err := svc.Export(ctx)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	if err := svc.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if n := svc.Usage(ctx).ExpenseCount; n != 0 {
		t.Fatalf("ExpenseCount after clear = %d", n)
	}

	res := svc.Import(ctx, data)
	if !res.Success || res.Imported != 1 {
		t.Fatalf("Import() = %+v", res)
	}
	again := svc.Import(ctx, data)
	if !again.Success || again.Imported != 0 {
		t.Fatalf("second Import() = %+v", again)
	}

	want := []amqp.EventType{amqp.EventExpenseCreated, amqp.EventExpensesCleared, amqp.EventExpensesImported}
	got := pub.types()
	if len(got) != len(want) {
		t.Fatalf("published %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestExpenseService_Close(t *testing.T) {
	t.Run("nil publisher", func(t *testing.T) {
		svc := NewExpenseService(nil, nil)
		if err := svc.Close(); err != nil {
			t.Fatalf("Close should not return error with nil components: %v", err)
		}
	})
}

func TestExpenseService_ExportToSheet(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)

	later := validDraft()
	later.Date = "2024-03-14"
	earlier := validDraft()
	earlier.Merchant = "Shell"
	earlier.Category = "transportation"
	earlier.Date = "2024-03-01"
	for _, d := range []core.Draft{later, earlier} {
		if _, err := svc.Create(ctx, d); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	sheet := sheetmem.New()
	ref, err := svc.ExportToSheet(ctx, sheet)
	if err != nil {
		t.Fatalf("ExportToSheet() error = %v", err)
	}
	if ref == "" {
		t.Error("expected a range reference")
	}
	rows := sheet.Rows()
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[1][1] != "Shell" || rows[2][1] != "Whole Foods" {
		t.Errorf("rows not sorted by date ascending: %v", rows[1:])
	}
}

func TestExpenseService_SummaryCacheInvalidatedOnChange(t *testing.T) {
	ctx := context.Background()
	clock := func() time.Time { return testNow }
	st := store.New(memory.New(), store.WithClock(clock))
	summaries := cache.NewLRUCache[query.Summary](8, time.Hour)
	svc := NewExpenseService(st, nil, WithClock(clock), WithSummaryCache(summaries))

	if _, err := svc.Create(ctx, validDraft()); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	first := svc.Summary(ctx, query.PeriodAll)
	if first.Count != 1 {
		t.Fatalf("Count = %d, want 1", first.Count)
	}
	if summaries.Size() != 1 {
		t.Errorf("expected cached summary, size = %d", summaries.Size())
	}

	// A write behind the service's back is not seen until the next change.
	st.Add(ctx, core.ExpenseRecord{ID: "exp_side", Amount: 1, Merchant: "Side", Date: "2024-03-10"})
	if got := svc.Summary(ctx, query.PeriodAll).Count; got != 1 {
		t.Errorf("cached Count = %d, want 1", got)
	}

	d := validDraft()
	d.Merchant = "Costco"
	if _, err := svc.Create(ctx, d); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if got := svc.Summary(ctx, query.PeriodAll).Count; got != 3 {
		t.Errorf("Count after change = %d, want 3", got)
	}
}

func TestExpenseService_ConcurrentCreatesKeepEveryRecord(t *testing.T) {
	ctx := context.Background()
	clock := func() time.Time { return testNow }
	st := store.New(memory.New(), store.WithClock(clock))
	svc := NewExpenseService(st, nil, WithClock(clock))

	const n = 40
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Create(ctx, validDraft()); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("create: %v", err)
	}
	if got := len(st.Load(ctx)); got != n {
		t.Fatalf("stored %d records, want %d", got, n)
	}
}
