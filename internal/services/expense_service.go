package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"acorn/internal/amqp"
	"acorn/internal/cache"
	"acorn/internal/core"
	"acorn/internal/log"
	"acorn/internal/query"
	"acorn/internal/sheets"
	"acorn/internal/store"
)

var (
	ErrNotFound        = errors.New("expense not found")
	ErrStorage         = errors.New("storage failure")
	ErrInvalidCategory = errors.New("category id and name are required")
)

// ValidationError carries the user-facing validation messages.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "invalid expense: " + strings.Join(e.Errors, "; ")
}

// EventPublisher receives change notifications. amqp.Client implements it.
type EventPublisher interface {
	Publish(ctx context.Context, ev *amqp.ExpenseEvent) error
}

// ExpenseService orchestrates validation, the store and change events.
type ExpenseService struct {
	store     *store.Store
	publisher EventPublisher
	summaries cache.Cache[query.Summary]
	now       func() time.Time
	logger    *log.Logger
}

type Option func(*ExpenseService)

func WithClock(now func() time.Time) Option {
	return func(s *ExpenseService) { s.now = now }
}

// WithSummaryCache memoizes Summary per period until the next change made
// through this service.
func WithSummaryCache(c cache.Cache[query.Summary]) Option {
	return func(s *ExpenseService) { s.summaries = c }
}

func WithLogger(l *log.Logger) Option {
	return func(s *ExpenseService) { s.logger = l.WithComponent(log.ComponentExpense) }
}

// NewExpenseService builds a service. publisher may be nil, in which case
// no events are sent.
func NewExpenseService(st *store.Store, publisher EventPublisher, opts ...Option) *ExpenseService {
	s := &ExpenseService{
		store:     st,
		publisher: publisher,
		now:       time.Now,
		logger:    log.FromContext(context.Background()).WithComponent(log.ComponentExpense),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateResult is a stored record plus existing records that look like it.
type CreateResult struct {
	Record     core.ExpenseRecord   `json:"expense"`
	Duplicates []core.ExpenseRecord `json:"duplicates"`
}

// Create validates d, stores the resulting record and reports likely
// duplicates. Duplicates never block the insert. Any id in d is ignored.
func (s *ExpenseService) Create(ctx context.Context, d core.Draft) (CreateResult, error) {
	d.ID, d.CreatedAt = "", ""
	if res := query.Validate(d); !res.Valid {
		return CreateResult{}, &ValidationError{Errors: res.Errors}
	}

	rec := query.BuildRecord(d, s.now())
	dups := query.FindDuplicates(s.store.Load(ctx), rec)

	if !s.store.Add(ctx, rec) {
		return CreateResult{}, fmt.Errorf("add expense %s: %w", rec.ID, ErrStorage)
	}

	log.NewStructuredLogger(s.logger).LogExpenseCreated(ctx, rec.ID, rec.Merchant, rec.Amount.Float(), rec.Category)
	if len(dups) > 0 {
		s.logger.InfoContext(ctx, "Possible duplicate expense",
			log.FieldExpenseID, rec.ID,
			log.FieldCount, len(dups))
	}

	s.publish(ctx, amqp.EventExpenseCreated, rec.ID, 0)
	return CreateResult{Record: rec, Duplicates: dups}, nil
}

// Replace overwrites every mutable field of the record with the draft's
// values. Omitted fields take the same defaults as on create.
func (s *ExpenseService) Replace(ctx context.Context, id string, d core.Draft) (core.ExpenseRecord, error) {
	if res := query.Validate(d); !res.Valid {
		return core.ExpenseRecord{}, &ValidationError{Errors: res.Errors}
	}
	built := query.BuildRecord(d, s.now())
	return s.update(ctx, id, core.PatchFromDraft(draftOf(built), built.Amount.Float()))
}

// Patch applies a partial update. The merged record must still validate.
func (s *ExpenseService) Patch(ctx context.Context, id string, p core.Patch) (core.ExpenseRecord, error) {
	current, ok := s.store.Get(ctx, id)
	if !ok {
		return core.ExpenseRecord{}, ErrNotFound
	}
	if res := query.Validate(draftOf(p.Apply(current))); !res.Valid {
		return core.ExpenseRecord{}, &ValidationError{Errors: res.Errors}
	}
	return s.update(ctx, id, p)
}

func (s *ExpenseService) update(ctx context.Context, id string, p core.Patch) (core.ExpenseRecord, error) {
	if _, ok := s.store.Get(ctx, id); !ok {
		return core.ExpenseRecord{}, ErrNotFound
	}
	if !s.store.Update(ctx, id, p) {
		return core.ExpenseRecord{}, fmt.Errorf("update expense %s: %w", id, ErrStorage)
	}
	rec, _ := s.store.Get(ctx, id)

	s.logger.InfoContext(ctx, "Expense updated",
		log.FieldExpenseID, id,
		log.FieldOperation, log.OpUpdate)
	s.publish(ctx, amqp.EventExpenseUpdated, id, 0)
	return rec, nil
}

func draftOf(r core.ExpenseRecord) core.Draft {
	return core.Draft{
		ID:            r.ID,
		Amount:        core.AmountText(strconv.FormatFloat(r.Amount.Float(), 'f', -1, 64)),
		Merchant:      r.Merchant,
		Category:      r.Category,
		Date:          r.Date,
		Notes:         r.Notes,
		PaymentMethod: r.PaymentMethod,
		IsRecurring:   r.IsRecurring,
		Frequency:     r.Frequency,
		Status:        r.Status,
		CreatedAt:     r.CreatedAt,
	}
}

func (s *ExpenseService) Get(ctx context.Context, id string) (core.ExpenseRecord, error) {
	rec, ok := s.store.Get(ctx, id)
	if !ok {
		return core.ExpenseRecord{}, ErrNotFound
	}
	return rec, nil
}

func (s *ExpenseService) Delete(ctx context.Context, id string) error {
	if _, ok := s.store.Get(ctx, id); !ok {
		return ErrNotFound
	}
	if !s.store.Delete(ctx, id) {
		return fmt.Errorf("delete expense %s: %w", id, ErrStorage)
	}
	s.publish(ctx, amqp.EventExpenseDeleted, id, 0)
	return nil
}

// Clear removes every stored expense.
func (s *ExpenseService) Clear(ctx context.Context) error {
	if !s.store.Clear(ctx) {
		return fmt.Errorf("clear expenses: %w", ErrStorage)
	}
	s.publish(ctx, amqp.EventExpensesCleared, "", 0)
	return nil
}

// ListOptions selects and orders records. Zero values mean "everything,
// newest first".
type ListOptions struct {
	Criteria query.Criteria
	Period   query.Period
	SortBy   string
	Order    string
}

func (s *ExpenseService) List(ctx context.Context, opts ListOptions) []core.ExpenseRecord {
	records := s.store.Load(ctx)
	if opts.Period != "" && opts.Period != query.PeriodAll {
		records = query.ByPeriod(records, opts.Period, s.now())
	}
	if !opts.Criteria.IsZero() {
		c := opts.Criteria
		c.Custom = s.store.LoadCustomCategories(ctx)
		records = query.Filter(records, c)
	}
	return query.Sort(records, opts.SortBy, opts.Order)
}

func (s *ExpenseService) Summary(ctx context.Context, p query.Period) query.Summary {
	if s.summaries == nil {
		return query.Summarize(s.store.Load(ctx), p, s.now(), s.store.LoadCustomCategories(ctx)...)
	}
	key := string(p)
	if sum, ok := s.summaries.Get(key); ok {
		return sum
	}
	sum := query.Summarize(s.store.Load(ctx), p, s.now(), s.store.LoadCustomCategories(ctx)...)
	s.summaries.Set(key, sum)
	return sum
}

func (s *ExpenseService) invalidate() {
	if s.summaries != nil {
		s.summaries.Purge()
	}
}

// Categories returns the built-ins followed by the custom categories.
func (s *ExpenseService) Categories(ctx context.Context) []core.Category {
	return core.MergeCategories(s.store.LoadCustomCategories(ctx))
}

func (s *ExpenseService) AddCategory(ctx context.Context, c core.CustomCategory) (core.CustomCategory, error) {
	c.ID = strings.TrimSpace(c.ID)
	c.Name = strings.TrimSpace(c.Name)
	if c.ID == "" || c.Name == "" {
		return core.CustomCategory{}, ErrInvalidCategory
	}
	if !s.store.AddCustomCategory(ctx, c) {
		return core.CustomCategory{}, fmt.Errorf("add category %s: %w", c.ID, ErrStorage)
	}
	s.invalidate()
	return c, nil
}

func (s *ExpenseService) Export(ctx context.Context) ([]byte, error) {
	data, ok := s.store.Export(ctx)
	if !ok {
		return nil, fmt.Errorf("export: %w", ErrStorage)
	}
	return data, nil
}

func (s *ExpenseService) Import(ctx context.Context, data []byte) store.ImportResult {
	res := s.store.Import(ctx, data)
	if res.Success {
		s.invalidate()
	}
	if res.Success && res.Imported > 0 {
		s.publish(ctx, amqp.EventExpensesImported, "", res.Imported)
	}
	return res
}

// ExportToSheet writes all records, sorted by date, to the spreadsheet.
func (s *ExpenseService) ExportToSheet(ctx context.Context, exp sheets.ExpenseExporter) (string, error) {
	records := query.Sort(s.store.Load(ctx), query.FieldDate, query.OrderAsc)
	ref, err := exp.ExportExpenses(ctx, records, s.store.LoadCustomCategories(ctx))
	if err != nil {
		return "", fmt.Errorf("export to sheet: %w", err)
	}
	s.logger.InfoContext(ctx, "Exported expenses to sheet",
		log.FieldOperation, log.OpExport,
		log.FieldCount, len(records),
		"range", ref)
	return ref, nil
}

func (s *ExpenseService) Usage(ctx context.Context) store.Usage {
	return s.store.Usage(ctx)
}

// Due lists the latest occurrence of each recurring series that is due
// again at the current time.
func (s *ExpenseService) Due(ctx context.Context) []core.ExpenseRecord {
	return DueRecurring(s.store.Load(ctx), s.now())
}

// publish runs after every successful change. It never fails the caller;
// the change is already stored.
func (s *ExpenseService) publish(ctx context.Context, typ amqp.EventType, id string, count int) {
	s.invalidate()
	if s.publisher == nil {
		s.logger.DebugContext(ctx, "AMQP publisher not configured, skipping event", "type", typ)
		return
	}
	if err := s.publisher.Publish(ctx, amqp.NewExpenseEvent(typ, id, count)); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish expense event",
			log.FieldError, err,
			log.FieldExpenseID, id,
			log.FieldOperation, log.OpPublish,
			"type", typ)
	}
}

// Close closes the publisher when it supports closing.
func (s *ExpenseService) Close() error {
	if c, ok := s.publisher.(interface{ Close() error }); ok && c != nil {
		if err := c.Close(); err != nil {
			return fmt.Errorf("close expense service: amqp: %w", err)
		}
	}
	return nil
}
