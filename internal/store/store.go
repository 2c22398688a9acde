// Package store persists expense records and custom categories as JSON
// documents behind a storage.KeyValue.
//
// Every operation reports failure through its return value and the
// component logger; no storage error escapes to the caller.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"time"

	"acorn/internal/core"
	"acorn/internal/log"
	"acorn/internal/storage"
)

const (
	ExpensesKey         = "ominous_acorn_expenses"
	CustomCategoriesKey = "ominous_acorn_custom_categories"
	SchemaVersion       = "1.0.0"

	// DefaultCapacity is the informational quota reported by Usage.
	DefaultCapacity = 5 * 1024 * 1024
)

type Store struct {
	// mu serializes read-modify-write cycles within the process.
	mu       sync.Mutex
	kv       storage.KeyValue
	now      func() time.Time
	logger   *log.Logger
	capacity int
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l.WithComponent(log.ComponentStore) }
}

func WithCapacity(bytes int) Option {
	return func(s *Store) {
		if bytes > 0 {
			s.capacity = bytes
		}
	}
}

func New(kv storage.KeyValue, opts ...Option) *Store {
	s := &Store{
		kv:       kv,
		now:      time.Now,
		logger:   log.FromContext(context.Background()).WithComponent(log.ComponentStore),
		capacity: DefaultCapacity,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type document struct {
	Version     string               `json:"version"`
	Expenses    []core.ExpenseRecord `json:"expenses"`
	LastUpdated string               `json:"lastUpdated"`
}

type rawDocument struct {
	Expenses json.RawMessage `json:"expenses"`
}

// Load returns every stored record. Missing or unreadable data yields an
// empty slice.
func (s *Store) Load(ctx context.Context) []core.ExpenseRecord {
	records, _ := s.load(ctx)
	return records
}

// load tells a storage failure apart from missing or corrupt data. Only the
// former returns an error; the latter yields an empty, writable collection.
func (s *Store) load(ctx context.Context) ([]core.ExpenseRecord, error) {
	raw, ok, err := s.get(ctx, ExpensesKey)
	if err != nil {
		return []core.ExpenseRecord{}, err
	}
	if !ok {
		return []core.ExpenseRecord{}, nil
	}

	records, err := decodeExpenses([]byte(raw))
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to decode expenses",
			log.FieldError, err,
			log.FieldStorageKey, ExpensesKey,
			log.FieldOperation, log.OpRead)
		return []core.ExpenseRecord{}, nil
	}
	return records, nil
}

// decodeExpenses reads the expenses array of a stored document. A document
// without an array under "expenses" holds no records.
func decodeExpenses(data []byte) ([]core.ExpenseRecord, error) {
	var doc rawDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if !isArray(doc.Expenses) {
		return []core.ExpenseRecord{}, nil
	}
	records := []core.ExpenseRecord{}
	if err := json.Unmarshal(doc.Expenses, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func isArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}

// Save replaces the stored collection in a single write.
func (s *Store) Save(ctx context.Context, records []core.ExpenseRecord) bool {
	if records == nil {
		records = []core.ExpenseRecord{}
	}
	doc := document{
		Version:     SchemaVersion,
		Expenses:    records,
		LastUpdated: core.FormatTimestamp(s.now()),
	}
	return s.setJSON(ctx, ExpensesKey, doc)
}

// Add appends record. Nothing is written when the stored collection could
// not be read.
func (s *Store) Add(ctx context.Context, record core.ExpenseRecord) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx)
	if err != nil {
		return false
	}
	return s.Save(ctx, append(records, record))
}

// Update merges patch into the record with the given id and refreshes its
// updatedAt. It reports false when no record has that id.
func (s *Store) Update(ctx context.Context, id string, patch core.Patch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx)
	if err != nil {
		return false
	}
	for i := range records {
		if records[i].ID != id {
			continue
		}
		updated := patch.Apply(records[i])
		updated.UpdatedAt = core.FormatTimestamp(s.now())
		records[i] = updated
		return s.Save(ctx, records)
	}
	s.logger.WarnContext(ctx, "Expense not found for update",
		log.FieldExpenseID, id,
		log.FieldOperation, log.OpUpdate)
	return false
}

// Delete removes the record with the given id. The collection is saved even
// when no record matched, but not when it could not be read.
func (s *Store) Delete(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx)
	if err != nil {
		return false
	}
	kept := records[:0]
	for _, r := range records {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	return s.Save(ctx, kept)
}

func (s *Store) Get(ctx context.Context, id string) (core.ExpenseRecord, bool) {
	for _, r := range s.Load(ctx) {
		if r.ID == id {
			return r, true
		}
	}
	return core.ExpenseRecord{}, false
}

// Clear removes the expense document. Custom categories are kept.
func (s *Store) Clear(ctx context.Context) bool {
	if err := s.kv.Remove(ctx, ExpensesKey); err != nil {
		s.logger.ErrorContext(ctx, "Failed to clear expenses",
			log.FieldError, err,
			log.FieldStorageKey, ExpensesKey,
			log.FieldOperation, log.OpClear)
		return false
	}
	return true
}

func (s *Store) LoadCustomCategories(ctx context.Context) []core.CustomCategory {
	cats, _ := s.loadCustomCategories(ctx)
	return cats
}

func (s *Store) loadCustomCategories(ctx context.Context) ([]core.CustomCategory, error) {
	raw, ok, err := s.get(ctx, CustomCategoriesKey)
	if err != nil {
		return []core.CustomCategory{}, err
	}
	if !ok {
		return []core.CustomCategory{}, nil
	}
	cats := []core.CustomCategory{}
	if err := json.Unmarshal([]byte(raw), &cats); err != nil {
		s.logger.ErrorContext(ctx, "Failed to decode custom categories",
			log.FieldError, err,
			log.FieldStorageKey, CustomCategoriesKey,
			log.FieldOperation, log.OpRead)
		return []core.CustomCategory{}, nil
	}
	return cats, nil
}

func (s *Store) SaveCustomCategories(ctx context.Context, cats []core.CustomCategory) bool {
	if cats == nil {
		cats = []core.CustomCategory{}
	}
	return s.setJSON(ctx, CustomCategoriesKey, cats)
}

// AddCustomCategory appends c to the stored custom categories. Ids are not
// checked against the built-ins or existing entries.
func (s *Store) AddCustomCategory(ctx context.Context, c core.CustomCategory) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	cats, err := s.loadCustomCategories(ctx)
	if err != nil {
		return false
	}
	return s.SaveCustomCategories(ctx, append(cats, c))
}

func (s *Store) get(ctx context.Context, key string) (string, bool, error) {
	raw, found, err := s.kv.Get(ctx, key)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to read document",
			log.FieldError, err,
			log.FieldStorageKey, key,
			log.FieldOperation, log.OpRead)
		return "", false, err
	}
	return raw, found, nil
}

func (s *Store) setJSON(ctx context.Context, key string, v any) bool {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to encode document",
			log.FieldError, err,
			log.FieldStorageKey, key)
		return false
	}
	if err := s.kv.Set(ctx, key, string(data)); err != nil {
		s.logger.ErrorContext(ctx, "Failed to write document",
			log.NewFields().WithError(err).WithStorage(key, len(data)).WithOperation(log.OpUpdate).ToSlice()...)
		return false
	}
	return true
}
