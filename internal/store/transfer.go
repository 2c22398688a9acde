package store

import (
	"context"
	"encoding/json"
	"fmt"

	"acorn/internal/core"
	"acorn/internal/log"
)

// ExportDocument is the portable backup format.
type ExportDocument struct {
	Version          string                `json:"version"`
	ExportDate       string                `json:"exportDate"`
	Expenses         []core.ExpenseRecord  `json:"expenses"`
	CustomCategories []core.CustomCategory `json:"customCategories"`
}

type ImportResult struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Imported int    `json:"imported"`
}

const msgInvalidImport = "Invalid data format: expenses array not found"

// Export renders every record and custom category as indented JSON.
func (s *Store) Export(ctx context.Context) ([]byte, bool) {
	doc := ExportDocument{
		Version:          SchemaVersion,
		ExportDate:       core.FormatTimestamp(s.now()),
		Expenses:         s.Load(ctx),
		CustomCategories: s.LoadCustomCategories(ctx),
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to export data",
			log.FieldError, err,
			log.FieldOperation, log.OpExport)
		return nil, false
	}
	return data, true
}

type importDocument struct {
	Expenses         json.RawMessage `json:"expenses"`
	CustomCategories json.RawMessage `json:"customCategories"`
}

// Import merges an export document into the store. Records whose id is
// already stored are skipped; custom categories are appended as given.
func (s *Store) Import(ctx context.Context, data []byte) ImportResult {
	var doc importDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return s.importFailed(ctx, err)
	}
	if !isArray(doc.Expenses) {
		return ImportResult{Message: msgInvalidImport}
	}

	var incoming []core.ExpenseRecord
	if err := json.Unmarshal(doc.Expenses, &incoming); err != nil {
		return s.importFailed(ctx, err)
	}

	var custom []core.CustomCategory
	if isArray(doc.CustomCategories) {
		if err := json.Unmarshal(doc.CustomCategories, &custom); err != nil {
			return s.importFailed(ctx, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.load(ctx)
	if err != nil {
		return s.importFailed(ctx, fmt.Errorf("could not read stored expenses: %w", err))
	}
	var stored []core.CustomCategory
	if len(custom) > 0 {
		if stored, err = s.loadCustomCategories(ctx); err != nil {
			return s.importFailed(ctx, fmt.Errorf("could not read custom categories: %w", err))
		}
	}

	seen := make(map[string]struct{}, len(existing))
	for _, r := range existing {
		seen[r.ID] = struct{}{}
	}

	added := 0
	for _, r := range incoming {
		if _, dup := seen[r.ID]; dup {
			continue
		}
		existing = append(existing, r)
		added++
	}

	if !s.Save(ctx, existing) {
		return s.importFailed(ctx, fmt.Errorf("could not save expenses"))
	}

	if len(custom) > 0 {
		if !s.SaveCustomCategories(ctx, append(stored, custom...)) {
			return s.importFailed(ctx, fmt.Errorf("could not save custom categories"))
		}
	}

	s.logger.InfoContext(ctx, "Import completed",
		log.FieldCount, added,
		log.FieldOperation, log.OpImport)

	return ImportResult{
		Success:  true,
		Message:  fmt.Sprintf("Successfully imported %d expenses", added),
		Imported: added,
	}
}

func (s *Store) importFailed(ctx context.Context, err error) ImportResult {
	s.logger.ErrorContext(ctx, "Import failed",
		log.FieldError, err,
		log.FieldOperation, log.OpImport)
	return ImportResult{Message: "Import failed: " + err.Error()}
}
