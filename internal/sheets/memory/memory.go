package memory

import (
	"context"
	"fmt"
	"sync"

	"acorn/internal/core"
	ports "acorn/internal/sheets"
)

// Sheet keeps the last exported snapshot in memory. It backs dry runs and
// tests.
type Sheet struct {
	mu      sync.Mutex
	rows    [][]string
	exports int
}

var _ ports.ExpenseExporter = (*Sheet)(nil)

func New() *Sheet {
	return &Sheet{}
}

// ExportExpenses replaces the stored rows and returns a synthetic range.
func (s *Sheet) ExportExpenses(ctx context.Context, records []core.ExpenseRecord, custom []core.CustomCategory) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	rows := append([][]string{ports.Header}, ports.Rows(records, custom)...)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = rows
	s.exports++
	return fmt.Sprintf("mem!A1:%d", len(rows)), nil
}

// Rows returns a copy of the last export, header included.
func (s *Sheet) Rows() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]string, len(s.rows))
	for i, r := range s.rows {
		out[i] = append([]string(nil), r...)
	}
	return out
}

// Exports reports how many times the sheet was written.
func (s *Sheet) Exports() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exports
}
