package worker

import (
	"context"
	"fmt"
	"sync/atomic"

	"acorn/internal/amqp"
	"acorn/internal/log"
	"acorn/internal/sheets"
)

// Exporter is the part of the expense service the worker drives.
type Exporter interface {
	ExportToSheet(ctx context.Context, exp sheets.ExpenseExporter) (string, error)
}

// SyncWorker mirrors the expense collection into a spreadsheet whenever a
// change event arrives. Events carry no record body, so every sync rewrites
// the whole sheet from the store.
type SyncWorker struct {
	expenses Exporter
	sheet    sheets.ExpenseExporter
	logger   *log.Logger

	syncs    int64
	failures int64
}

func NewSyncWorker(expenses Exporter, sheet sheets.ExpenseExporter, logger *log.Logger) *SyncWorker {
	if logger == nil {
		logger = log.FromContext(context.Background())
	}
	return &SyncWorker{
		expenses: expenses,
		sheet:    sheet,
		logger:   logger.WithComponent(log.ComponentSheets),
	}
}

// HandleEvent processes a single change event from AMQP. A returned error
// makes the consumer requeue the event.
func (w *SyncWorker) HandleEvent(ctx context.Context, ev *amqp.ExpenseEvent) error {
	w.logger.InfoContext(ctx, "Processing expense event",
		"type", ev.Type,
		log.FieldExpenseID, ev.ExpenseID,
		log.FieldCount, ev.Count)

	if err := w.sync(ctx); err != nil {
		return fmt.Errorf("handle %s: %w", ev.Type, err)
	}
	return nil
}

// StartupSync exports once before consuming so the sheet reflects changes
// made while the worker was down.
func (w *SyncWorker) StartupSync(ctx context.Context) error {
	w.logger.InfoContext(ctx, "Running startup sheet sync")
	return w.sync(ctx)
}

func (w *SyncWorker) sync(ctx context.Context) error {
	rng, err := w.expenses.ExportToSheet(ctx, w.sheet)
	if err != nil {
		atomic.AddInt64(&w.failures, 1)
		w.logger.ErrorContext(ctx, "Sheet sync failed", log.FieldError, err)
		return err
	}
	atomic.AddInt64(&w.syncs, 1)
	w.logger.InfoContext(ctx, "Sheet sync complete", "range", rng)
	return nil
}

// Stats reports how many syncs succeeded and failed.
type Stats struct {
	Syncs    int64
	Failures int64
}

func (w *SyncWorker) Stats() Stats {
	return Stats{
		Syncs:    atomic.LoadInt64(&w.syncs),
		Failures: atomic.LoadInt64(&w.failures),
	}
}
