package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"finanzy/internal/amqp"
	"finanzy/internal/core"
	"finanzy/internal/log"
	"finanzy/internal/sheets"
)

// Source lists the full collection. Both remote.Collection and
// storage.Repository satisfy it.
type Source interface {
	List(ctx context.Context) ([]core.Transaction, error)
}

// ExportWorker mirrors collection changes into a spreadsheet.
type ExportWorker struct {
	source Source
	sheet  sheets.TransactionSheet
	logger *log.Logger
}

func NewExportWorker(source Source, sheet sheets.TransactionSheet, logger *log.Logger) *ExportWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &ExportWorker{source: source, sheet: sheet, logger: logger.WithComponent(log.ComponentWorker)}
}

// HandleEvent applies a single change event. It has the amqp.Handler
// signature so it can be passed straight to Client.ConsumeChanges.
func (w *ExportWorker) HandleEvent(ctx context.Context, ev amqp.TransactionEvent) error {
	w.logger.InfoContext(ctx, "Processing change event",
		log.FieldAction, string(ev.Action),
		log.FieldTransactionID, ev.ID)

	switch ev.Action {
	case amqp.ActionCreated, amqp.ActionUpdated:
		if ev.Transaction == nil {
			return fmt.Errorf("%s event %s carries no transaction", ev.Action, ev.ID)
		}
		ref, err := w.sheet.Upsert(ctx, *ev.Transaction)
		if err != nil {
			w.logger.ErrorContext(ctx, "Failed to write sheet row",
				log.FieldTransactionID, ev.ID,
				log.FieldError, err)
			return fmt.Errorf("upsert sheet row: %w", err)
		}
		w.logger.InfoContext(ctx, "Transaction exported",
			log.FieldTransactionID, ev.ID,
			"sheets_ref", ref,
			log.FieldAmountCents, ev.Transaction.Amount.Cents)
		return nil

	case amqp.ActionDeleted:
		if err := w.sheet.Remove(ctx, ev.ID); err != nil {
			return fmt.Errorf("remove sheet row: %w", err)
		}
		w.logger.InfoContext(ctx, "Transaction removed from sheet", log.FieldTransactionID, ev.ID)
		return nil

	default:
		return fmt.Errorf("unknown action %q", ev.Action)
	}
}

// Resync rewrites the whole sheet from the source. It recovers from events
// missed while the worker was down.
func (w *ExportWorker) Resync(ctx context.Context) error {
	txs, err := w.source.List(ctx)
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}
	if err := w.sheet.ReplaceAll(ctx, txs); err != nil {
		return fmt.Errorf("replace sheet: %w", err)
	}
	w.logger.InfoContext(ctx, "Sheet resynced", log.FieldCount, len(txs))
	return nil
}

// RunPeriodicResync calls Resync every interval until ctx is done. Failures
// are logged and retried on the next tick.
func (w *ExportWorker) RunPeriodicResync(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		<-ctx.Done()
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := w.Resync(ctx); err != nil && !errors.Is(err, context.Canceled) {
				w.logger.ErrorContext(ctx, "Periodic resync failed", log.FieldError, err)
			}
		}
	}
}
