// Package worker mirrors recorded transactions to a spreadsheet. It consumes
// the transaction events published by the HTTP service, loads each record
// from SQLite and appends one row through the sheets port.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"saveyourmoney/internal/amqp"
	"saveyourmoney/internal/core"
	"saveyourmoney/internal/sheets"
	"saveyourmoney/internal/storage"
)

type MirrorWorker struct {
	store *storage.Store
	sheet sheets.EntryAppender
}

func NewMirrorWorker(store *storage.Store, sheet sheets.EntryAppender) *MirrorWorker {
	return &MirrorWorker{store: store, sheet: sheet}
}

// Run consumes transaction events until the context is cancelled.
func (w *MirrorWorker) Run(ctx context.Context, events *amqp.Client) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return events.ConsumeTransactionEvents(ctx, func(ev *amqp.TransactionEvent) error {
			return w.HandleEvent(ctx, ev)
		})
	})
	return g.Wait()
}

// HandleEvent mirrors newly created records. Updates, deletions and restores
// are acknowledged without touching the spreadsheet: the mirror is an
// append-only log of what was recorded, not a synchronized copy.
func (w *MirrorWorker) HandleEvent(ctx context.Context, ev *amqp.TransactionEvent) error {
	if ev.Action != amqp.ActionCreated {
		slog.DebugContext(ctx, "Skipping non-create event",
			"kind", ev.Kind, "action", ev.Action, "id", ev.ID)
		return nil
	}

	if ev.Kind != "expense" && ev.Kind != "income" {
		slog.WarnContext(ctx, "Unknown event kind, dropping", "kind", ev.Kind, "id", ev.ID)
		return nil
	}

	entry, err := w.entryFor(ctx, ev)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			// The record was deleted before the worker got to it.
			slog.WarnContext(ctx, "Record gone before mirroring, dropping event",
				"kind", ev.Kind, "id", ev.ID)
			return nil
		}
		return err
	}

	ref, err := w.sheet.Append(ctx, entry)
	if err != nil {
		return fmt.Errorf("append %s %d to sheet: %w", ev.Kind, ev.ID, err)
	}

	slog.InfoContext(ctx, "Mirrored transaction",
		"kind", ev.Kind,
		"id", ev.ID,
		"sheet_ref", ref,
		"value", entry.Value)
	return nil
}

func (w *MirrorWorker) entryFor(ctx context.Context, ev *amqp.TransactionEvent) (sheets.Entry, error) {
	if ev.Kind == "expense" {
		expense, err := w.store.Expenses().Get(ctx, ev.ID)
		if err != nil {
			return sheets.Entry{}, fmt.Errorf("get expense %d: %w", ev.ID, err)
		}
		return sheets.Entry{
			Kind:       "expense",
			Name:       expense.Name,
			Value:      expense.Value,
			Month:      expense.Month,
			Year:       expense.Year,
			Category:   w.categoryName(ctx, expense.CategoryID),
			RecordedAt: ev.Timestamp,
		}, nil
	}

	income, err := w.store.Incomes().Get(ctx, ev.ID)
	if err != nil {
		return sheets.Entry{}, fmt.Errorf("get income %d: %w", ev.ID, err)
	}
	return sheets.Entry{
		Kind:       "income",
		Name:       income.Name,
		Value:      income.Value,
		Month:      income.Month,
		Year:       income.Year,
		RecordedAt: ev.Timestamp,
	}, nil
}

func (w *MirrorWorker) categoryName(ctx context.Context, id *int64) string {
	if id == nil {
		return "Sem categoria"
	}
	cat, err := w.store.Categories().Get(ctx, *id)
	if err != nil {
		slog.WarnContext(ctx, "Category lookup failed, mirroring without name",
			"category_id", *id, "error", err)
		return "Sem categoria"
	}
	return cat.Name
}
