// Package worker mirrors ledger events from the message queue into the
// spreadsheet.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"dailyspend/internal/amqp"
	"dailyspend/internal/sheets"
)

// headerWriter is implemented by mirrors that lay out a header row.
type headerWriter interface {
	EnsureHeader(ctx context.Context) error
}

// SyncWorker appends every ledger event to the spreadsheet exactly once.
type SyncWorker struct {
	mirror sheets.Mirror
}

func NewSyncWorker(mirror sheets.Mirror) *SyncWorker {
	return &SyncWorker{mirror: mirror}
}

// HandleLedgerEvent processes a single ledger event message from AMQP.
// Returning an error requeues the message.
func (w *SyncWorker) HandleLedgerEvent(ctx context.Context, msg *amqp.LedgerEventMessage) error {
	slog.InfoContext(ctx, "Processing ledger event",
		"id", msg.ID,
		"kind", msg.Kind,
		"day", msg.DayKey)

	// Redelivered after a lost ack.
	seen, err := w.mirror.HasEvent(ctx, msg.ID)
	if err != nil {
		return fmt.Errorf("check mirrored event: %w", err)
	}
	if seen {
		slog.InfoContext(ctx, "Ledger event already mirrored, skipping", "id", msg.ID)
		return nil
	}

	ref, err := w.mirror.AppendEvent(ctx, msg.LedgerEvent)
	if err != nil {
		return fmt.Errorf("append to sheets: %w", err)
	}

	slog.InfoContext(ctx, "Successfully mirrored ledger event",
		"id", msg.ID,
		"sheets_ref", ref,
		"category", msg.Category,
		"delta", msg.Delta)
	return nil
}

// StartupCheck prepares the mirror before consuming starts.
func (w *SyncWorker) StartupCheck(ctx context.Context) error {
	hw, ok := w.mirror.(headerWriter)
	if !ok {
		return nil
	}
	if err := hw.EnsureHeader(ctx); err != nil {
		return fmt.Errorf("ensure sheet header: %w", err)
	}
	return nil
}

// MonthSummary logs how many events are mirrored for a month. It is used
// after startup to make gaps visible in the worker logs.
func (w *SyncWorker) MonthSummary(ctx context.Context, monthKey string) (int, error) {
	events, err := w.mirror.ListEvents(ctx, monthKey)
	if err != nil {
		return 0, fmt.Errorf("list mirrored events: %w", err)
	}
	slog.InfoContext(ctx, "Mirrored events for month", "month", monthKey, "count", len(events))
	return len(events), nil
}
