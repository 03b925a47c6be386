package worker

import (
	"context"
	"errors"
	"testing"

	"dailyspend/internal/amqp"
	"dailyspend/internal/core"
	"dailyspend/internal/sheets/memory"
)

type failingMirror struct {
	*memory.Store
	appendErr error
}

func (m *failingMirror) AppendEvent(ctx context.Context, e core.LedgerEvent) (string, error) {
	if m.appendErr != nil {
		return "", m.appendErr
	}
	return m.Store.AppendEvent(ctx, e)
}

func event(id string) *amqp.LedgerEventMessage {
	return amqp.NewLedgerEventMessage(core.LedgerEvent{
		ID: id, Kind: core.EventSpendLogged, MonthKey: "2024-06", DayKey: "2024-06-03",
		Category: "coke", Delta: 20, Value: 20,
	})
}

func TestHandleLedgerEventIsIdempotent(t *testing.T) {
	mirror := memory.New()
	w := NewSyncWorker(mirror)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := w.HandleLedgerEvent(ctx, event("evt-1")); err != nil {
			t.Fatalf("HandleLedgerEvent() error = %v", err)
		}
	}
	if err := w.HandleLedgerEvent(ctx, event("evt-2")); err != nil {
		t.Fatal(err)
	}
	if mirror.Len() != 2 {
		t.Fatalf("rows = %d, want 2", mirror.Len())
	}

	n, err := w.MonthSummary(ctx, "2024-06")
	if err != nil || n != 2 {
		t.Fatalf("MonthSummary() = %d, %v", n, err)
	}
}

func TestHandleLedgerEventAppendFailure(t *testing.T) {
	mirror := &failingMirror{Store: memory.New(), appendErr: errors.New("quota exceeded")}
	w := NewSyncWorker(mirror)

	if err := w.HandleLedgerEvent(context.Background(), event("evt-1")); err == nil {
		t.Fatal("expected error so the message is requeued")
	}

	mirror.appendErr = nil
	if err := w.HandleLedgerEvent(context.Background(), event("evt-1")); err != nil {
		t.Fatal(err)
	}
	if mirror.Len() != 1 {
		t.Fatalf("rows = %d, want 1", mirror.Len())
	}
}

func TestStartupCheckWithoutHeaderSupport(t *testing.T) {
	if err := NewSyncWorker(memory.New()).StartupCheck(context.Background()); err != nil {
		t.Fatal(err)
	}
}
