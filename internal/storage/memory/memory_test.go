package memory

import (
	"context"
	"testing"

	"dailyspend/internal/core"
)

func TestLoadReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := New(nil)

	l, err := s.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = l.AddSpend("2024-06", "2024-06-03", "coke", 20)

	again, _ := s.Load(ctx)
	if len(again) != 0 {
		t.Fatal("mutation leaked into store without Save")
	}

	if err := s.Save(ctx, l); err != nil {
		t.Fatal(err)
	}
	_, _ = l.AddSpend("2024-06", "2024-06-03", "coke", 20)

	stored, _ := s.Load(ctx)
	if got := core.TodaySpend(stored, "2024-06", "2024-06-03"); got != 20 {
		t.Fatalf("stored spend = %d, want 20", got)
	}
	if s.Saves() != 1 {
		t.Fatalf("Saves = %d", s.Saves())
	}
}

func TestRecipient(t *testing.T) {
	ctx := context.Background()
	s := New(nil)
	if _, ok, _ := s.LoadRecipient(ctx); ok {
		t.Fatal("recipient present on new store")
	}
	_ = s.SaveRecipient(ctx, 7)
	if id, ok, _ := s.LoadRecipient(ctx); !ok || id != 7 {
		t.Fatalf("recipient = %d, %v", id, ok)
	}
}
