package memory

import (
	"context"
	"testing"

	"dailyspend/internal/core"
)

func TestMemoryStoreAppendAndList(t *testing.T) {
	s := New()
	ctx := context.Background()

	ref, err := s.AppendEvent(ctx, core.LedgerEvent{ID: "a", Kind: core.EventSpendLogged, MonthKey: "2024-06"})
	if err != nil || ref != "mem:1" {
		t.Fatalf("unexpected append: ref=%q err=%v", ref, err)
	}
	if _, err := s.AppendEvent(ctx, core.LedgerEvent{ID: "b", Kind: core.EventBudgetSet, MonthKey: "2024-07"}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AppendEvent(ctx, core.LedgerEvent{}); err == nil {
		t.Fatal("expected error for event without id")
	}

	if ok, _ := s.HasEvent(ctx, "a"); !ok {
		t.Error("HasEvent(a) = false")
	}
	if ok, _ := s.HasEvent(ctx, "zzz"); ok {
		t.Error("HasEvent(zzz) = true")
	}

	june, err := s.ListEvents(ctx, "2024-06")
	if err != nil || len(june) != 1 || june[0].ID != "a" {
		t.Fatalf("ListEvents = %+v, %v", june, err)
	}
	if s.Len() != 2 {
		t.Fatalf("Len() = %d", s.Len())
	}
}
