package core

import (
	"errors"
	"testing"
	"time"
)

func TestKeys(t *testing.T) {
	ts := time.Date(2024, 6, 3, 21, 15, 0, 0, time.UTC)
	if got := MonthKey(ts); got != "2024-06" {
		t.Fatalf("MonthKey = %q", got)
	}
	if got := DayKey(ts); got != "2024-06-03" {
		t.Fatalf("DayKey = %q", got)
	}
	mk, err := MonthOfDay("2024-06-30")
	if err != nil || mk != "2024-06" {
		t.Fatalf("MonthOfDay = %q, %v", mk, err)
	}
	if _, err := MonthOfDay("2024-6-3"); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
}

func TestAddSpendAccumulates(t *testing.T) {
	l := Ledger{}
	for i := 0; i < 3; i++ {
		if _, err := l.AddSpend("2024-06", "2024-06-03", "coke", 20); err != nil {
			t.Fatalf("AddSpend: %v", err)
		}
	}
	total, err := l.AddSpend("2024-06", "2024-06-03", "cigarette", 36)
	if err != nil {
		t.Fatalf("AddSpend: %v", err)
	}
	if total != 36 {
		t.Fatalf("cigarette total = %d, want 36", total)
	}
	day, ok := l.Day("2024-06", "2024-06-03")
	if !ok {
		t.Fatal("day missing after AddSpend")
	}
	if day["coke"] != 60 {
		t.Fatalf("coke = %d, want 60", day["coke"])
	}
	if l.Budget("2024-06") != DefaultMonthlyBudget {
		t.Fatalf("auto-vivified month budget = %d", l.Budget("2024-06"))
	}
}

func TestAddSpendRejects(t *testing.T) {
	tests := []struct {
		name     string
		month    string
		day      string
		category string
		amount   int
		wantErr  error
	}{
		{"negative amount", "2024-06", "2024-06-03", "coke", -1, ErrNegativeAmount},
		{"empty category", "2024-06", "2024-06-03", "", 10, ErrUnknownCategory},
		{"day outside month", "2024-07", "2024-06-03", "coke", 10, ErrDayOutsideMonth},
		{"malformed day", "2024-06", "03-06-2024", "coke", 10, ErrInvalidKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := Ledger{}
			_, err := l.AddSpend(tt.month, tt.day, tt.category, tt.amount)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if len(l) != 0 {
				t.Fatalf("ledger mutated on error: %v", l)
			}
		})
	}
}

func TestAutoVivifyKeepsSiblings(t *testing.T) {
	l := Ledger{}
	_ = l.SetBudget("2024-05", 9000)
	_, _ = l.AddSpend("2024-05", "2024-05-31", "fuel", 300)
	_, _ = l.AddSpend("2024-06", "2024-06-01", "fuel", 100)

	if l.Budget("2024-05") != 9000 {
		t.Fatalf("sibling month budget changed: %d", l.Budget("2024-05"))
	}
	if TodaySpend(l, "2024-05", "2024-05-31") != 300 {
		t.Fatal("sibling day changed")
	}
}

func TestAddBonusIsAdditive(t *testing.T) {
	l := Ledger{}
	if _, err := l.AddBonus("2024-06", "2024-06-02", 134); err != nil {
		t.Fatal(err)
	}
	total, err := l.AddBonus("2024-06", "2024-06-02", 134)
	if err != nil {
		t.Fatal(err)
	}
	if total != 268 {
		t.Fatalf("bonus = %d, want 268", total)
	}
	if _, err := l.AddBonus("2024-06", "2024-06-02", 0); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("zero bonus err = %v", err)
	}
}

func TestSetBudget(t *testing.T) {
	l := Ledger{}
	if err := l.SetBudget("2024-06", 0); !errors.Is(err, ErrInvalidBudget) {
		t.Fatalf("zero budget err = %v", err)
	}
	if err := l.SetBudget("2024-06", 15000); err != nil {
		t.Fatal(err)
	}
	if l.Budget("2024-06") != 15000 {
		t.Fatalf("budget = %d", l.Budget("2024-06"))
	}
	if l.Budget("2030-01") != DefaultMonthlyBudget {
		t.Fatal("absent month should report default budget")
	}
}

func TestEditAndDelete(t *testing.T) {
	l := Ledger{}
	_, _ = l.AddSpend("2024-06", "2024-06-03", "coke", 40)
	_, _ = l.AddSpend("2024-06", "2024-06-03", "fuel", 100)

	if err := l.SetAmount("2024-06", "2024-06-03", "coke", 20); err != nil {
		t.Fatal(err)
	}
	if TodaySpend(l, "2024-06", "2024-06-03") != 120 {
		t.Fatalf("after edit total = %d", TodaySpend(l, "2024-06", "2024-06-03"))
	}
	if err := l.SetAmount("2024-06", "2024-06-03", "breakfast", 5); !errors.Is(err, ErrNotFound) {
		t.Fatalf("edit missing category err = %v", err)
	}
	if err := l.DeleteCategory("2024-06", "2024-06-03", "coke"); err != nil {
		t.Fatal(err)
	}
	if err := l.SetAmount("2024-06", "2024-06-03", "fuel", 0); err != nil {
		t.Fatal(err)
	}
	if _, ok := l.Day("2024-06", "2024-06-03"); ok {
		t.Fatal("empty day should be removed")
	}
	if err := l.DeleteDay("2024-06", "2024-06-03"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("DeleteDay on missing day err = %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		ledger  Ledger
		wantErr error
	}{
		{"empty", Ledger{}, nil},
		{"bad month key", Ledger{"June": NewMonthRecord()}, ErrInvalidKey},
		{"negative amount", Ledger{"2024-06": &MonthRecord{
			MonthlyBudget: 11000,
			Days:          map[string]DayRecord{"2024-06-01": {"coke": -20}},
		}}, ErrNegativeAmount},
		{"day in wrong month", Ledger{"2024-06": &MonthRecord{
			MonthlyBudget: 11000,
			Days:          map[string]DayRecord{"2024-07-01": {"coke": 20}},
		}}, ErrDayOutsideMonth},
		{"negative bonus", Ledger{"2024-06": &MonthRecord{
			MonthlyBudget: 11000,
			Bonus:         map[string]int{"2024-06-01": -3},
		}}, ErrNegativeAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ledger.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCloneIsDeep(t *testing.T) {
	l := Ledger{}
	_, _ = l.AddSpend("2024-06", "2024-06-03", "coke", 20)
	cp := l.Clone()
	_, _ = cp.AddSpend("2024-06", "2024-06-03", "coke", 20)
	if TodaySpend(l, "2024-06", "2024-06-03") != 20 {
		t.Fatal("clone shares day maps with original")
	}
}

func TestNormalize(t *testing.T) {
	l := Ledger{"2024-06": &MonthRecord{}}
	l.Normalize()
	m := l["2024-06"]
	if m.MonthlyBudget != DefaultMonthlyBudget || m.Days == nil || m.Bonus == nil {
		t.Fatalf("normalize left %+v", m)
	}
}
