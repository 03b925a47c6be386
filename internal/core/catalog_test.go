package core

import (
	"errors"
	"reflect"
	"testing"
)

func TestQuote(t *testing.T) {
	cig, _ := LookupCategory("cigarette")
	coke, _ := LookupCategory("coke")
	fuel, _ := LookupCategory("fuel")

	tests := []struct {
		name    string
		pricing Pricing
		choice  string
		want    int
		wantErr bool
	}{
		{"cigarette one", cig.Pricing, "1", 18, false},
		{"cigarette six", cig.Pricing, "6", 108, false},
		{"cigarette full packet", cig.Pricing, "full", 170, false},
		{"cigarette full packet upper", cig.Pricing, " FULL ", 170, false},
		{"cigarette seven", cig.Pricing, "7", 0, true},
		{"cigarette zero", cig.Pricing, "0", 0, true},
		{"coke three", coke.Pricing, "3", 60, false},
		{"coke four", coke.Pricing, "4", 0, true},
		{"coke has no bulk", coke.Pricing, "full", 0, true},
		{"free form has no table", fuel.Pricing, "1", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.pricing.Quote(tt.choice)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidQuantity) {
					t.Fatalf("err = %v, want ErrInvalidQuantity", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("Quote(%q) = %d, want %d", tt.choice, got, tt.want)
			}
		})
	}
}

func TestChoices(t *testing.T) {
	coke, _ := LookupCategory("coke")
	want := []Choice{{"1", "1"}, {"2", "2"}, {"3", "3"}}
	if got := coke.Pricing.Choices(); !reflect.DeepEqual(got, want) {
		t.Fatalf("coke choices = %v", got)
	}
	cig, _ := LookupCategory("cigarette")
	got := cig.Pricing.Choices()
	if len(got) != 7 || got[6].Value != BulkChoice {
		t.Fatalf("cigarette choices = %v", got)
	}
	others, _ := LookupCategory("others")
	if others.Pricing.Choices() != nil {
		t.Fatal("free-form category should have no choices")
	}
}

func TestSortedBreakdown(t *testing.T) {
	day := DayRecord{"zebra": 1, "fuel": 100, "coke": 20, "alpaca": 2}
	got := SortedBreakdown(day)
	names := make([]string, len(got))
	for i, ca := range got {
		names[i] = ca.Name
	}
	want := []string{"coke", "fuel", "alpaca", "zebra"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("order = %v, want %v", names, want)
	}
}

func TestDisplayName(t *testing.T) {
	if DisplayName("coke") != "🥤 Coke" {
		t.Fatalf("DisplayName(coke) = %q", DisplayName("coke"))
	}
	if DisplayName("snacks") != "Snacks" {
		t.Fatalf("DisplayName(snacks) = %q", DisplayName("snacks"))
	}
}
