package core

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// PricingKind tags how a category turns user input into an amount.
type PricingKind int

const (
	// FreeForm categories take any non-negative amount typed by the user.
	FreeForm PricingKind = iota
	// UnitPriced categories take a quantity picked from a fixed table.
	UnitPriced
)

// BulkChoice is the choice value selecting a bulk override.
const BulkChoice = "full"

type (
	Pricing struct {
		Kind        PricingKind
		UnitPrice   int
		MaxQuantity int
		Bulk        *BulkOverride
	}

	// BulkOverride replaces quantity × unit price with a fixed amount.
	BulkOverride struct {
		Label  string
		Amount int
	}

	Category struct {
		Name    string
		Label   string
		Pricing Pricing
	}

	// Choice is one selectable entry of a fixed price table.
	Choice struct {
		Label string
		Value string
	}
)

var catalog = []Category{
	{Name: "cigarette", Label: "🚬 Cigarette", Pricing: Pricing{
		Kind: UnitPriced, UnitPrice: 18, MaxQuantity: 6,
		Bulk: &BulkOverride{Label: "Full Packet", Amount: 170},
	}},
	{Name: "coke", Label: "🥤 Coke", Pricing: Pricing{Kind: UnitPriced, UnitPrice: 20, MaxQuantity: 3}},
	{Name: "breakfast", Label: "🍽 Breakfast", Pricing: Pricing{Kind: FreeForm}},
	{Name: "fuel", Label: "⛽ Fuel", Pricing: Pricing{Kind: FreeForm}},
	{Name: "others", Label: "📦 Others", Pricing: Pricing{Kind: FreeForm}},
}

// Catalog returns the selectable categories in display order.
func Catalog() []Category {
	out := make([]Category, len(catalog))
	copy(out, catalog)
	return out
}

// LookupCategory finds a catalog entry by name.
func LookupCategory(name string) (Category, bool) {
	for _, c := range catalog {
		if c.Name == name {
			return c, true
		}
	}
	return Category{}, false
}

// DisplayName returns a human label for any category, including ones that
// only exist in stored data.
func DisplayName(name string) string {
	if c, ok := LookupCategory(name); ok {
		return c.Label
	}
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

// Fixed reports whether amounts come from a quantity table.
func (p Pricing) Fixed() bool {
	return p.Kind == UnitPriced
}

// Choices lists the quantity buttons of a fixed price table.
func (p Pricing) Choices() []Choice {
	if !p.Fixed() {
		return nil
	}
	out := make([]Choice, 0, p.MaxQuantity+1)
	for q := 1; q <= p.MaxQuantity; q++ {
		out = append(out, Choice{Label: strconv.Itoa(q), Value: strconv.Itoa(q)})
	}
	if p.Bulk != nil {
		out = append(out, Choice{Label: p.Bulk.Label, Value: BulkChoice})
	}
	return out
}

// Quote decodes a choice into an amount.
func (p Pricing) Quote(choice string) (int, error) {
	if !p.Fixed() {
		return 0, fmt.Errorf("%w: category has no price table", ErrInvalidQuantity)
	}
	choice = strings.ToLower(strings.TrimSpace(choice))
	if choice == BulkChoice {
		if p.Bulk == nil {
			return 0, fmt.Errorf("%w: no bulk option", ErrInvalidQuantity)
		}
		return p.Bulk.Amount, nil
	}
	q, err := strconv.Atoi(choice)
	if err != nil || q < 1 || q > p.MaxQuantity {
		return 0, fmt.Errorf("%w: %q", ErrInvalidQuantity, choice)
	}
	return q * p.UnitPrice, nil
}

// CategoryAmount pairs a category with an amount for display.
type CategoryAmount struct {
	Name   string
	Amount int
}

// SortedBreakdown lists a day's categories in catalog order, unknown
// categories last in alphabetical order.
func SortedBreakdown(d DayRecord) []CategoryAmount {
	out := make([]CategoryAmount, 0, len(d))
	for name, amt := range d {
		out = append(out, CategoryAmount{Name: name, Amount: amt})
	}
	sort.Slice(out, func(i, j int) bool {
		ri, rj := catalogRank(out[i].Name), catalogRank(out[j].Name)
		if ri != rj {
			return ri < rj
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func catalogRank(name string) int {
	for i, c := range catalog {
		if c.Name == name {
			return i
		}
	}
	return len(catalog)
}
