package conversation

import "dailyspend/internal/core"

// AmountSource turns one piece of user input into a non-negative amount.
type AmountSource interface {
	Amount(input string) (int, error)
}

// FixedChoice decodes a quantity (or bulk) choice against a price table.
type FixedChoice struct {
	Pricing core.Pricing
}

func (f FixedChoice) Amount(input string) (int, error) {
	return f.Pricing.Quote(input)
}

// FreeText parses a typed integer amount.
type FreeText struct {
	AllowZero bool
}

func (f FreeText) Amount(input string) (int, error) {
	if f.AllowZero {
		return core.ParseAmount(input)
	}
	return core.ParsePositiveAmount(input)
}

// sourceFor picks the amount source of a spend category.
func sourceFor(c core.Category) AmountSource {
	if c.Pricing.Fixed() {
		return FixedChoice{Pricing: c.Pricing}
	}
	return FreeText{AllowZero: true}
}
