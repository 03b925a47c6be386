package core

import "time"

// EventKind names a ledger mutation.
type EventKind string

const (
	EventSpendLogged     EventKind = "spend_logged"
	EventBudgetSet       EventKind = "budget_set"
	EventBonusLogged     EventKind = "bonus_logged"
	EventCategoryDeleted EventKind = "category_deleted"
	EventAmountEdited    EventKind = "amount_edited"
	EventDayCleared      EventKind = "day_cleared"
)

// LedgerEvent records one successful ledger mutation. Delta is the change
// applied, Value the resulting stored amount.
type LedgerEvent struct {
	ID         string    `json:"id"`
	Kind       EventKind `json:"kind"`
	MonthKey   string    `json:"month"`
	DayKey     string    `json:"day,omitempty"`
	Category   string    `json:"category,omitempty"`
	Delta      int       `json:"delta"`
	Value      int       `json:"value"`
	OccurredAt time.Time `json:"occurred_at"`
}
