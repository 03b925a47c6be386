package core

import "time"

// DefaultDailyLimit applies to any weekday missing from the limit table.
const DefaultDailyLimit = 234

var dailyLimits = map[time.Weekday]int{
	time.Monday:    234,
	time.Tuesday:   234,
	time.Wednesday: 234,
	time.Thursday:  234,
	time.Friday:    234,
	time.Saturday:  154,
	time.Sunday:    654,
}

// BonusOutcome tells apart the three results of a bonus computation.
type BonusOutcome int

const (
	// BonusNoData means nothing was recorded for the day.
	BonusNoData BonusOutcome = iota
	// BonusNone means the day met or exceeded its limit.
	BonusNone
	// BonusEarned means the day stayed under its limit.
	BonusEarned
)

func (o BonusOutcome) String() string {
	switch o {
	case BonusNoData:
		return "no_data"
	case BonusNone:
		return "none"
	case BonusEarned:
		return "earned"
	default:
		return "unknown"
	}
}

// BonusResult is the outcome of BonusForDay. Amount is only meaningful when
// Outcome is BonusEarned; Difference is limit minus spend for recorded days.
type BonusResult struct {
	MonthKey   string
	DayKey     string
	Outcome    BonusOutcome
	Limit      int
	Spent      int
	Difference int
	Amount     int
}

// DailyLimit returns the allowance for a weekday.
func DailyLimit(w time.Weekday) int {
	if v, ok := dailyLimits[w]; ok {
		return v
	}
	return DefaultDailyLimit
}

// DailyLimitFor returns the allowance for the calendar date of t.
func DailyLimitFor(t time.Time) int {
	return DailyLimit(t.Weekday())
}

// TodaySpend sums a day's categories, 0 when the day is absent.
func TodaySpend(l Ledger, monthKey, dayKey string) int {
	d, ok := l.Day(monthKey, dayKey)
	if !ok {
		return 0
	}
	return d.Total()
}

// MonthSpend sums every recorded day of a month.
func MonthSpend(l Ledger, monthKey string) int {
	m, ok := l.Month(monthKey)
	if !ok {
		return 0
	}
	total := 0
	for dk := range m.Days {
		total += TodaySpend(l, monthKey, dk)
	}
	return total
}

// RemainingMonth is budget minus month spend. It goes negative on overspend.
func RemainingMonth(l Ledger, monthKey string) int {
	return l.Budget(monthKey) - MonthSpend(l, monthKey)
}

// RemainingToday is the daily limit for now minus what was spent today.
func RemainingToday(l Ledger, now time.Time) int {
	return DailyLimitFor(now) - TodaySpend(l, MonthKey(now), DayKey(now))
}

// BonusForDay computes the saving of a single day. Only a positive saving is
// a bonus; a day with no record yields BonusNoData rather than a zero.
func BonusForDay(l Ledger, day time.Time) BonusResult {
	res := BonusResult{
		MonthKey: MonthKey(day),
		DayKey:   DayKey(day),
		Limit:    DailyLimitFor(day),
	}
	d, ok := l.Day(res.MonthKey, res.DayKey)
	if !ok {
		res.Outcome = BonusNoData
		return res
	}
	res.Spent = d.Total()
	res.Difference = res.Limit - res.Spent
	if res.Difference <= 0 {
		res.Outcome = BonusNone
		return res
	}
	res.Outcome = BonusEarned
	res.Amount = res.Difference
	return res
}

// Yesterday returns the same wall-clock time one calendar day earlier.
func Yesterday(now time.Time) time.Time {
	return now.AddDate(0, 0, -1)
}
