package core

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

const (
	MonthKeyLayout = "2006-01"
	DayKeyLayout   = "2006-01-02"

	DefaultMonthlyBudget = 11000
)

type (
	// Ledger maps a month key ("2024-06") to that month's record.
	Ledger map[string]*MonthRecord

	MonthRecord struct {
		MonthlyBudget int                  `json:"monthly_budget"`
		Days          map[string]DayRecord `json:"days"`
		Bonus         map[string]int       `json:"bonus"`
	}

	// DayRecord maps a category to the amount spent on it that day.
	DayRecord map[string]int
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrUnknownCategory = errors.New("unknown category")
	ErrInvalidKey      = errors.New("invalid ledger key")
	ErrNotFound        = errors.New("not found")
	ErrInvalidBudget   = errors.New("invalid budget")
	ErrNegativeAmount  = errors.New("negative amount")
	ErrDayOutsideMonth = errors.New("day key does not belong to month")
)

// MonthKey formats t as a ledger month key.
func MonthKey(t time.Time) string {
	return t.Format(MonthKeyLayout)
}

// DayKey formats t as a ledger day key.
func DayKey(t time.Time) string {
	return t.Format(DayKeyLayout)
}

// ParseDayKey parses a day key in loc.
func ParseDayKey(key string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DayKeyLayout, key, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return t, nil
}

// MonthOfDay returns the month key a day key belongs to.
func MonthOfDay(dayKey string) (string, error) {
	t, err := ParseDayKey(dayKey, time.UTC)
	if err != nil {
		return "", err
	}
	return MonthKey(t), nil
}

// NewMonthRecord returns an empty month with the default budget.
func NewMonthRecord() *MonthRecord {
	return &MonthRecord{
		MonthlyBudget: DefaultMonthlyBudget,
		Days:          make(map[string]DayRecord),
		Bonus:         make(map[string]int),
	}
}

// Total sums every category of the day.
func (d DayRecord) Total() int {
	total := 0
	for _, v := range d {
		total += v
	}
	return total
}

// Month returns the record for monthKey, if any.
func (l Ledger) Month(monthKey string) (*MonthRecord, bool) {
	m, ok := l[monthKey]
	return m, ok && m != nil
}

// Day returns the record for a day. ok is false when nothing was ever
// recorded for it, which is distinct from a recorded total of zero.
func (l Ledger) Day(monthKey, dayKey string) (DayRecord, bool) {
	m, ok := l.Month(monthKey)
	if !ok {
		return nil, false
	}
	d, ok := m.Days[dayKey]
	return d, ok
}

// Budget returns the month's budget, or the default when the month is absent.
func (l Ledger) Budget(monthKey string) int {
	if m, ok := l.Month(monthKey); ok && m.MonthlyBudget > 0 {
		return m.MonthlyBudget
	}
	return DefaultMonthlyBudget
}

// Bonus returns the bonus logged for a day, 0 when none.
func (l Ledger) Bonus(monthKey, dayKey string) int {
	if m, ok := l.Month(monthKey); ok {
		return m.Bonus[dayKey]
	}
	return 0
}

// EnsureMonth auto-vivifies the month container without touching siblings.
func (l Ledger) EnsureMonth(monthKey string) *MonthRecord {
	m, ok := l.Month(monthKey)
	if !ok {
		m = NewMonthRecord()
		l[monthKey] = m
	}
	m.normalize()
	return m
}

// AddSpend accumulates amount onto a category of a day and returns the new
// category total.
func (l Ledger) AddSpend(monthKey, dayKey, category string, amount int) (int, error) {
	if amount < 0 {
		return 0, ErrNegativeAmount
	}
	if category == "" {
		return 0, ErrUnknownCategory
	}
	if err := checkKeys(monthKey, dayKey); err != nil {
		return 0, err
	}
	m := l.EnsureMonth(monthKey)
	day, ok := m.Days[dayKey]
	if !ok {
		day = make(DayRecord)
		m.Days[dayKey] = day
	}
	day[category] += amount
	return day[category], nil
}

// SetBudget replaces the budget of a month.
func (l Ledger) SetBudget(monthKey string, amount int) error {
	if amount <= 0 {
		return ErrInvalidBudget
	}
	if _, err := time.Parse(MonthKeyLayout, monthKey); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidKey, monthKey)
	}
	l.EnsureMonth(monthKey).MonthlyBudget = amount
	return nil
}

// AddBonus adds to the bonus of a day and returns the new bonus total.
// Bonuses are additive: a second award for the same day never replaces the first.
func (l Ledger) AddBonus(monthKey, dayKey string, amount int) (int, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	if err := checkKeys(monthKey, dayKey); err != nil {
		return 0, err
	}
	m := l.EnsureMonth(monthKey)
	m.Bonus[dayKey] += amount
	return m.Bonus[dayKey], nil
}

// SetAmount overwrites a recorded category amount. An amount of zero removes
// the category.
func (l Ledger) SetAmount(monthKey, dayKey, category string, amount int) error {
	if amount < 0 {
		return ErrNegativeAmount
	}
	day, ok := l.Day(monthKey, dayKey)
	if !ok {
		return fmt.Errorf("day %s: %w", dayKey, ErrNotFound)
	}
	if _, ok := day[category]; !ok {
		return fmt.Errorf("category %s on %s: %w", category, dayKey, ErrNotFound)
	}
	if amount == 0 {
		return l.DeleteCategory(monthKey, dayKey, category)
	}
	day[category] = amount
	return nil
}

// DeleteCategory removes a category from a day, and the day itself once empty.
func (l Ledger) DeleteCategory(monthKey, dayKey, category string) error {
	day, ok := l.Day(monthKey, dayKey)
	if !ok {
		return fmt.Errorf("day %s: %w", dayKey, ErrNotFound)
	}
	if _, ok := day[category]; !ok {
		return fmt.Errorf("category %s on %s: %w", category, dayKey, ErrNotFound)
	}
	delete(day, category)
	if len(day) == 0 {
		delete(l[monthKey].Days, dayKey)
	}
	return nil
}

// DeleteDay removes every record of a day. Bonuses are kept.
func (l Ledger) DeleteDay(monthKey, dayKey string) error {
	if _, ok := l.Day(monthKey, dayKey); !ok {
		return fmt.Errorf("day %s: %w", dayKey, ErrNotFound)
	}
	delete(l[monthKey].Days, dayKey)
	return nil
}

// DayKeys lists the recorded days of a month in calendar order.
func (l Ledger) DayKeys(monthKey string) []string {
	m, ok := l.Month(monthKey)
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(m.Days))
	for k := range m.Days {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a deep copy.
func (l Ledger) Clone() Ledger {
	out := make(Ledger, len(l))
	for mk, m := range l {
		if m == nil {
			continue
		}
		cp := &MonthRecord{
			MonthlyBudget: m.MonthlyBudget,
			Days:          make(map[string]DayRecord, len(m.Days)),
			Bonus:         make(map[string]int, len(m.Bonus)),
		}
		for dk, d := range m.Days {
			day := make(DayRecord, len(d))
			for c, v := range d {
				day[c] = v
			}
			cp.Days[dk] = day
		}
		for dk, v := range m.Bonus {
			cp.Bonus[dk] = v
		}
		out[mk] = cp
	}
	return out
}

// Normalize fills missing containers and the default budget in place.
func (l Ledger) Normalize() {
	for mk, m := range l {
		if m == nil {
			l[mk] = NewMonthRecord()
			continue
		}
		m.normalize()
	}
}

// Validate reports the first structural problem found in the ledger.
func (l Ledger) Validate() error {
	for mk, m := range l {
		if _, err := time.Parse(MonthKeyLayout, mk); err != nil {
			return fmt.Errorf("%w: month %q", ErrInvalidKey, mk)
		}
		if m == nil {
			continue
		}
		if m.MonthlyBudget < 0 {
			return fmt.Errorf("month %s: %w", mk, ErrInvalidBudget)
		}
		for dk, d := range m.Days {
			if err := checkKeys(mk, dk); err != nil {
				return err
			}
			for c, v := range d {
				if v < 0 {
					return fmt.Errorf("%s %s: %w", dk, c, ErrNegativeAmount)
				}
			}
		}
		for dk, v := range m.Bonus {
			if err := checkKeys(mk, dk); err != nil {
				return err
			}
			if v < 0 {
				return fmt.Errorf("bonus %s: %w", dk, ErrNegativeAmount)
			}
		}
	}
	return nil
}

func (m *MonthRecord) normalize() {
	if m.MonthlyBudget <= 0 {
		m.MonthlyBudget = DefaultMonthlyBudget
	}
	if m.Days == nil {
		m.Days = make(map[string]DayRecord)
	}
	if m.Bonus == nil {
		m.Bonus = make(map[string]int)
	}
	for dk, d := range m.Days {
		if d == nil {
			m.Days[dk] = make(DayRecord)
		}
	}
}

func checkKeys(monthKey, dayKey string) error {
	mk, err := MonthOfDay(dayKey)
	if err != nil {
		return err
	}
	if mk != monthKey {
		return fmt.Errorf("%w: %s not in %s", ErrDayOutsideMonth, dayKey, monthKey)
	}
	return nil
}
