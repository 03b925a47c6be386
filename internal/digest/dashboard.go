package digest

import (
	"fmt"
	"strings"
	"time"

	"dailyspend/internal/core"
)

type Dashboard struct {
	Date           time.Time
	MonthKey       string
	Budget         int
	MonthSpent     int
	MonthRemaining int
	DailyLimit     int
	Today          DayBreakdown
	TodayRemaining int
}

func BuildDashboard(l core.Ledger, now time.Time) Dashboard {
	mk := core.MonthKey(now)
	today := Breakdown(l, now)
	return Dashboard{
		Date:           now,
		MonthKey:       mk,
		Budget:         l.Budget(mk),
		MonthSpent:     core.MonthSpend(l, mk),
		MonthRemaining: core.RemainingMonth(l, mk),
		DailyLimit:     core.DailyLimitFor(now),
		Today:          today,
		TodayRemaining: core.RemainingToday(l, now),
	}
}

func (d Dashboard) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "📅 %s\n\n", d.Date.Format(dateLayout))
	fmt.Fprintf(&b, "💰 Monthly Budget: %s\n", core.FormatAmount(d.Budget))
	fmt.Fprintf(&b, "💸 Spent So Far: %s\n", core.FormatAmount(d.MonthSpent))
	fmt.Fprintf(&b, "🟢 Remaining: %s\n\n", core.FormatAmount(d.MonthRemaining))
	fmt.Fprintf(&b, "📏 Daily Limit: %s\n", core.FormatAmount(d.DailyLimit))
	fmt.Fprintf(&b, "💸 Spent Today: %s\n", core.FormatAmount(d.Today.Total))
	fmt.Fprintf(&b, "🟢 Left Today: %s\n", core.FormatAmount(d.TodayRemaining))
	b.WriteString("🧾 Breakdown:\n")
	writeItems(&b, d.Today, "Nothing yet")
	return strings.TrimRight(b.String(), "\n")
}

// MonthReport lists every recorded day of a month.
type MonthReport struct {
	MonthKey string
	Days     []DayBreakdown
	Bonus    int
	Total    int
	Budget   int
}

func BuildMonthReport(l core.Ledger, monthKey string) MonthReport {
	r := MonthReport{MonthKey: monthKey, Budget: l.Budget(monthKey)}
	m, ok := l.Month(monthKey)
	if !ok {
		return r
	}
	for _, dk := range l.DayKeys(monthKey) {
		d := m.Days[dk]
		r.Days = append(r.Days, DayBreakdown{
			DayKey:   dk,
			Recorded: true,
			Items:    core.SortedBreakdown(d),
			Total:    d.Total(),
		})
		r.Total += d.Total()
	}
	for _, v := range m.Bonus {
		r.Bonus += v
	}
	return r
}

// Empty reports whether the month has no recorded days.
func (r MonthReport) Empty() bool {
	return len(r.Days) == 0
}

func (r MonthReport) Render() string {
	if r.Empty() {
		return "📭 No data yet."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📒 Report for %s\n", r.MonthKey)
	for _, d := range r.Days {
		fmt.Fprintf(&b, "\n📅 %s\n", d.DayKey)
		writeItems(&b, d, "No spending recorded")
		fmt.Fprintf(&b, "= %s\n", core.FormatAmount(d.Total))
	}
	fmt.Fprintf(&b, "\n💸 Month total: %s of %s\n", core.FormatAmount(r.Total), core.FormatAmount(r.Budget))
	fmt.Fprintf(&b, "🎉 Bonus earned: %s", core.FormatAmount(r.Bonus))
	return b.String()
}
