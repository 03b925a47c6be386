// Package digest turns a ledger snapshot into the daily digest, the
// dashboard and the month report. Builders are pure; rendering is plain text
// suitable for a chat message.
package digest

import (
	"fmt"
	"strings"
	"time"

	"dailyspend/internal/core"
)

const dateLayout = "Monday, 02 January 2006"

// DayBreakdown is one day's spend per category. Recorded is false when the
// ledger holds nothing for the day.
type DayBreakdown struct {
	DayKey   string
	Recorded bool
	Items    []core.CategoryAmount
	Total    int
}

// Daily is the once-a-day summary sent to the recipient.
type Daily struct {
	Date           time.Time
	Yesterday      DayBreakdown
	YesterdayBonus int
	TodayLimit     int
	Today          DayBreakdown
	TodayRemaining int
}

// Breakdown collects a day from the ledger.
func Breakdown(l core.Ledger, day time.Time) DayBreakdown {
	b := DayBreakdown{DayKey: core.DayKey(day)}
	d, ok := l.Day(core.MonthKey(day), b.DayKey)
	if !ok {
		return b
	}
	b.Recorded = true
	b.Items = core.SortedBreakdown(d)
	b.Total = d.Total()
	return b
}

// BuildDaily assembles the digest for now. Yesterday is looked up in its own
// month so the first of a month still reports the previous day.
func BuildDaily(l core.Ledger, now time.Time) Daily {
	y := core.Yesterday(now)
	today := Breakdown(l, now)
	return Daily{
		Date:           now,
		Yesterday:      Breakdown(l, y),
		YesterdayBonus: l.Bonus(core.MonthKey(y), core.DayKey(y)),
		TodayLimit:     core.DailyLimitFor(now),
		Today:          today,
		TodayRemaining: core.DailyLimitFor(now) - today.Total,
	}
}

func (d Daily) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "🌅 Good morning! %s\n\n", d.Date.Format(dateLayout))

	fmt.Fprintf(&b, "📅 Yesterday (%s)\n", d.Yesterday.DayKey)
	writeItems(&b, d.Yesterday, "No spending recorded")
	fmt.Fprintf(&b, "💸 Total: %s\n", core.FormatAmount(d.Yesterday.Total))
	fmt.Fprintf(&b, "🎉 Bonus: %s\n\n", core.FormatAmount(d.YesterdayBonus))

	b.WriteString("📆 Today\n")
	fmt.Fprintf(&b, "📏 Daily Limit: %s\n", core.FormatAmount(d.TodayLimit))
	fmt.Fprintf(&b, "💸 Spent Today: %s\n", core.FormatAmount(d.Today.Total))
	fmt.Fprintf(&b, "🟢 Left Today: %s\n", core.FormatAmount(d.TodayRemaining))
	b.WriteString("🧾 Breakdown:\n")
	writeItems(&b, d.Today, "Nothing yet")

	return strings.TrimRight(b.String(), "\n")
}

func writeItems(b *strings.Builder, d DayBreakdown, empty string) {
	if len(d.Items) == 0 {
		fmt.Fprintf(b, "- %s\n", empty)
		return
	}
	for _, it := range d.Items {
		fmt.Fprintf(b, "- %s: %s\n", core.DisplayName(it.Name), core.FormatAmount(it.Amount))
	}
}
