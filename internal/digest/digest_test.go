package digest

import (
	"strings"
	"testing"
	"time"

	"dailyspend/internal/core"
)

func TestBuildDaily(t *testing.T) {
	// Monday 2024-06-03; yesterday was Sunday.
	now := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	l := core.Ledger{}
	_, _ = l.AddSpend("2024-06", "2024-06-02", "coke", 40)
	_, _ = l.AddSpend("2024-06", "2024-06-02", "cigarette", 170)
	_, _ = l.AddBonus("2024-06", "2024-06-02", 444)
	_, _ = l.AddSpend("2024-06", "2024-06-03", "fuel", 100)

	d := BuildDaily(l, now)

	if !d.Yesterday.Recorded || d.Yesterday.Total != 210 {
		t.Fatalf("yesterday = %+v", d.Yesterday)
	}
	if d.Yesterday.Items[0].Name != "cigarette" || d.Yesterday.Items[1].Name != "coke" {
		t.Fatalf("yesterday order = %+v", d.Yesterday.Items)
	}
	if d.YesterdayBonus != 444 {
		t.Fatalf("bonus = %d", d.YesterdayBonus)
	}
	if d.TodayLimit != 234 || d.Today.Total != 100 || d.TodayRemaining != 134 {
		t.Fatalf("today = limit %d spent %d left %d", d.TodayLimit, d.Today.Total, d.TodayRemaining)
	}

	out := d.Render()
	for _, want := range []string{
		"Monday, 03 June 2024",
		"Yesterday (2024-06-02)",
		"- 🚬 Cigarette: ₹170",
		"- 🥤 Coke: ₹40",
		"💸 Total: ₹210",
		"🎉 Bonus: ₹444",
		"📏 Daily Limit: ₹234",
		"💸 Spent Today: ₹100",
		"🟢 Left Today: ₹134",
		"- ⛽ Fuel: ₹100",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("digest missing %q:\n%s", want, out)
		}
	}
}

func TestBuildDailyEmptyLedger(t *testing.T) {
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC) // Saturday
	d := BuildDaily(core.Ledger{}, now)

	if d.Yesterday.Recorded || d.Today.Recorded {
		t.Fatal("empty ledger reported recorded days")
	}
	if d.Yesterday.DayKey != "2024-05-31" {
		t.Fatalf("yesterday key = %s", d.Yesterday.DayKey)
	}
	if d.TodayRemaining != 154 {
		t.Fatalf("remaining = %d", d.TodayRemaining)
	}
	out := d.Render()
	for _, want := range []string{"- No spending recorded", "💸 Total: ₹0", "🎉 Bonus: ₹0", "- Nothing yet"} {
		if !strings.Contains(out, want) {
			t.Errorf("digest missing %q:\n%s", want, out)
		}
	}
}

func TestBuildDailyIsDeterministic(t *testing.T) {
	now := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	l := core.Ledger{}
	for _, c := range []string{"others", "fuel", "breakfast", "coke", "cigarette", "tea"} {
		_, _ = l.AddSpend("2024-06", "2024-06-03", c, 1)
	}
	first := BuildDaily(l, now).Render()
	for i := 0; i < 20; i++ {
		if got := BuildDaily(l, now).Render(); got != first {
			t.Fatalf("render %d differs:\n%s\nvs\n%s", i, got, first)
		}
	}
}

func TestDashboard(t *testing.T) {
	now := time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC) // Saturday
	l := core.Ledger{}
	_, _ = l.AddSpend("2024-06", "2024-06-01", "breakfast", 200)

	d := BuildDashboard(l, now)
	if d.Budget != 11000 || d.MonthSpent != 200 || d.MonthRemaining != 10800 || d.TodayRemaining != -46 {
		t.Fatalf("dashboard = %+v", d)
	}
	out := d.Render()
	for _, want := range []string{"💰 Monthly Budget: ₹11000", "🟢 Left Today: -₹46", "- 🍽 Breakfast: ₹200"} {
		if !strings.Contains(out, want) {
			t.Errorf("dashboard missing %q:\n%s", want, out)
		}
	}
}

func TestMonthReport(t *testing.T) {
	l := core.Ledger{}
	if r := BuildMonthReport(l, "2024-06"); !r.Empty() || r.Render() != "📭 No data yet." {
		t.Fatalf("empty report = %+v", r)
	}
	_, _ = l.AddSpend("2024-06", "2024-06-05", "fuel", 300)
	_, _ = l.AddSpend("2024-06", "2024-06-01", "coke", 20)
	_, _ = l.AddBonus("2024-06", "2024-06-01", 214)

	r := BuildMonthReport(l, "2024-06")
	if len(r.Days) != 2 || r.Days[0].DayKey != "2024-06-01" || r.Total != 320 || r.Bonus != 214 {
		t.Fatalf("report = %+v", r)
	}
	out := r.Render()
	if !strings.Contains(out, "💸 Month total: ₹320 of ₹11000") {
		t.Fatalf("report:\n%s", out)
	}
	if strings.Index(out, "2024-06-01") > strings.Index(out, "2024-06-05") {
		t.Fatal("days not in calendar order")
	}
}
