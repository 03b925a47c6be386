package conversation

import (
	"fmt"
	"strings"

	"dailyspend/internal/core"
	"dailyspend/internal/services"
)

const (
	helpText = "👋 Welcome to Budget Bot!\n\n" +
		"💼 /setbudget <amount> – Set this month's budget\n" +
		"💸 /spend – Add spending\n" +
		"🎯 /bonus – Calculate bonus from yesterday\n" +
		"➕ /addbonus – Add a bonus by hand\n" +
		"📊 /summary – Show dashboard\n" +
		"📅 /report – Full log\n" +
		"🧹 /reset – Manage logs\n" +
		"⏰ /test9am – Simulate daily push\n" +
		"❌ /cancel – Abort the current step"

	msgChooseCategory  = "🧾 Choose category:"
	msgEnterAmount     = "💰 Enter amount spent on %s:"
	msgEnterBonus      = "🎯 Enter bonus amount:"
	msgEnterBudget     = "💼 Enter this month's budget:"
	msgBudgetUsage     = "❌ Usage: /setbudget 11000"
	msgBonusUsage      = "❌ Usage: /addbonus 100"
	msgInvalidAmount   = "❌ Enter a whole number, like 120."
	msgInvalidPositive = "❌ Enter a whole number greater than zero."
	msgInvalidQuantity = "❌ Pick one of the listed quantities."
	msgUseButtons      = "👆 Please choose one of the options above, or /cancel."
	msgIdleHint        = "🤔 I didn't get that. Try /spend or /help."
	msgUnknownCommand  = "🤔 Unknown command. Try /help."
	msgCancelled       = "❌ Cancelled."
	msgNothingToCancel = "Nothing to cancel."
	msgExpired         = "⌛ That selection has expired. Start again with /spend or /reset."
	msgFailure         = "⚠️ Something went wrong, nothing was changed. Please try again."
	msgNoYesterday     = "📭 No spend record for yesterday."
	msgNoBonus         = "🛑 No bonus. Full or overspent."
	msgNoReviewData    = "📭 No data to manage this month."
	msgPickDay         = "🧹 Pick a day to manage:"
	msgPickAction      = "What should happen to %s on %s?"
)

func quantityPrompt(c core.Category) string {
	return fmt.Sprintf("How many %ss? (₹%d each)", strings.ToLower(stripEmoji(c.Label)), c.Pricing.UnitPrice)
}

func spendConfirmation(r services.SpendReceipt) string {
	return fmt.Sprintf("✅ Logged %s for %s\n📊 %s today so far\n🟢 Left today: %s\n💰 Left this month: %s",
		core.FormatAmount(r.Amount), core.DisplayName(r.Category),
		core.FormatAmount(r.DayTotal),
		core.FormatAmount(r.RemainingToday), core.FormatAmount(r.RemainingMonth))
}

// stripEmoji drops a leading icon from a catalog label.
func stripEmoji(label string) string {
	if i := strings.IndexByte(label, ' '); i >= 0 {
		return label[i+1:]
	}
	return label
}

func categoryKeyboard() [][]Button {
	var rows [][]Button
	for _, c := range core.Catalog() {
		rows = append(rows, []Button{{Label: c.Label, Data: prefixCategory + c.Name}})
	}
	return append(rows, cancelRow())
}

func quantityKeyboard(p core.Pricing) [][]Button {
	var (
		rows [][]Button
		row  []Button
		bulk []Button
	)
	for _, ch := range p.Choices() {
		b := Button{Label: ch.Label, Data: prefixQuantity + ch.Value}
		if ch.Value == core.BulkChoice {
			bulk = append(bulk, b)
			continue
		}
		row = append(row, b)
		if len(row) == 3 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	if len(bulk) > 0 {
		rows = append(rows, bulk)
	}
	return append(rows, cancelRow())
}

func cancelKeyboard() [][]Button {
	return [][]Button{cancelRow()}
}
