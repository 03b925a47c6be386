package conversation

import (
	"context"
	"fmt"

	"dailyspend/internal/core"
)

// The review flow only reaches days of the current month.

func (m *Machine) startReview(ctx context.Context, a Action) (Reply, error) {
	l, err := m.ledger.Snapshot(ctx)
	if err != nil {
		return m.fail(ctx, a, err)
	}
	mk := core.MonthKey(m.ledger.Now())
	days := l.DayKeys(mk)
	if len(days) == 0 {
		return Reply{Text: msgNoReviewData}, nil
	}

	rows := make([][]Button, 0, len(days)+1)
	for _, dk := range days {
		label := fmt.Sprintf("📅 %s (%s)", dk, core.FormatAmount(core.TodaySpend(l, mk, dk)))
		rows = append(rows, []Button{{Label: label, Data: prefixDay + dk}})
	}
	rows = append(rows, cancelRow())

	m.begin(a.UserID, Session{State: StateReviewDaySelect})
	return Reply{Text: msgPickDay, Keyboard: rows}, nil
}

// reviewDay returns the selected day of the current month. ok is false
// when the key is not a recorded day of this month.
func (m *Machine) reviewDay(ctx context.Context, dayKey string) (core.DayRecord, bool, error) {
	mk, err := core.MonthOfDay(dayKey)
	if err != nil || mk != core.MonthKey(m.ledger.Now()) {
		return nil, false, nil
	}
	l, err := m.ledger.Snapshot(ctx)
	if err != nil {
		return nil, false, err
	}
	day, ok := l.Day(mk, dayKey)
	return day, ok, nil
}

func (m *Machine) selectReviewDay(ctx context.Context, a Action, sess Session, dayKey string) (Reply, error) {
	day, ok, err := m.reviewDay(ctx, dayKey)
	if err != nil {
		return m.fail(ctx, a, err)
	}
	if !ok {
		m.sessions.Clear(a.UserID)
		return Reply{Text: msgExpired, Edit: true}, nil
	}
	if len(day) == 0 {
		m.sessions.Clear(a.UserID)
		return Reply{Text: fmt.Sprintf("📭 No entries for %s.", dayKey), Edit: true}, nil
	}

	items := core.SortedBreakdown(day)
	rows := make([][]Button, 0, len(items)+2)
	for _, it := range items {
		label := fmt.Sprintf("%s: %s", core.DisplayName(it.Name), core.FormatAmount(it.Amount))
		rows = append(rows, []Button{{Label: label, Data: prefixReviewCategory + it.Name}})
	}
	rows = append(rows,
		[]Button{{Label: "🧹 Clear whole day", Data: prefixAction + actClearDay}},
		cancelRow())

	sess.State = StateReviewCategorySelect
	sess.DayKey = dayKey
	m.advance(a.UserID, sess)
	return Reply{Text: fmt.Sprintf("📅 %s: pick an entry", dayKey), Keyboard: rows, Edit: true}, nil
}

func (m *Machine) selectReviewCategory(ctx context.Context, a Action, sess Session, category string) (Reply, error) {
	day, ok, err := m.reviewDay(ctx, sess.DayKey)
	if err != nil {
		return m.fail(ctx, a, err)
	}
	if _, found := day[category]; !ok || !found {
		m.sessions.Clear(a.UserID)
		return Reply{Text: msgExpired, Edit: true}, nil
	}

	sess.State = StateReviewActionSelect
	sess.Category = category
	m.advance(a.UserID, sess)
	actions := [][]Button{
		{{Label: "🗑 Delete", Data: prefixAction + actDelete}, {Label: "✏️ Edit amount", Data: prefixAction + actEdit}},
		cancelRow(),
	}
	text := fmt.Sprintf(msgPickAction, core.DisplayName(category), sess.DayKey)
	return Reply{Text: text, Keyboard: actions, Edit: true}, nil
}

func (m *Machine) reviewAction(ctx context.Context, a Action, sess Session, act string) (Reply, error) {
	switch act {
	case actDelete:
		if err := m.ledger.DeleteCategory(ctx, sess.DayKey, sess.Category); err != nil {
			return m.fail(ctx, a, err)
		}
		m.sessions.Clear(a.UserID)
		return Reply{Text: removedText(sess), Edit: true}, nil
	case actEdit:
		sess.State = StateReviewEditAmount
		m.advance(a.UserID, sess)
		return Reply{Text: editPrompt(sess), Keyboard: cancelKeyboard(), Edit: true}, nil
	default:
		return m.expired(ctx, a, sess), nil
	}
}

func (m *Machine) clearDay(ctx context.Context, a Action, sess Session) (Reply, error) {
	if err := m.ledger.ClearDay(ctx, sess.DayKey); err != nil {
		return m.fail(ctx, a, err)
	}
	m.sessions.Clear(a.UserID)
	return Reply{Text: fmt.Sprintf("🧹 Cleared data for %s", sess.DayKey), Edit: true}, nil
}

func (m *Machine) enterEditAmount(ctx context.Context, a Action, sess Session) (Reply, error) {
	return m.commit(ctx, a, FreeText{AllowZero: true}, a.Text,
		reprompt(msgInvalidAmount, editPrompt(sess), cancelKeyboard()),
		func(ctx context.Context, amount int) (string, error) {
			if err := m.ledger.EditAmount(ctx, sess.DayKey, sess.Category, amount); err != nil {
				return "", err
			}
			if amount == 0 {
				return removedText(sess), nil
			}
			return fmt.Sprintf("✏️ %s on %s is now %s",
				core.DisplayName(sess.Category), sess.DayKey, core.FormatAmount(amount)), nil
		})
}

func editPrompt(sess Session) string {
	return fmt.Sprintf("✏️ Enter the new amount for %s on %s (0 removes it):", core.DisplayName(sess.Category), sess.DayKey)
}

func removedText(sess Session) string {
	return fmt.Sprintf("🗑 Removed %s from %s", core.DisplayName(sess.Category), sess.DayKey)
}
