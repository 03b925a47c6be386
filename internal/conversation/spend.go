package conversation

import (
	"context"
	"fmt"

	"dailyspend/internal/core"
)

func (m *Machine) selectCategory(a Action, sess Session, name string) (Reply, error) {
	c, ok := core.LookupCategory(name)
	if !ok {
		return Reply{Text: msgExpired, Edit: true}, nil
	}

	sess.Category = c.Name
	sess.State = StateCustomAmount
	if c.Pricing.Fixed() {
		sess.State = StateQuantitySelect
	}
	m.advance(a.UserID, sess)
	return spendPrompt(c, true), nil
}

// spendPrompt asks for the amount of category c in the way its pricing
// expects.
func spendPrompt(c core.Category, edit bool) Reply {
	if c.Pricing.Fixed() {
		return Reply{Text: quantityPrompt(c), Keyboard: quantityKeyboard(c.Pricing), Edit: edit}
	}
	return Reply{Text: fmt.Sprintf(msgEnterAmount, c.Label), Keyboard: cancelKeyboard(), Edit: edit}
}

func (m *Machine) enterQuantity(ctx context.Context, a Action, sess Session, input string) (Reply, error) {
	c, ok := core.LookupCategory(sess.Category)
	if !ok {
		m.sessions.Clear(a.UserID)
		return Reply{Text: msgExpired, Edit: a.Kind == ActionButton}, nil
	}
	retry := spendPrompt(c, false)
	retry.Text = msgInvalidQuantity + "\n" + retry.Text
	return m.commit(ctx, a, sourceFor(c), input, retry, m.logSpend(c.Name))
}

func (m *Machine) enterCustomAmount(ctx context.Context, a Action, sess Session) (Reply, error) {
	c, ok := core.LookupCategory(sess.Category)
	if !ok {
		m.sessions.Clear(a.UserID)
		return Reply{Text: msgExpired}, nil
	}
	return m.commit(ctx, a, sourceFor(c), a.Text,
		reprompt(msgInvalidAmount, fmt.Sprintf(msgEnterAmount, c.Label), cancelKeyboard()),
		m.logSpend(c.Name))
}

func (m *Machine) logSpend(category string) func(context.Context, int) (string, error) {
	return func(ctx context.Context, amount int) (string, error) {
		r, err := m.ledger.LogSpend(ctx, category, amount)
		if err != nil {
			return "", err
		}
		return spendConfirmation(r), nil
	}
}
