// Package conversation implements the chat dialogue: per-user sessions,
// the spend, bonus, budget and review flows, and the one-shot commands.
// It is transport agnostic; a dispatcher turns chat updates into Actions
// and renders the returned Replies.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"dailyspend/internal/core"
	"dailyspend/internal/digest"
	"dailyspend/internal/services"
	"dailyspend/internal/storage"
)

// Ledger is the part of the ledger service the dialogue drives.
type Ledger interface {
	Now() time.Time
	Snapshot(ctx context.Context) (core.Ledger, error)
	LogSpend(ctx context.Context, category string, amount int) (services.SpendReceipt, error)
	SetBudget(ctx context.Context, amount int) (string, error)
	LogYesterdayBonus(ctx context.Context) (core.BonusResult, int, error)
	AddBonus(ctx context.Context, amount int) (int, error)
	DeleteCategory(ctx context.Context, dayKey, category string) error
	EditAmount(ctx context.Context, dayKey, category string, amount int) error
	ClearDay(ctx context.Context, dayKey string) error
}

// Machine routes actions through the conversation states.
type Machine struct {
	ledger     Ledger
	recipients storage.RecipientStore
	sessions   *SessionStore
}

func NewMachine(ledger Ledger, recipients storage.RecipientStore, sessions *SessionStore) *Machine {
	return &Machine{ledger: ledger, recipients: recipients, sessions: sessions}
}

// Handle processes one action. The returned error is non-nil only for
// store failures; the reply then already tells the user so.
func (m *Machine) Handle(ctx context.Context, a Action) (Reply, error) {
	sess := m.sessions.Get(a.UserID)
	slog.DebugContext(ctx, "Handling action",
		"user_id", a.UserID, "kind", a.Kind.String(), "state", sess.State.String())

	switch a.Kind {
	case ActionCommand:
		return m.handleCommand(ctx, a, sess)
	case ActionButton:
		return m.handleButton(ctx, a, sess)
	default:
		return m.handleText(ctx, a, sess)
	}
}

// Sessions exposes the store so it can be registered for cleanup.
func (m *Machine) Sessions() *SessionStore {
	return m.sessions
}

func (m *Machine) handleCommand(ctx context.Context, a Action, sess Session) (Reply, error) {
	name := strings.ToLower(a.Name)
	if name == "cancel" {
		return m.cancel(a, sess), nil
	}

	// Any other command abandons the open dialogue.
	m.sessions.Clear(a.UserID)

	switch name {
	case "start":
		if err := m.recipients.SaveRecipient(ctx, a.ChatID); err != nil {
			return m.fail(ctx, a, err)
		}
		slog.InfoContext(ctx, "Digest recipient registered", "chat_id", a.ChatID)
		return Reply{Text: helpText}, nil
	case "help":
		return Reply{Text: helpText}, nil
	case "spend":
		m.begin(a.UserID, Session{State: StateCategorySelect})
		return Reply{Text: msgChooseCategory, Keyboard: categoryKeyboard()}, nil
	case "setbudget":
		return m.setBudgetCommand(ctx, a)
	case "bonus":
		return m.yesterdayBonus(ctx, a)
	case "addbonus":
		return m.addBonusCommand(ctx, a)
	case "summary":
		return m.render(ctx, a, func(l core.Ledger, now time.Time) string {
			return digest.BuildDashboard(l, now).Render()
		})
	case "report":
		return m.render(ctx, a, func(l core.Ledger, now time.Time) string {
			return digest.BuildMonthReport(l, core.MonthKey(now)).Render()
		})
	case "test9am":
		return m.render(ctx, a, func(l core.Ledger, now time.Time) string {
			return digest.BuildDaily(l, now).Render()
		})
	case "reset":
		return m.startReview(ctx, a)
	default:
		return Reply{Text: msgUnknownCommand}, nil
	}
}

func (m *Machine) handleButton(ctx context.Context, a Action, sess Session) (Reply, error) {
	if a.Data == DataCancel {
		r := m.cancel(a, sess)
		r.Edit = true
		return r, nil
	}

	prefix, value := splitData(a.Data)
	switch {
	case sess.State == StateCategorySelect && prefix == prefixCategory:
		return m.selectCategory(a, sess, value)
	case sess.State == StateQuantitySelect && prefix == prefixQuantity:
		return m.enterQuantity(ctx, a, sess, value)
	case sess.State == StateReviewDaySelect && prefix == prefixDay:
		return m.selectReviewDay(ctx, a, sess, value)
	case sess.State == StateReviewCategorySelect && prefix == prefixReviewCategory:
		return m.selectReviewCategory(ctx, a, sess, value)
	case sess.State == StateReviewCategorySelect && prefix == prefixAction && value == actClearDay:
		return m.clearDay(ctx, a, sess)
	case sess.State == StateReviewActionSelect && prefix == prefixAction:
		return m.reviewAction(ctx, a, sess, value)
	default:
		return m.expired(ctx, a, sess), nil
	}
}

func (m *Machine) handleText(ctx context.Context, a Action, sess Session) (Reply, error) {
	switch sess.State {
	case StateIdle:
		return Reply{Text: msgIdleHint}, nil
	case StateQuantitySelect:
		return m.enterQuantity(ctx, a, sess, a.Text)
	case StateCustomAmount:
		return m.enterCustomAmount(ctx, a, sess)
	case StateAwaitingBonusAmount:
		return m.commit(ctx, a, FreeText{}, a.Text,
			reprompt(msgInvalidPositive, msgEnterBonus, cancelKeyboard()), m.addBonus)
	case StateAwaitingBudgetAmount:
		return m.commit(ctx, a, FreeText{}, a.Text,
			reprompt(msgInvalidPositive, msgEnterBudget, cancelKeyboard()), m.setBudget)
	case StateReviewEditAmount:
		return m.enterEditAmount(ctx, a, sess)
	default:
		return Reply{Text: msgUseButtons}, nil
	}
}

// commit is the step every amount-collecting state ends in: decode the
// input with src, apply it to the ledger, close the dialogue. Input the
// source rejects re-prompts and leaves the session as it was.
func (m *Machine) commit(ctx context.Context, a Action, src AmountSource, input string, retry Reply,
	apply func(context.Context, int) (string, error)) (Reply, error) {
	amount, err := src.Amount(input)
	if err != nil {
		slog.DebugContext(ctx, "Rejected amount input", "user_id", a.UserID, "error", err)
		return retry, nil
	}

	text, err := apply(ctx, amount)
	if err != nil {
		return m.fail(ctx, a, err)
	}
	m.sessions.Clear(a.UserID)
	return Reply{Text: text, Edit: a.Kind == ActionButton}, nil
}

func reprompt(problem, prompt string, keyboard [][]Button) Reply {
	return Reply{Text: problem + "\n" + prompt, Keyboard: keyboard}
}

func (m *Machine) begin(userID int64, sess Session) {
	sess.StartedAt = m.ledger.Now()
	m.sessions.Put(userID, sess)
}

// advance moves an open dialogue to its next step.
func (m *Machine) advance(userID int64, sess Session) {
	m.sessions.Put(userID, sess)
}

func (m *Machine) cancel(a Action, sess Session) Reply {
	if sess.Idle() {
		return Reply{Text: msgNothingToCancel}
	}
	m.sessions.Clear(a.UserID)
	return Reply{Text: msgCancelled}
}

// expired rejects a button that does not belong to the current step. The
// session is left alone so an unrelated open dialogue survives.
func (m *Machine) expired(ctx context.Context, a Action, sess Session) Reply {
	slog.InfoContext(ctx, "Stale selection rejected",
		"user_id", a.UserID, "data", a.Data, "state", sess.State.String())
	return Reply{Text: msgExpired, Edit: a.Kind == ActionButton}
}

// fail closes the dialogue after a ledger or store error. A target that
// vanished in the meantime is reported as an expired selection.
func (m *Machine) fail(ctx context.Context, a Action, err error) (Reply, error) {
	m.sessions.Clear(a.UserID)
	if errors.Is(err, core.ErrNotFound) {
		slog.InfoContext(ctx, "Selection target no longer exists", "user_id", a.UserID, "error", err)
		return Reply{Text: msgExpired, Edit: a.Kind == ActionButton}, nil
	}
	return Reply{Text: msgFailure}, fmt.Errorf("handle %s: %w", a.Kind, err)
}

func (m *Machine) render(ctx context.Context, a Action, build func(core.Ledger, time.Time) string) (Reply, error) {
	l, err := m.ledger.Snapshot(ctx)
	if err != nil {
		return m.fail(ctx, a, err)
	}
	return Reply{Text: build(l, m.ledger.Now())}, nil
}

func (m *Machine) setBudgetCommand(ctx context.Context, a Action) (Reply, error) {
	if strings.TrimSpace(a.Args) == "" {
		m.begin(a.UserID, Session{State: StateAwaitingBudgetAmount})
		return Reply{Text: msgEnterBudget, Keyboard: cancelKeyboard()}, nil
	}
	return m.commit(ctx, a, FreeText{}, a.Args, Reply{Text: msgBudgetUsage}, m.setBudget)
}

func (m *Machine) setBudget(ctx context.Context, amount int) (string, error) {
	mk, err := m.ledger.SetBudget(ctx, amount)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("✅ Monthly budget for %s set to %s", mk, core.FormatAmount(amount)), nil
}

func (m *Machine) yesterdayBonus(ctx context.Context, a Action) (Reply, error) {
	res, total, err := m.ledger.LogYesterdayBonus(ctx)
	if err != nil {
		return m.fail(ctx, a, err)
	}
	switch res.Outcome {
	case core.BonusNoData:
		return Reply{Text: msgNoYesterday}, nil
	case core.BonusNone:
		return Reply{Text: msgNoBonus}, nil
	default:
		text := fmt.Sprintf("🎉 Saved %s yesterday. Bonus logged!", core.FormatAmount(res.Amount))
		if total != res.Amount {
			text += fmt.Sprintf("\n🎯 Bonus for %s is now %s", res.DayKey, core.FormatAmount(total))
		}
		return Reply{Text: text}, nil
	}
}

func (m *Machine) addBonusCommand(ctx context.Context, a Action) (Reply, error) {
	if strings.TrimSpace(a.Args) == "" {
		m.begin(a.UserID, Session{State: StateAwaitingBonusAmount})
		return Reply{Text: msgEnterBonus, Keyboard: cancelKeyboard()}, nil
	}
	return m.commit(ctx, a, FreeText{}, a.Args, Reply{Text: msgBonusUsage}, m.addBonus)
}

func (m *Machine) addBonus(ctx context.Context, amount int) (string, error) {
	total, err := m.ledger.AddBonus(ctx, amount)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("🎉 Bonus of %s added. Today's bonus: %s",
		core.FormatAmount(amount), core.FormatAmount(total)), nil
}
