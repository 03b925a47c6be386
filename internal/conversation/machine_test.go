package conversation

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"dailyspend/internal/core"
	"dailyspend/internal/services"
	"dailyspend/internal/storage"
	"dailyspend/internal/storage/memory"
)

const (
	testUser = int64(7)
	testChat = int64(70)
)

type failingStore struct {
	storage.LedgerStore
	saveErr error
}

func (s *failingStore) Save(ctx context.Context, l core.Ledger) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	return s.LedgerStore.Save(ctx, l)
}

type harness struct {
	t       *testing.T
	m       *Machine
	store   *memory.Store
	failing *failingStore
}

func newHarness(t *testing.T, now time.Time, seed core.Ledger) *harness {
	t.Helper()
	store := memory.New(seed)
	fs := &failingStore{LedgerStore: store}
	svc := services.NewLedgerService(fs, nil,
		services.WithClock(func() time.Time { return now }),
		services.WithLocation(time.UTC))
	return &harness{t: t, m: NewMachine(svc, store, NewSessionStore(16, 0)), store: store, failing: fs}
}

func (h *harness) do(a Action) Reply {
	h.t.Helper()
	r, err := h.m.Handle(context.Background(), a)
	if err != nil {
		h.t.Fatalf("Handle(%+v) error: %v", a, err)
	}
	return r
}

func (h *harness) command(name, args string) Reply { return h.do(Command(testUser, testChat, name, args)) }
func (h *harness) press(data string) Reply { return h.do(Press(testUser, testChat, data)) }
func (h *harness) say(text string) Reply { return h.do(Say(testUser, testChat, text)) }

func (h *harness) state() State {
	return h.m.Sessions().Get(testUser).State
}

func (h *harness) ledger() core.Ledger {
	h.t.Helper()
	l, err := h.store.Load(context.Background())
	if err != nil {
		h.t.Fatal(err)
	}
	return l
}

func (h *harness) wantState(want State) {
	h.t.Helper()
	if got := h.state(); got != want {
		h.t.Fatalf("state = %s, want %s", got, want)
	}
}

func wantContains(t *testing.T, r Reply, want string) {
	t.Helper()
	if !strings.Contains(r.Text, want) {
		t.Fatalf("reply %q does not contain %q", r.Text, want)
	}
}

var (
	monday   = time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)
	tuesday  = time.Date(2024, 6, 4, 10, 0, 0, 0, time.UTC)
	saturday = time.Date(2024, 6, 8, 10, 0, 0, 0, time.UTC)
)

func seeded(t *testing.T, entries map[string]map[string]int) core.Ledger {
	t.Helper()
	l := core.Ledger{}
	for dk, cats := range entries {
		for cat, amt := range cats {
			if _, err := l.AddSpend(dk[:7], dk, cat, amt); err != nil {
				t.Fatal(err)
			}
		}
	}
	return l
}

func TestSpendFixedPriceFlow(t *testing.T) {
	h := newHarness(t, monday, nil)

	wantContains(t, h.command("setbudget", "11000"), "₹11000")

	r := h.command("spend", "")
	h.wantState(StateCategorySelect)
	if len(r.Keyboard) != len(core.Catalog())+1 {
		t.Fatalf("category keyboard rows = %d", len(r.Keyboard))
	}

	r = h.press("cat:cigarette")
	h.wantState(StateQuantitySelect)
	if !r.Edit {
		t.Error("button reply should edit the message")
	}
	// 1-3, 4-6, bulk, cancel
	if len(r.Keyboard) != 4 || r.Keyboard[2][0].Data != "qty:full" {
		t.Fatalf("quantity keyboard = %+v", r.Keyboard)
	}

	r = h.press("qty:2")
	h.wantState(StateIdle)
	wantContains(t, r, "✅ Logged ₹36 for 🚬 Cigarette")
	wantContains(t, r, "Left today: ₹198")
	wantContains(t, r, "Left this month: ₹10964")

	l := h.ledger()
	if got := l["2024-06"].Days["2024-06-03"]["cigarette"]; got != 36 {
		t.Fatalf("cigarette = %d, want 36", got)
	}
	if got := core.RemainingMonth(l, "2024-06"); got != 10964 {
		t.Fatalf("RemainingMonth = %d, want 10964", got)
	}
}

func TestSpendBulkAndTypedQuantity(t *testing.T) {
	h := newHarness(t, monday, nil)

	h.command("spend", "")
	h.press("cat:cigarette")
	h.press("qty:full")

	h.command("spend", "")
	h.press("cat:coke")
	r := h.say("4")
	wantContains(t, r, msgInvalidQuantity)
	h.wantState(StateQuantitySelect)
	r = h.press("qty:full")
	wantContains(t, r, msgInvalidQuantity)
	h.wantState(StateQuantitySelect)
	h.say("3")
	h.wantState(StateIdle)

	day := h.ledger()["2024-06"].Days["2024-06-03"]
	if day["cigarette"] != 170 || day["coke"] != 60 {
		t.Fatalf("day = %v", day)
	}
}

func TestSaturdayDigestShowsFullLimit(t *testing.T) {
	h := newHarness(t, saturday, nil)

	for _, cmd := range []string{"summary", "test9am"} {
		r := h.command(cmd, "")
		wantContains(t, r, "📏 Daily Limit: ₹154")
		wantContains(t, r, "🟢 Left Today: ₹154")
	}
}

func TestOverspentYesterdayLogsNoBonus(t *testing.T) {
	h := newHarness(t, tuesday, seeded(t, map[string]map[string]int{"2024-06-03": {"fuel": 300}}))

	r := h.command("bonus", "")
	if r.Text != msgNoBonus {
		t.Fatalf("reply = %q", r.Text)
	}
	if b := h.ledger()["2024-06"].Bonus; len(b) != 0 {
		t.Fatalf("bonus = %v, want none", b)
	}
	if h.store.Saves() != 0 {
		t.Fatal("no-bonus outcome should not write the store")
	}
}

func TestYesterdayBonusAccumulates(t *testing.T) {
	h := newHarness(t, tuesday, seeded(t, map[string]map[string]int{"2024-06-03": {"breakfast": 100}}))

	wantContains(t, h.command("bonus", ""), "🎉 Saved ₹134 yesterday")
	if got := h.ledger().Bonus("2024-06", "2024-06-03"); got != 134 {
		t.Fatalf("bonus = %d, want 134", got)
	}

	wantContains(t, h.command("bonus", ""), "is now ₹268")
	if got := h.ledger().Bonus("2024-06", "2024-06-03"); got != 268 {
		t.Fatalf("bonus = %d, want 268", got)
	}
}

func TestYesterdayBonusWithoutRecord(t *testing.T) {
	h := newHarness(t, tuesday, nil)
	if r := h.command("bonus", ""); r.Text != msgNoYesterday {
		t.Fatalf("reply = %q", r.Text)
	}
}

func TestCustomAmountRepromptsOnBadInput(t *testing.T) {
	h := newHarness(t, monday, nil)

	h.command("spend", "")
	h.press("cat:breakfast")
	h.wantState(StateCustomAmount)

	for _, bad := range []string{"abc", "-5", "12.5", ""} {
		r := h.say(bad)
		wantContains(t, r, msgInvalidAmount)
		h.wantState(StateCustomAmount)
		if cat := h.m.Sessions().Get(testUser).Category; cat != "breakfast" {
			t.Fatalf("category = %q after %q", cat, bad)
		}
	}
	if h.store.Saves() != 0 {
		t.Fatal("invalid input mutated the ledger")
	}

	wantContains(t, h.say("120"), "✅ Logged ₹120 for 🍽 Breakfast")
	h.wantState(StateIdle)
	if got := h.ledger()["2024-06"].Days["2024-06-03"]["breakfast"]; got != 120 {
		t.Fatalf("breakfast = %d", got)
	}
}

func TestCancelFromEveryState(t *testing.T) {
	seed := seeded(t, map[string]map[string]int{"2024-06-03": {"coke": 20}})
	tests := []struct {
		state State
		steps []Action
	}{
		{StateCategorySelect, []Action{Command(testUser, testChat, "spend", "")}},
		{StateQuantitySelect, []Action{Command(testUser, testChat, "spend", ""), Press(testUser, testChat, "cat:coke")}},
		{StateCustomAmount, []Action{Command(testUser, testChat, "spend", ""), Press(testUser, testChat, "cat:fuel")}},
		{StateAwaitingBonusAmount, []Action{Command(testUser, testChat, "addbonus", "")}},
		{StateAwaitingBudgetAmount, []Action{Command(testUser, testChat, "setbudget", "")}},
		{StateReviewDaySelect, []Action{Command(testUser, testChat, "reset", "")}},
		{StateReviewCategorySelect, []Action{
			Command(testUser, testChat, "reset", ""), Press(testUser, testChat, "day:2024-06-03"),
		}},
		{StateReviewActionSelect, []Action{
			Command(testUser, testChat, "reset", ""), Press(testUser, testChat, "day:2024-06-03"),
			Press(testUser, testChat, "rcat:coke"),
		}},
		{StateReviewEditAmount, []Action{
			Command(testUser, testChat, "reset", ""), Press(testUser, testChat, "day:2024-06-03"),
			Press(testUser, testChat, "rcat:coke"), Press(testUser, testChat, "act:edit"),
		}},
	}
	for _, tt := range tests {
		for _, via := range []Action{Command(testUser, testChat, "cancel", ""), Press(testUser, testChat, DataCancel)} {
			t.Run(tt.state.String()+"/"+via.Kind.String(), func(t *testing.T) {
				h := newHarness(t, monday, seed)
				for _, a := range tt.steps {
					h.do(a)
				}
				h.wantState(tt.state)

				if r := h.do(via); r.Text != msgCancelled {
					t.Fatalf("reply = %q", r.Text)
				}
				h.wantState(StateIdle)
				if h.store.Saves() != 0 {
					t.Fatal("cancel mutated the ledger")
				}
			})
		}
	}
}

func TestCancelWhenIdle(t *testing.T) {
	h := newHarness(t, monday, nil)
	if r := h.command("cancel", ""); r.Text != msgNothingToCancel {
		t.Fatalf("reply = %q", r.Text)
	}
}

func TestStaleSelectionsAreRejected(t *testing.T) {
	h := newHarness(t, monday, nil)

	h.command("spend", "")
	h.press("cat:cigarette")
	h.press("qty:2")

	r := h.press("qty:2")
	if r.Text != msgExpired {
		t.Fatalf("replayed quantity reply = %q", r.Text)
	}
	if got := h.ledger()["2024-06"].Days["2024-06-03"]["cigarette"]; got != 36 {
		t.Fatalf("cigarette = %d after replay, want 36", got)
	}

	h.command("spend", "")
	if r := h.press("cat:caviar"); r.Text != msgExpired {
		t.Fatalf("unknown category reply = %q", r.Text)
	}
	// An old review button does not disturb the open spend dialogue.
	if r := h.press("day:2024-06-03"); r.Text != msgExpired {
		t.Fatalf("foreign button reply = %q", r.Text)
	}
	h.wantState(StateCategorySelect)

	h.command("reset", "")
	if r := h.press("day:2024-05-31"); r.Text != msgExpired {
		t.Fatalf("other month day reply = %q", r.Text)
	}
	h.wantState(StateIdle)
	if h.store.Saves() != 1 {
		t.Fatalf("saves = %d, want 1", h.store.Saves())
	}
}

func TestTextWhileButtonsExpected(t *testing.T) {
	h := newHarness(t, monday, nil)

	if r := h.say("hello"); r.Text != msgIdleHint {
		t.Fatalf("idle reply = %q", r.Text)
	}
	h.command("spend", "")
	if r := h.say("coke"); r.Text != msgUseButtons {
		t.Fatalf("reply = %q", r.Text)
	}
	h.wantState(StateCategorySelect)
}

func TestCommandAbandonsOpenDialogue(t *testing.T) {
	h := newHarness(t, monday, nil)
	h.command("spend", "")
	h.press("cat:fuel")
	h.command("summary", "")
	h.wantState(StateIdle)
	if r := h.say("50"); r.Text != msgIdleHint {
		t.Fatalf("reply = %q", r.Text)
	}
}

func TestReviewFlow(t *testing.T) {
	h := newHarness(t, monday, seeded(t, map[string]map[string]int{
		"2024-06-03": {"coke": 20, "cigarette": 36},
		"2024-06-01": {"fuel": 500},
		"2024-05-30": {"others": 10},
	}))

	r := h.command("reset", "")
	h.wantState(StateReviewDaySelect)
	if len(r.Keyboard) != 3 || r.Keyboard[0][0].Data != "day:2024-06-01" {
		t.Fatalf("day keyboard = %+v", r.Keyboard)
	}

	r = h.press("day:2024-06-03")
	h.wantState(StateReviewCategorySelect)
	if len(r.Keyboard) != 4 || r.Keyboard[0][0].Data != "rcat:cigarette" {
		t.Fatalf("category keyboard = %+v", r.Keyboard)
	}

	h.press("rcat:coke")
	h.wantState(StateReviewActionSelect)
	h.press("act:edit")
	h.wantState(StateReviewEditAmount)
	wantContains(t, h.say("x"), msgInvalidAmount)
	h.wantState(StateReviewEditAmount)
	wantContains(t, h.say("40"), "is now ₹40")
	h.wantState(StateIdle)

	h.command("reset", "")
	h.press("day:2024-06-03")
	h.press("rcat:cigarette")
	wantContains(t, h.press("act:delete"), "🗑 Removed 🚬 Cigarette from 2024-06-03")

	h.command("reset", "")
	h.press("day:2024-06-01")
	wantContains(t, h.press("act:clearday"), "Cleared data for 2024-06-01")

	l := h.ledger()
	if got := l["2024-06"].Days; len(got) != 1 || got["2024-06-03"]["coke"] != 40 {
		t.Fatalf("days = %v", got)
	}

	h.command("reset", "")
	h.press("day:2024-06-03")
	h.press("rcat:coke")
	h.press("act:edit")
	wantContains(t, h.say("0"), "Removed")

	if r := h.command("reset", ""); r.Text != msgNoReviewData {
		t.Fatalf("reply = %q", r.Text)
	}
	h.wantState(StateIdle)
	if _, ok := h.ledger().Day("2024-05", "2024-05-30"); !ok {
		t.Fatal("review touched another month")
	}
}

func TestReviewEmptyDay(t *testing.T) {
	seed := seeded(t, map[string]map[string]int{"2024-06-01": {"coke": 20}})
	seed["2024-06"].Days["2024-06-03"] = core.DayRecord{}
	h := newHarness(t, monday, seed)

	r := h.command("reset", "")
	if len(r.Keyboard) != 3 || r.Keyboard[1][0].Data != "day:2024-06-03" {
		t.Fatalf("day keyboard = %+v", r.Keyboard)
	}
	saves := h.store.Saves()

	wantContains(t, h.press("day:2024-06-03"), "No entries for 2024-06-03")
	h.wantState(StateIdle)

	if r := h.press("qty:1"); r.Text != msgExpired {
		t.Fatalf("reply after finished review = %q", r.Text)
	}
	if h.store.Saves() != saves {
		t.Fatalf("ledger saved %d times during review", h.store.Saves()-saves)
	}
	l := h.ledger()
	if got := l["2024-06"].Days["2024-06-01"]["coke"]; got != 20 {
		t.Fatalf("coke = %d, want 20", got)
	}
	if day, ok := l.Day("2024-06", "2024-06-03"); !ok || len(day) != 0 {
		t.Fatalf("empty day = %v, %v", day, ok)
	}
}

func TestReviewEmptyMonth(t *testing.T) {
	h := newHarness(t, monday, nil)
	if r := h.command("reset", ""); r.Text != msgNoReviewData {
		t.Fatalf("reply = %q", r.Text)
	}
	h.wantState(StateIdle)
}

func TestBudgetAndManualBonus(t *testing.T) {
	h := newHarness(t, monday, nil)

	if r := h.command("setbudget", "lots"); r.Text != msgBudgetUsage {
		t.Fatalf("reply = %q", r.Text)
	}
	h.command("setbudget", "")
	h.wantState(StateAwaitingBudgetAmount)
	wantContains(t, h.say("0"), msgInvalidPositive)
	h.wantState(StateAwaitingBudgetAmount)
	h.say("5000")
	h.wantState(StateIdle)
	if got := h.ledger().Budget("2024-06"); got != 5000 {
		t.Fatalf("budget = %d", got)
	}

	h.command("addbonus", "")
	h.wantState(StateAwaitingBonusAmount)
	wantContains(t, h.say("many"), msgInvalidPositive)
	h.wantState(StateAwaitingBonusAmount)
	h.say("50")
	wantContains(t, h.command("addbonus", "25"), "Today's bonus: ₹75")
	if got := h.ledger().Bonus("2024-06", "2024-06-03"); got != 75 {
		t.Fatalf("bonus = %d, want 75", got)
	}
}

func TestStartRegistersRecipient(t *testing.T) {
	h := newHarness(t, monday, nil)
	if r := h.command("start", ""); r.Text != helpText {
		t.Fatalf("reply = %q", r.Text)
	}
	id, ok, err := h.store.LoadRecipient(context.Background())
	if err != nil || !ok || id != testChat {
		t.Fatalf("recipient = %d, %v, %v", id, ok, err)
	}
	if r := h.command("frobnicate", ""); r.Text != msgUnknownCommand {
		t.Fatalf("reply = %q", r.Text)
	}
}

func TestReportCommand(t *testing.T) {
	h := newHarness(t, monday, nil)
	wantContains(t, h.command("report", ""), "No data yet")
	h.command("spend", "")
	h.press("cat:coke")
	h.press("qty:1")
	wantContains(t, h.command("report", ""), "Month total: ₹20 of ₹11000")
}

func TestStoreFailureClosesDialogue(t *testing.T) {
	h := newHarness(t, monday, nil)
	h.failing.saveErr = errors.New("disk full")

	h.command("spend", "")
	h.press("cat:fuel")
	r, err := h.m.Handle(context.Background(), Say(testUser, testChat, "50"))
	if err == nil {
		t.Fatal("expected error")
	}
	if r.Text != msgFailure {
		t.Fatalf("reply = %q", r.Text)
	}
	h.wantState(StateIdle)
	if _, ok := h.ledger().Day("2024-06", "2024-06-03"); ok {
		t.Fatal("failed save left data behind")
	}
}

func TestSessionsArePerUser(t *testing.T) {
	h := newHarness(t, monday, nil)
	h.command("spend", "")
	other := Press(testUser+1, testChat+1, "cat:coke")
	if r := h.do(other); r.Text != msgExpired {
		t.Fatalf("other user reply = %q", r.Text)
	}
	h.wantState(StateCategorySelect)
}
