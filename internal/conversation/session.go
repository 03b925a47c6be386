package conversation

import (
	"strconv"
	"time"

	"dailyspend/internal/cache"
)

// State is the step a user's dialogue is waiting on.
type State int

const (
	StateIdle State = iota
	StateCategorySelect
	StateQuantitySelect
	StateCustomAmount
	StateAwaitingBonusAmount
	StateAwaitingBudgetAmount
	StateReviewDaySelect
	StateReviewCategorySelect
	StateReviewActionSelect
	StateReviewEditAmount
)

var stateNames = map[State]string{
	StateIdle:                 "idle",
	StateCategorySelect:       "category_select",
	StateQuantitySelect:       "quantity_select",
	StateCustomAmount:         "custom_amount",
	StateAwaitingBonusAmount:  "awaiting_bonus_amount",
	StateAwaitingBudgetAmount: "awaiting_budget_amount",
	StateReviewDaySelect:      "review_day_select",
	StateReviewCategorySelect: "review_category_select",
	StateReviewActionSelect:   "review_action_select",
	StateReviewEditAmount:     "review_edit_amount",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown(" + strconv.Itoa(int(s)) + ")"
}

// Session is one user's in-flight dialogue. The zero value is an idle
// session.
type Session struct {
	State     State
	Category  string
	DayKey    string
	StartedAt time.Time
}

func (s Session) Idle() bool {
	return s.State == StateIdle
}

// SessionStore keeps sessions per user. Sessions are removed when a flow
// completes or is cancelled and are never persisted; maxUsers bounds the
// store with LRU eviction and ttl (zero disables it) expires abandoned
// dialogues.
type SessionStore struct {
	sessions *cache.LRUCache[Session]
}

func NewSessionStore(maxUsers int, ttl time.Duration) *SessionStore {
	return &SessionStore{sessions: cache.NewLRUCache[Session](maxUsers, ttl)}
}

// Get returns the user's session, idle when none is stored.
func (s *SessionStore) Get(userID int64) Session {
	sess, ok := s.sessions.Get(key(userID))
	if !ok {
		return Session{}
	}
	return sess
}

func (s *SessionStore) Put(userID int64, sess Session) {
	if sess.Idle() {
		s.Clear(userID)
		return
	}
	s.sessions.Set(key(userID), sess)
}

func (s *SessionStore) Clear(userID int64) {
	s.sessions.Delete(key(userID))
}

// Len returns the number of users with an open dialogue.
func (s *SessionStore) Len() int {
	return s.sessions.Size()
}

// CleanExpired drops sessions past their TTL. It lets the store be
// registered with a cache.Manager.
func (s *SessionStore) CleanExpired() int {
	return s.sessions.CleanExpired()
}

func key(userID int64) string {
	return strconv.FormatInt(userID, 10)
}
