package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"dailyspend/internal/core"
	"dailyspend/internal/storage"
)

// EventPublisher forwards ledger events to downstream consumers.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, e core.LedgerEvent) error
}

// LedgerService serializes every load-mutate-save cycle on the ledger store
// and publishes an event for each successful mutation.
type LedgerService struct {
	store     storage.LedgerStore
	publisher EventPublisher
	clock     func() time.Time
	loc       *time.Location

	mu sync.Mutex
}

type LedgerOption func(*LedgerService)

// WithClock overrides the time source.
func WithClock(clock func() time.Time) LedgerOption {
	return func(s *LedgerService) { s.clock = clock }
}

// WithLocation sets the zone calendar keys are derived in.
func WithLocation(loc *time.Location) LedgerOption {
	return func(s *LedgerService) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// NewLedgerService wires a store and an optional publisher.
func NewLedgerService(store storage.LedgerStore, publisher EventPublisher, opts ...LedgerOption) *LedgerService {
	s := &LedgerService{
		store:     store,
		publisher: publisher,
		clock:     time.Now,
		loc:       time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SpendReceipt describes a logged spend and the metrics right after it.
type SpendReceipt struct {
	MonthKey       string
	DayKey         string
	Category       string
	Amount         int
	CategoryTotal  int
	DayTotal       int
	RemainingToday int
	RemainingMonth int
}

// Now returns the current time in the service location.
func (s *LedgerService) Now() time.Time {
	return s.clock().In(s.loc)
}

// Location returns the zone calendar keys are derived in.
func (s *LedgerService) Location() *time.Location {
	return s.loc
}

// Snapshot loads the current ledger for read-only use.
func (s *LedgerService) Snapshot(ctx context.Context) (core.Ledger, error) {
	l, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	return l, nil
}

// LogSpend accumulates amount onto today's category.
func (s *LedgerService) LogSpend(ctx context.Context, category string, amount int) (SpendReceipt, error) {
	now := s.Now()
	r := SpendReceipt{
		MonthKey: core.MonthKey(now),
		DayKey:   core.DayKey(now),
		Category: category,
		Amount:   amount,
	}
	err := s.update(ctx, func(l core.Ledger) ([]core.LedgerEvent, error) {
		total, err := l.AddSpend(r.MonthKey, r.DayKey, category, amount)
		if err != nil {
			return nil, err
		}
		r.CategoryTotal = total
		r.DayTotal = core.TodaySpend(l, r.MonthKey, r.DayKey)
		r.RemainingToday = core.RemainingToday(l, now)
		r.RemainingMonth = core.RemainingMonth(l, r.MonthKey)
		return []core.LedgerEvent{{
			Kind: core.EventSpendLogged, MonthKey: r.MonthKey, DayKey: r.DayKey,
			Category: category, Delta: amount, Value: total,
		}}, nil
	})
	if err != nil {
		return SpendReceipt{}, err
	}
	slog.InfoContext(ctx, "Spend logged",
		"month", r.MonthKey, "day", r.DayKey, "category", category,
		"amount", amount, "category_total", r.CategoryTotal)
	return r, nil
}

// SetBudget replaces the current month's budget.
func (s *LedgerService) SetBudget(ctx context.Context, amount int) (string, error) {
	mk := core.MonthKey(s.Now())
	err := s.update(ctx, func(l core.Ledger) ([]core.LedgerEvent, error) {
		prev := l.Budget(mk)
		if err := l.SetBudget(mk, amount); err != nil {
			return nil, err
		}
		return []core.LedgerEvent{{
			Kind: core.EventBudgetSet, MonthKey: mk, Delta: amount - prev, Value: amount,
		}}, nil
	})
	if err != nil {
		return "", err
	}
	slog.InfoContext(ctx, "Monthly budget set", "month", mk, "budget", amount)
	return mk, nil
}

// LogYesterdayBonus computes yesterday's saving and, when positive, adds it
// to yesterday's bonus. total is the bonus stored for the day afterwards.
func (s *LedgerService) LogYesterdayBonus(ctx context.Context) (res core.BonusResult, total int, err error) {
	y := core.Yesterday(s.Now())
	err = s.update(ctx, func(l core.Ledger) ([]core.LedgerEvent, error) {
		res = core.BonusForDay(l, y)
		if res.Outcome != core.BonusEarned {
			return nil, errNoChange
		}
		total, err = l.AddBonus(res.MonthKey, res.DayKey, res.Amount)
		if err != nil {
			return nil, err
		}
		return []core.LedgerEvent{{
			Kind: core.EventBonusLogged, MonthKey: res.MonthKey, DayKey: res.DayKey,
			Delta: res.Amount, Value: total,
		}}, nil
	})
	if err != nil {
		return core.BonusResult{}, 0, err
	}
	slog.InfoContext(ctx, "Yesterday bonus evaluated",
		"day", res.DayKey, "outcome", res.Outcome.String(), "amount", res.Amount)
	return res, total, nil
}

// AddBonus adds a manually entered bonus to today.
func (s *LedgerService) AddBonus(ctx context.Context, amount int) (int, error) {
	now := s.Now()
	mk, dk := core.MonthKey(now), core.DayKey(now)
	var total int
	err := s.update(ctx, func(l core.Ledger) ([]core.LedgerEvent, error) {
		var err error
		total, err = l.AddBonus(mk, dk, amount)
		if err != nil {
			return nil, err
		}
		return []core.LedgerEvent{{
			Kind: core.EventBonusLogged, MonthKey: mk, DayKey: dk, Delta: amount, Value: total,
		}}, nil
	})
	if err != nil {
		return 0, err
	}
	slog.InfoContext(ctx, "Manual bonus logged", "day", dk, "amount", amount, "total", total)
	return total, nil
}

// DeleteCategory removes one category from a recorded day.
func (s *LedgerService) DeleteCategory(ctx context.Context, dayKey, category string) error {
	mk, err := core.MonthOfDay(dayKey)
	if err != nil {
		return err
	}
	return s.update(ctx, func(l core.Ledger) ([]core.LedgerEvent, error) {
		day, ok := l.Day(mk, dayKey)
		if !ok {
			return nil, fmt.Errorf("day %s: %w", dayKey, core.ErrNotFound)
		}
		prev := day[category]
		if err := l.DeleteCategory(mk, dayKey, category); err != nil {
			return nil, err
		}
		return []core.LedgerEvent{{
			Kind: core.EventCategoryDeleted, MonthKey: mk, DayKey: dayKey,
			Category: category, Delta: -prev, Value: 0,
		}}, nil
	})
}

// EditAmount overwrites a recorded category amount.
func (s *LedgerService) EditAmount(ctx context.Context, dayKey, category string, amount int) error {
	mk, err := core.MonthOfDay(dayKey)
	if err != nil {
		return err
	}
	return s.update(ctx, func(l core.Ledger) ([]core.LedgerEvent, error) {
		day, ok := l.Day(mk, dayKey)
		if !ok {
			return nil, fmt.Errorf("day %s: %w", dayKey, core.ErrNotFound)
		}
		prev := day[category]
		if err := l.SetAmount(mk, dayKey, category, amount); err != nil {
			return nil, err
		}
		return []core.LedgerEvent{{
			Kind: core.EventAmountEdited, MonthKey: mk, DayKey: dayKey,
			Category: category, Delta: amount - prev, Value: amount,
		}}, nil
	})
}

// ClearDay removes every category of a day.
func (s *LedgerService) ClearDay(ctx context.Context, dayKey string) error {
	mk, err := core.MonthOfDay(dayKey)
	if err != nil {
		return err
	}
	return s.update(ctx, func(l core.Ledger) ([]core.LedgerEvent, error) {
		prev := core.TodaySpend(l, mk, dayKey)
		if err := l.DeleteDay(mk, dayKey); err != nil {
			return nil, err
		}
		return []core.LedgerEvent{{
			Kind: core.EventDayCleared, MonthKey: mk, DayKey: dayKey, Delta: -prev, Value: 0,
		}}, nil
	})
}

// errNoChange lets a mutation skip the save without failing the call.
var errNoChange = errors.New("no change")

// update runs one load-mutate-save cycle under the service lock. The store
// is written once and only when fn succeeds, so a failed mutation or save
// leaves the persisted ledger untouched.
func (s *LedgerService) update(ctx context.Context, fn func(core.Ledger) ([]core.LedgerEvent, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}

	events, err := fn(l)
	if errors.Is(err, errNoChange) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := s.store.Save(ctx, l); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}

	s.publish(ctx, events)
	return nil
}

func (s *LedgerService) publish(ctx context.Context, events []core.LedgerEvent) {
	if s.publisher == nil {
		return
	}
	for _, e := range events {
		e.ID = uuid.NewString()
		e.OccurredAt = s.clock().UTC()
		if err := s.publisher.PublishLedgerEvent(ctx, e); err != nil {
			// The ledger is already saved; mirroring is best effort.
			slog.ErrorContext(ctx, "Failed to publish ledger event",
				"kind", e.Kind, "day", e.DayKey, "error", err)
		}
	}
}

// Close releases the store and publisher when they hold resources.
func (s *LedgerService) Close() error {
	var errs []error

	if c, ok := s.store.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if c, ok := s.publisher.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %v", errs)
	}
	return nil
}
