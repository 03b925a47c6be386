package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"dailyspend/internal/digest"
	"dailyspend/internal/storage"
)

// ErrNoRecipient is returned when no chat has registered for the digest yet.
var ErrNoRecipient = errors.New("no digest recipient registered")

// Notifier delivers a text message to a chat.
type Notifier interface {
	Notify(ctx context.Context, chatID int64, text string) error
}

// DigestScheduler sends the daily digest once a day at a fixed local time.
// The same send path serves manual triggers.
type DigestScheduler struct {
	ledger     *LedgerService
	recipients storage.RecipientStore
	notifier   Notifier
	at         DailyTime
	checker    DailyChecker

	mu       sync.Mutex
	lastSent time.Time
}

func NewDigestScheduler(ledger *LedgerService, recipients storage.RecipientStore, notifier Notifier, at DailyTime) *DigestScheduler {
	return &DigestScheduler{
		ledger:     ledger,
		recipients: recipients,
		notifier:   notifier,
		at:         at,
	}
}

// Run blocks until ctx is done, sending the digest at every occurrence of
// the configured time.
func (s *DigestScheduler) Run(ctx context.Context) error {
	slog.InfoContext(ctx, "Digest scheduler started", "at", s.at.String(), "location", s.ledger.Location().String())
	for {
		now := s.ledger.Now()
		next := NextRun(now, s.at)
		slog.DebugContext(ctx, "Next digest scheduled", "at", next.Format(time.RFC3339))

		timer := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			slog.InfoContext(ctx, "Digest scheduler stopping", "reason", ctx.Err())
			return ctx.Err()
		case <-timer.C:
			if _, err := s.SendIfDue(ctx); err != nil {
				slog.ErrorContext(ctx, "Scheduled digest failed", "error", err)
			}
		}
	}
}

// SendIfDue sends today's digest unless it was already delivered today.
func (s *DigestScheduler) SendIfDue(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.ledger.Now()
	if !s.checker.IsDue(s.lastSent, now) {
		slog.InfoContext(ctx, "Digest already sent today, skipping", "day", now.Format("2006-01-02"))
		return false, nil
	}

	err := s.send(ctx, now)
	if errors.Is(err, ErrNoRecipient) {
		slog.WarnContext(ctx, "No recipient registered, skipping daily digest")
		return false, nil
	}
	if err != nil {
		return false, err
	}
	s.lastSent = now
	return true, nil
}

// Trigger sends the digest immediately. It does not count as the day's
// scheduled delivery.
func (s *DigestScheduler) Trigger(ctx context.Context) error {
	return s.send(ctx, s.ledger.Now())
}

// Preview renders the digest for now without sending it.
func (s *DigestScheduler) Preview(ctx context.Context) (string, error) {
	l, err := s.ledger.Snapshot(ctx)
	if err != nil {
		return "", err
	}
	return digest.BuildDaily(l, s.ledger.Now()).Render(), nil
}

func (s *DigestScheduler) send(ctx context.Context, now time.Time) error {
	chatID, ok, err := s.recipients.LoadRecipient(ctx)
	if err != nil {
		return fmt.Errorf("load recipient: %w", err)
	}
	if !ok {
		return ErrNoRecipient
	}

	l, err := s.ledger.Snapshot(ctx)
	if err != nil {
		return err
	}
	text := digest.BuildDaily(l, now).Render()

	if err := s.notifier.Notify(ctx, chatID, text); err != nil {
		return fmt.Errorf("deliver digest: %w", err)
	}
	slog.InfoContext(ctx, "Daily digest sent", "chat_id", chatID, "day", now.Format("2006-01-02"))
	return nil
}
