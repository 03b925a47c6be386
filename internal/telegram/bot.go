package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/errgroup"

	"dailyspend/internal/conversation"
)

const (
	pollTimeout = 60
	queueSize   = 16
)

// API is the part of *tgbotapi.BotAPI the dispatcher talks to.
type API interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Handler turns one user action into a reply.
type Handler interface {
	Handle(ctx context.Context, a conversation.Action) (conversation.Reply, error)
}

// Bot long-polls Telegram and feeds every user's updates, in arrival order,
// to the conversation handler. Each user gets a worker goroutine so a slow
// reply for one chat never reorders or delays another chat's updates.
type Bot struct {
	api     API
	handler Handler

	mu      sync.Mutex
	workers map[int64]chan inbound
}

type inbound struct {
	action    conversation.Action
	messageID int
	callback  string
}

// Connect authenticates against the Bot API.
func Connect(token string) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram login: %w", err)
	}
	slog.Info("Authorized on Telegram", "account", api.Self.UserName)
	return api, nil
}

func New(api API, handler Handler) *Bot {
	return &Bot{api: api, handler: handler, workers: make(map[int64]chan inbound)}
}

// Run polls updates until ctx is cancelled, then waits for the per-user
// workers to drain their queues.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeout
	updates := b.api.GetUpdatesChan(u)

	g, gctx := errgroup.WithContext(ctx)
	defer func() {
		b.api.StopReceivingUpdates()
		b.closeWorkers()
		_ = g.Wait()
	}()

	slog.InfoContext(ctx, "Telegram dispatcher started")
	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Telegram dispatcher stopping")
			return nil
		case upd, ok := <-updates:
			if !ok {
				return nil
			}
			in, ok := toInbound(upd)
			if !ok {
				slog.DebugContext(ctx, "Ignoring update", "update_id", upd.UpdateID)
				continue
			}
			b.enqueue(gctx, g, in)
		}
	}
}

func (b *Bot) enqueue(ctx context.Context, g *errgroup.Group, in inbound) {
	b.mu.Lock()
	ch, ok := b.workers[in.action.UserID]
	if !ok {
		ch = make(chan inbound, queueSize)
		b.workers[in.action.UserID] = ch
		g.Go(func() error {
			for next := range ch {
				b.process(ctx, next)
			}
			return nil
		})
	}
	b.mu.Unlock()

	select {
	case ch <- in:
	case <-ctx.Done():
	}
}

func (b *Bot) closeWorkers() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.workers {
		close(ch)
		delete(b.workers, id)
	}
}

func (b *Bot) process(ctx context.Context, in inbound) {
	if in.callback != "" {
		if _, err := b.api.Request(tgbotapi.NewCallback(in.callback, "")); err != nil {
			slog.WarnContext(ctx, "Failed to answer callback query", "user_id", in.action.UserID, "error", err)
		}
	}

	reply, err := b.handler.Handle(ctx, in.action)
	if err != nil {
		slog.ErrorContext(ctx, "Conversation step failed",
			"user_id", in.action.UserID,
			"kind", in.action.Kind.String(),
			"error", err)
	}
	if reply.Text == "" {
		return
	}
	for _, msg := range render(in.action.ChatID, in.messageID, reply) {
		if _, err := b.api.Send(msg); err != nil {
			slog.ErrorContext(ctx, "Failed to send reply", "chat_id", in.action.ChatID, "error", err)
			return
		}
	}
}

// Notify sends a plain message. It satisfies services.Notifier.
func (b *Bot) Notify(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, part := range splitText(text, maxMessageLen) {
		if _, err := b.api.Send(tgbotapi.NewMessage(chatID, part)); err != nil {
			return fmt.Errorf("send to chat %d: %w", chatID, err)
		}
	}
	return nil
}

// toInbound maps a Telegram update onto a conversation action. Updates
// without a sender or without text are dropped.
func toInbound(upd tgbotapi.Update) (inbound, bool) {
	switch {
	case upd.CallbackQuery != nil:
		q := upd.CallbackQuery
		if q.From == nil {
			return inbound{}, false
		}
		chatID, messageID := q.From.ID, 0
		if q.Message != nil {
			if q.Message.Chat != nil {
				chatID = q.Message.Chat.ID
			}
			messageID = q.Message.MessageID
		}
		return inbound{
			action:    conversation.Press(q.From.ID, chatID, q.Data),
			messageID: messageID,
			callback:  q.ID,
		}, true

	case upd.Message != nil:
		m := upd.Message
		if m.From == nil || m.Chat == nil {
			return inbound{}, false
		}
		if m.IsCommand() {
			return inbound{action: conversation.Command(m.From.ID, m.Chat.ID, m.Command(), m.CommandArguments())}, true
		}
		if m.Text == "" {
			return inbound{}, false
		}
		return inbound{action: conversation.Say(m.From.ID, m.Chat.ID, m.Text)}, true
	}
	return inbound{}, false
}
