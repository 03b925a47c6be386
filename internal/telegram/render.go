package telegram

import (
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"dailyspend/internal/conversation"
)

// Telegram rejects messages longer than this many characters.
const maxMessageLen = 4096

// render builds the outgoing messages for a reply. Button-driven replies
// edit the message that carried the keyboard; everything else, and any text
// too long for one message, is sent fresh with the keyboard on the last part.
func render(chatID int64, messageID int, reply conversation.Reply) []tgbotapi.Chattable {
	markup, hasKeyboard := keyboardMarkup(reply.Keyboard)

	if reply.Edit && messageID != 0 && utf8.RuneCountInString(reply.Text) <= maxMessageLen {
		if hasKeyboard {
			return []tgbotapi.Chattable{tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, reply.Text, markup)}
		}
		return []tgbotapi.Chattable{tgbotapi.NewEditMessageText(chatID, messageID, reply.Text)}
	}

	parts := splitText(reply.Text, maxMessageLen)
	out := make([]tgbotapi.Chattable, 0, len(parts))
	for i, part := range parts {
		msg := tgbotapi.NewMessage(chatID, part)
		if hasKeyboard && i == len(parts)-1 {
			msg.ReplyMarkup = markup
		}
		out = append(out, msg)
	}
	return out
}

func keyboardMarkup(rows [][]conversation.Button) (tgbotapi.InlineKeyboardMarkup, bool) {
	var out [][]tgbotapi.InlineKeyboardButton
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		buttons := make([]tgbotapi.InlineKeyboardButton, len(row))
		for i, b := range row {
			buttons[i] = tgbotapi.NewInlineKeyboardButtonData(b.Label, b.Data)
		}
		out = append(out, tgbotapi.NewInlineKeyboardRow(buttons...))
	}
	if len(out) == 0 {
		return tgbotapi.InlineKeyboardMarkup{}, false
	}
	return tgbotapi.NewInlineKeyboardMarkup(out...), true
}

// splitText cuts text into chunks of at most limit runes, preferring line
// breaks as cut points.
func splitText(text string, limit int) []string {
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var (
		parts []string
		cur   strings.Builder
		n     int
	)
	flush := func() {
		if s := strings.TrimRight(cur.String(), "\n"); s != "" {
			parts = append(parts, s)
		}
		cur.Reset()
		n = 0
	}
	for _, line := range strings.SplitAfter(text, "\n") {
		ln := utf8.RuneCountInString(line)
		if n+ln > limit {
			flush()
		}
		for ln > limit {
			head := string([]rune(line)[:limit])
			parts = append(parts, head)
			line = string([]rune(line)[limit:])
			ln -= limit
		}
		cur.WriteString(line)
		n += ln
	}
	flush()
	return parts
}
