package conversation

import "strings"

// ActionKind says how the user produced an action.
type ActionKind int

const (
	ActionCommand ActionKind = iota
	ActionButton
	ActionText
)

func (k ActionKind) String() string {
	switch k {
	case ActionCommand:
		return "command"
	case ActionButton:
		return "button"
	case ActionText:
		return "text"
	default:
		return "unknown"
	}
}

// Action is one user input, already stripped of transport details.
type Action struct {
	UserID int64
	ChatID int64
	Kind   ActionKind

	// Name and Args are set for commands, without the leading slash.
	Name string
	Args string

	// Data is the callback payload of a pressed button.
	Data string

	Text string
}

func Command(userID, chatID int64, name, args string) Action {
	return Action{UserID: userID, ChatID: chatID, Kind: ActionCommand, Name: name, Args: args}
}

func Press(userID, chatID int64, data string) Action {
	return Action{UserID: userID, ChatID: chatID, Kind: ActionButton, Data: data}
}

func Say(userID, chatID int64, text string) Action {
	return Action{UserID: userID, ChatID: chatID, Kind: ActionText, Text: text}
}

// Button is an inline keyboard button carrying callback data.
type Button struct {
	Label string
	Data  string
}

// Reply is what the machine wants shown to the user. Edit asks the
// transport to replace the message that carried the pressed button.
type Reply struct {
	Text     string
	Keyboard [][]Button
	Edit     bool
}

// Callback data prefixes.
const (
	prefixCategory       = "cat:"
	prefixQuantity       = "qty:"
	prefixDay            = "day:"
	prefixReviewCategory = "rcat:"
	prefixAction         = "act:"

	DataCancel = "cancel"
)

const (
	actDelete   = "delete"
	actEdit     = "edit"
	actClearDay = "clearday"
)

// splitData separates a callback payload into its prefix and value.
func splitData(data string) (prefix, value string) {
	i := strings.IndexByte(data, ':')
	if i < 0 {
		return data, ""
	}
	return data[:i+1], data[i+1:]
}

func cancelRow() []Button {
	return []Button{{Label: "❌ Cancel", Data: DataCancel}}
}
