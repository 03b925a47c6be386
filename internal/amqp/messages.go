package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"dailyspend/internal/core"
)

// LedgerEventMessage is the wire form of a ledger event. It carries the full
// event so consumers never read the ledger back.
type LedgerEventMessage struct {
	core.LedgerEvent
	PublishedAt time.Time `json:"published_at"`
}

func NewLedgerEventMessage(e core.LedgerEvent) *LedgerEventMessage {
	return &LedgerEventMessage{
		LedgerEvent: e,
		PublishedAt: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventMessageFromJSON decodes a message and rejects events missing
// their identity.
func LedgerEventMessageFromJSON(data []byte) (*LedgerEventMessage, error) {
	var msg LedgerEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ID == "" || msg.Kind == "" || msg.MonthKey == "" {
		return nil, errors.New("ledger event without id, kind or month")
	}
	return &msg, nil
}
