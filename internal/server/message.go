package server

import (
	"encoding/json"
	"time"

	"github.com/lox/pokeronline/internal/game"
)

// MessageType names a websocket message.
type MessageType string

const (
	// MessageTypeSnapshot carries the table state after a change.
	MessageTypeSnapshot MessageType = "snapshot"
	// MessageTypeError reports a rejected client message.
	MessageTypeError MessageType = "error"
	// MessageTypeAction is sent by a seated client to act.
	MessageTypeAction MessageType = "action"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates a new message with the given timestamp
func NewMessage(messageType MessageType, data any, at time.Time) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Message{Type: messageType, Data: dataBytes, Timestamp: at}, nil
}

// SnapshotData is the payload of a snapshot message. Hole cards belonging to
// other players are removed before sending.
type SnapshotData struct {
	Cause    game.Cause         `json:"cause,omitempty"`
	From     game.State         `json:"from"`
	To       game.State         `json:"to"`
	Action   *game.ActionRecord `json:"action,omitempty"`
	Snapshot game.Snapshot      `json:"snapshot"`
}

// ActionData is the payload of an action message.
type ActionData struct {
	Kind   game.ActionKind `json:"kind"`
	Amount int             `json:"amount,omitempty"`
}

// ErrorData describes why a request failed.
type ErrorData struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}
