package core

import (
	"encoding/json"
	"time"

	"github.com/dkeye/Chat/internal/domain"
)

// Event names of the real-time protocol.
const (
	EventJoin       = "join"
	EventMessage    = "message"
	EventTyping     = "typing"
	EventLeave      = "leave"
	EventPing       = "ping"
	EventWhoAmI     = "whoami"
	EventHistory    = "history"
	EventUserList   = "user-list-update"
	EventUserTyping = "user-typing-update"
	EventError      = "error"
	EventLeft       = "left"
	EventPong       = "pong"
)

// Envelope is the wire shape of every frame in both directions.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// MessageView is a message as clients see it.
type MessageView struct {
	User      string    `json:"user"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

func NewMessageView(m domain.Message) MessageView {
	return MessageView{User: string(m.Author), Text: m.Content, Timestamp: m.CreatedAt}
}

type TypingView struct {
	Username string `json:"username"`
	IsTyping bool   `json:"isTyping"`
}

type ErrorView struct {
	Message string `json:"message"`
}

// Encode marshals an outbound event into a frame.
func Encode(event string, data any) (Frame, error) {
	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	return json.Marshal(Envelope{Type: event, Data: raw})
}
