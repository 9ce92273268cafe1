package realtime

import (
	"bytes"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"
)

const (
	TypeMessage        = "message"
	TypeMarkAsRead     = "markAsRead"
	TypePing           = "ping"
	TypeAuthSuccess    = "auth_success"
	TypeReceiveMessage = "receiveMessage"
	TypeMessagesRead   = "messagesRead"
	TypePong           = "pong"
	TypeError          = "error"
)

// UserID is a user id sent by a client as a JSON number or a numeric string.
type UserID uint

func (id *UserID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = 0
		return nil
	}
	if len(data) > 1 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(s)
	}
	v, err := strconv.ParseUint(string(data), 10, 64)
	if err != nil {
		return eris.Wrapf(err, "invalid user id %s", data)
	}
	*id = UserID(v)
	return nil
}

// Inbound is any frame a client sends.
type Inbound struct {
	Type       string `json:"type"`
	ReceiverID UserID `json:"receiverId,omitempty"`
	Content    string `json:"content,omitempty"`
	UserID     UserID `json:"userId,omitempty"`
}

type AuthSuccess struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type ReceiveMessage struct {
	Type      string    `json:"type"`
	MessageID uint      `json:"messageId"`
	SenderID  uint      `json:"senderId"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type MessagesRead struct {
	Type   string `json:"type"`
	UserID uint   `json:"userId"`
}

type Pong struct {
	Type string `json:"type"`
}

type ErrorFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func encode(v interface{}) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		// Outbound frames are plain structs; this cannot fail.
		panic(err)
	}
	return b
}

func errorFrame(message string) []byte {
	return encode(ErrorFrame{Type: TypeError, Message: message})
}
