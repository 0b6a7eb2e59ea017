package domain

import (
	"github.com/pkg/errors"
)

var ErrConnectionClosed = errors.New("connection closed")

const (
	ClientKeyHeader = "X-Client-Key"
)

type messageType byte

const (
	Session = messageType(iota)
	State
	ApplyMove
	SetMode
	Reset
)

type Message struct {
	Type    messageType
	Payload any
}

type SessionPayload struct {
	ClientKey string
}

type ApplyMovePayload struct {
	Position int
}

type SetModePayload struct {
	Mode Mode
}

type Client interface {
	WriteMessage(msg Message) error
	ReadMessage() (Message, error)
	Uuid() string
}
