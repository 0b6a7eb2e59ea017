package ws

import (
	"sync"

	"github.com/gorilla/websocket"
	"github.com/kiryu-dev/tic-tac-toe-duel/internal/domain"
	"github.com/pkg/errors"
)

type client struct {
	conn    *websocket.Conn
	uuid    string
	writeMu *sync.Mutex
}

func newClient(conn *websocket.Conn, uuid string) client {
	return client{
		conn:    conn,
		uuid:    uuid,
		writeMu: &sync.Mutex{},
	}
}

// WriteMessage is called both by the reading handler and by state pushes.
func (c client) WriteMessage(msg domain.Message) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.WriteJSON(msg); err != nil {
		return errors.WithMessage(err, "websocket conn write json")
	}
	return nil
}

func (c client) ReadMessage() (domain.Message, error) {
	var msg domain.Message
	err := c.conn.ReadJSON(&msg)
	switch {
	case websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseNoStatusReceived,
		websocket.CloseAbnormalClosure):
		return domain.Message{}, domain.ErrConnectionClosed
	case err != nil:
		return domain.Message{}, errors.WithMessage(err, "websocket conn read json")
	}
	return msg, nil
}

func (c client) Uuid() string {
	return c.uuid
}

func (c client) Close() {
	_ = c.conn.Close()
}
