package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/kiryu-dev/tic-tac-toe-duel/internal/adapters/webapi"
	"github.com/kiryu-dev/tic-tac-toe-duel/internal/domain"
	"github.com/kiryu-dev/tic-tac-toe-duel/internal/presenter"
	"github.com/kiryu-dev/tic-tac-toe-duel/pkg/utils"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
)

const healthCheckTimeout = 5 * time.Second

func main() {
	addr := flag.String("addr", "localhost:8080", "server address")
	clientKey := flag.String("key", "", "client key of a session to resume")
	flag.Parse()
	if *clientKey == "" {
		*clientKey = uuid.NewString()
	}

	ctx, cancel := context.WithTimeout(context.Background(), healthCheckTimeout)
	health, err := webapi.New().HealthCheck(ctx, "http://"+*addr)
	cancel()
	if err != nil {
		log.Fatal("health check: " + err.Error())
	}
	log.Printf("server is up, %d active sessions", health.ActiveSessions)

	u := url.URL{Scheme: "ws", Host: *addr, Path: "/game"}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), http.Header{
		domain.ClientKeyHeader: []string{*clientKey},
	})
	if err != nil {
		log.Fatal("dial: " + err.Error())
	}
	defer func() {
		_ = conn.Close()
	}()
	client := newClient(conn)
	go func() {
		if err := client.receiveStates(); err != nil {
			log.Fatal(err)
		}
		os.Exit(0)
	}()
	if err := client.handleCommands(); err != nil {
		log.Fatal(err)
	}
}

type client struct {
	conn      *websocket.Conn
	scanner   *bufio.Scanner
	clientKey *atomic.String
	closing   *atomic.Bool
}

func newClient(conn *websocket.Conn) *client {
	return &client{
		conn:      conn,
		scanner:   bufio.NewScanner(os.Stdin),
		clientKey: atomic.NewString(""),
		closing:   atomic.NewBool(false),
	}
}

func (c *client) receiveStates() error {
	for {
		msg := new(domain.Message)
		if err := c.conn.ReadJSON(msg); err != nil {
			if c.closing.Load() || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return errors.WithMessage(err, "read json msg")
		}
		switch msg.Type {
		case domain.Session:
			v, err := utils.DecodePayload[domain.SessionPayload](msg.Payload)
			if err != nil {
				return errors.WithMessage(err, "decode session payload")
			}
			c.clientKey.Store(v.ClientKey)
		case domain.State:
			v, err := utils.DecodePayload[domain.GameState](msg.Payload)
			if err != nil {
				return errors.WithMessage(err, "decode state payload")
			}
			c.render(v)
		}
	}
}

func (c *client) handleCommands() error {
	for c.scanner.Scan() {
		msg, err := parseCommand(c.scanner.Text())
		switch {
		case errors.Is(err, errQuit):
			return c.close()
		case err != nil:
			fmt.Println(err)
			continue
		}
		if err := c.conn.WriteJSON(msg); err != nil {
			return errors.WithMessage(err, "write json msg")
		}
	}
	if err := c.scanner.Err(); err != nil {
		return errors.WithMessage(err, "read command")
	}
	return c.close()
}

func (c *client) close() error {
	c.closing.Store(true)
	err := c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	if err != nil {
		return errors.WithMessage(err, "write close message")
	}
	return nil
}

func (c *client) render(state domain.GameState) {
	fmt.Printf("\033[H\033[J")
	fmt.Println(presenter.Render(state))
	fmt.Println()
	fmt.Println(helpText)
	fmt.Printf("session key: %s\n", c.clientKey.Load())
}
