package main

import (
	"strconv"
	"strings"

	"github.com/kiryu-dev/tic-tac-toe-duel/internal/domain"
	"github.com/pkg/errors"
)

const helpText = "1-9: play a cell   r: reset   l: local 2-player   c: vs computer   q: quit"

var (
	errQuit           = errors.New("quit")
	errUnknownCommand = errors.New("unknown command")
)

// parseCommand maps a line typed by the player to a message for the server.
func parseCommand(text string) (domain.Message, error) {
	text = strings.ToLower(strings.TrimSpace(text))
	switch text {
	case "q":
		return domain.Message{}, errQuit
	case "r":
		return domain.Message{Type: domain.Reset}, nil
	case "l":
		return domain.Message{Type: domain.SetMode, Payload: domain.SetModePayload{Mode: domain.Local}}, nil
	case "c":
		return domain.Message{Type: domain.SetMode, Payload: domain.SetModePayload{Mode: domain.VsComputer}}, nil
	}
	pos, err := strconv.Atoi(text)
	if err != nil || pos < 1 || pos > domain.BoardSize {
		return domain.Message{}, errors.WithMessagef(errUnknownCommand, "'%s', %s", text, helpText)
	}
	return domain.Message{
		Type:    domain.ApplyMove,
		Payload: domain.ApplyMovePayload{Position: pos - 1},
	}, nil
}
