package domain

import (
	"github.com/pkg/errors"
)

var (
	ErrUnknownCell   = errors.New("unknown cell")
	ErrUnknownPlayer = errors.New("unknown player")
)

type Cell byte

// None is the zero value so that an unset Board is an empty one.
const (
	None = Cell(0)
	X    = Cell('X')
	O    = Cell('O')
)

func (c Cell) MarshalText() ([]byte, error) {
	switch c {
	case X, O:
		return []byte{byte(c)}, nil
	default:
		return []byte{}, nil
	}
}

func (c *Cell) UnmarshalText(text []byte) error {
	switch string(text) {
	case "", " ":
		*c = None
	case "X":
		*c = X
	case "O":
		*c = O
	default:
		return errors.WithMessagef(ErrUnknownCell, "'%s'", text)
	}
	return nil
}

type Player byte

const (
	PlayerX = Player(X)
	PlayerO = Player(O)
)

// ComputerPlayer is the mark played by the opponent policy in VsComputer mode.
const ComputerPlayer = PlayerO

func (p Player) Cell() Cell {
	return Cell(p)
}

func (p Player) Opponent() Player {
	if p == PlayerX {
		return PlayerO
	}
	return PlayerX
}

func (p Player) String() string {
	return string(rune(p))
}

func (p Player) MarshalText() ([]byte, error) {
	switch p {
	case PlayerX, PlayerO:
		return []byte{byte(p)}, nil
	default:
		return []byte{}, nil
	}
}

func (p *Player) UnmarshalText(text []byte) error {
	switch string(text) {
	case "":
		*p = 0
	case "X":
		*p = PlayerX
	case "O":
		*p = PlayerO
	default:
		return errors.WithMessagef(ErrUnknownPlayer, "'%s'", text)
	}
	return nil
}

type Mode string

const (
	Local      = Mode("local")
	VsComputer = Mode("ai")
)

func (m Mode) Valid() bool {
	return m == Local || m == VsComputer
}

type Phase string

const (
	InProgress = Phase("in_progress")
	Won        = Phase("won")
	Draw       = Phase("draw")
)

type Result struct {
	Phase  Phase
	Winner Player
	Line   Line
}

func (r Result) IsTerminal() bool {
	return r.Phase == Won || r.Phase == Draw
}

type Score struct {
	X int
	O int
}

func (s Score) Of(p Player) int {
	if p == PlayerX {
		return s.X
	}
	return s.O
}

func (s *Score) increment(p Player) {
	if p == PlayerX {
		s.X++
		return
	}
	s.O++
}

// GameState is a value type: copies share nothing with the controller.
type GameState struct {
	Board              Board
	CurrentPlayer      Player
	Mode               Mode
	Result             Result
	Score              Score
	LastStartingPlayer Player
}

func NewGameState() GameState {
	return GameState{
		Board:              NewBoard(),
		CurrentPlayer:      PlayerX,
		Mode:               Local,
		Result:             Result{Phase: InProgress},
		LastStartingPlayer: PlayerO,
	}
}

// RecordWin marks the game as won by the given player and counts it.
func (s *GameState) RecordWin(winner Player, line Line) {
	s.Result = Result{Phase: Won, Winner: winner, Line: line}
	s.Score.increment(winner)
}

type GameUseCase interface {
	State() GameState
	ApplyMove(index int)
	SetMode(mode Mode)
	Reset()
	Subscribe(observer Observer) (unsubscribe func())
	Close()
}

type Observer func(state GameState)

type OpponentPolicy interface {
	SelectMove(board Board, mark Player) (pos int, ok bool)
}
