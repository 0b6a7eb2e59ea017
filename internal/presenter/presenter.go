// Package presenter turns game state snapshots into the text shown to a
// player. The controller never formats messages itself.
package presenter

import (
	"fmt"
	"strings"

	"github.com/kiryu-dev/tic-tac-toe-duel/internal/domain"
)

const (
	DrawMessage = "It's a draw!"

	highlightStart = "\033[1;32m"
	highlightEnd   = "\033[0m"
)

func PlayerLabel(p domain.Player) string {
	switch p {
	case domain.PlayerX:
		return "X (Red)"
	case domain.PlayerO:
		return "O (Yellow)"
	default:
		return ""
	}
}

func ModeLabel(m domain.Mode) string {
	switch m {
	case domain.Local:
		return "Local 2-Player"
	case domain.VsComputer:
		return "Vs Computer"
	default:
		return string(m)
	}
}

// TurnLabel is empty once the game is over.
func TurnLabel(state domain.GameState) string {
	if state.Result.Phase != domain.InProgress {
		return ""
	}
	label := "Current turn: " + PlayerLabel(state.CurrentPlayer)
	if state.Mode == domain.VsComputer {
		if state.CurrentPlayer == domain.ComputerPlayer {
			label += " (AI)"
		} else {
			label += " (You)"
		}
	}
	return label
}

func StatusMessage(result domain.Result) string {
	switch result.Phase {
	case domain.Won:
		return fmt.Sprintf("Player %s wins!", PlayerLabel(result.Winner))
	case domain.Draw:
		return DrawMessage
	default:
		return ""
	}
}

func ScoreLine(score domain.Score) string {
	return fmt.Sprintf("%s: %d  %s: %d",
		PlayerLabel(domain.PlayerX), score.X,
		PlayerLabel(domain.PlayerO), score.O)
}

// CellLabel names a cell the way a screen reader would announce it.
func CellLabel(board domain.Board, pos int) string {
	label := fmt.Sprintf("Cell row %d column %d", pos/3+1, pos%3+1)
	if pos >= 0 && pos < domain.BoardSize && board[pos] != domain.None {
		label += ": " + string(rune(board[pos]))
	}
	return label
}

// RenderBoard draws the grid; empty cells show their 1-based number and
// the winning line, if any, is highlighted.
func RenderBoard(state domain.GameState) string {
	var sb strings.Builder
	for i, cell := range state.Board {
		text := fmt.Sprintf("%d", i+1)
		if cell != domain.None {
			text = string(rune(cell))
		}
		if state.Result.Phase == domain.Won && state.Result.Line.Contains(i) {
			text = highlightStart + text + highlightEnd
		}
		sb.WriteString(" " + text + " ")
		switch {
		case i == domain.BoardSize-1:
			sb.WriteString("\n")
		case (i+1)%3 == 0:
			sb.WriteString("\n---+---+---\n")
		default:
			sb.WriteString("|")
		}
	}
	return sb.String()
}

// Render is the full screen: score, mode, board, turn and status.
func Render(state domain.GameState) string {
	lines := []string{
		"Tic Tac Toe: " + ModeLabel(state.Mode),
		ScoreLine(state.Score),
		"",
		RenderBoard(state),
	}
	if turn := TurnLabel(state); turn != "" {
		lines = append(lines, turn)
	}
	if status := StatusMessage(state.Result); status != "" {
		lines = append(lines, status)
	}
	return strings.Join(lines, "\n")
}
