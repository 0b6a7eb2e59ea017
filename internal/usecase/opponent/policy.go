package opponent

import (
	"math/rand/v2"

	"github.com/kiryu-dev/tic-tac-toe-duel/internal/domain"
)

type policy struct {
	rnd *rand.Rand
}

// New returns the greedy policy: win now, block, take the center,
// otherwise a uniformly random empty cell drawn from src.
func New(src rand.Source) policy {
	return policy{rnd: rand.New(src)}
}

func (p policy) SelectMove(board domain.Board, mark domain.Player) (int, bool) {
	if pos, ok := completingCell(board, mark); ok {
		return pos, true
	}
	if pos, ok := completingCell(board, mark.Opponent()); ok {
		return pos, true
	}
	if board.IsEmptyAt(domain.CenterIndex) {
		return domain.CenterIndex, true
	}
	emptyCells := board.EmptyCells()
	if len(emptyCells) == 0 {
		return 0, false
	}
	return emptyCells[p.rnd.IntN(len(emptyCells))], true
}

// completingCell finds the first line holding two of mark's cells and one
// empty cell.
func completingCell(board domain.Board, mark domain.Player) (int, bool) {
	for _, line := range domain.Lines {
		count, empty := 0, -1
		for _, pos := range line {
			switch board[pos] {
			case mark.Cell():
				count++
			case domain.None:
				empty = int(pos)
			}
		}
		if count == 2 && empty != -1 {
			return empty, true
		}
	}
	return 0, false
}
