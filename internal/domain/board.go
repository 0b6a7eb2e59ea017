package domain

const (
	BoardSize   = 9
	CenterIndex = 4
)

type Board [BoardSize]Cell

type Line [3]uint8

// Lines lists every winning triple: rows, then columns, then diagonals.
var Lines = [8]Line{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

func NewBoard() Board {
	return Board{}
}

type Evaluation struct {
	Winner    Player
	Line      Line
	HasWinner bool
	IsDraw    bool
}

// Evaluate reports the first fully marked line in Lines order, or a draw
// when no line is complete and the board has no empty cell left.
func (b Board) Evaluate() Evaluation {
	for _, line := range Lines {
		first := b[line[0]]
		if first == None {
			continue
		}
		if b[line[1]] == first && b[line[2]] == first {
			return Evaluation{
				Winner:    Player(first),
				Line:      line,
				HasWinner: true,
			}
		}
	}
	return Evaluation{IsDraw: b.IsFull()}
}

func (b Board) IsEmptyAt(pos int) bool {
	return pos >= 0 && pos < BoardSize && b[pos] == None
}

func (b Board) IsFull() bool {
	for _, cell := range b {
		if cell == None {
			return false
		}
	}
	return true
}

func (b Board) EmptyCells() []int {
	cells := make([]int, 0, BoardSize)
	for i, cell := range b {
		if cell == None {
			cells = append(cells, i)
		}
	}
	return cells
}

func (l Line) Contains(pos int) bool {
	for _, v := range l {
		if int(v) == pos {
			return true
		}
	}
	return false
}
