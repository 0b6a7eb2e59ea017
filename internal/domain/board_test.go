package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoard_Evaluate(t *testing.T) {
	tests := []struct {
		name  string
		board Board
		want  Evaluation
	}{
		{
			name:  "empty board",
			board: Board{},
			want:  Evaluation{},
		},
		{
			name:  "X wins first row",
			board: Board{X, X, X, O, O, None, None, None, None},
			want:  Evaluation{Winner: PlayerX, Line: Line{0, 1, 2}, HasWinner: true},
		},
		{
			name:  "O wins second column",
			board: Board{X, O, None, X, O, None, None, O, X},
			want:  Evaluation{Winner: PlayerO, Line: Line{1, 4, 7}, HasWinner: true},
		},
		{
			name:  "O wins anti-diagonal",
			board: Board{X, X, O, None, O, None, O, None, X},
			want:  Evaluation{Winner: PlayerO, Line: Line{2, 4, 6}, HasWinner: true},
		},
		{
			name:  "win on a full board is not a draw",
			board: Board{X, O, X, O, X, O, O, X, X},
			want:  Evaluation{Winner: PlayerX, Line: Line{0, 4, 8}, HasWinner: true},
		},
		{
			name:  "first line in order wins",
			board: Board{X, X, X, X, O, O, X, O, O},
			want:  Evaluation{Winner: PlayerX, Line: Line{0, 1, 2}, HasWinner: true},
		},
		{
			name:  "draw",
			board: Board{X, O, X, X, O, O, O, X, X},
			want:  Evaluation{IsDraw: true},
		},
		{
			name:  "game ongoing",
			board: Board{X, O, X, None, O, None, None, X, None},
			want:  Evaluation{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.board.Evaluate())
		})
	}
}

// Every one of the 3^9 boards is checked against a direct reading of the
// win and draw conditions.
func TestBoard_EvaluateAllBoards(t *testing.T) {
	cells := [3]Cell{None, X, O}
	for code := 0; code < 19683; code++ {
		var b Board
		n := code
		for i := range b {
			b[i] = cells[n%3]
			n /= 3
		}

		got := b.Evaluate()

		hasLine := false
		for _, line := range Lines {
			if b[line[0]] != None && b[line[0]] == b[line[1]] && b[line[1]] == b[line[2]] {
				hasLine = true
				break
			}
		}
		require.Equal(t, hasLine, got.HasWinner, "board %v", b)
		if got.HasWinner {
			for _, pos := range got.Line {
				require.Equal(t, got.Winner.Cell(), b[pos], "board %v", b)
			}
			require.False(t, got.IsDraw)
			continue
		}
		require.Equal(t, b.IsFull(), got.IsDraw, "board %v", b)
	}
}

func TestBoard_EmptyCells(t *testing.T) {
	b := Board{X, None, O, None, X, None, None, O, X}

	assert.Equal(t, []int{1, 3, 5, 6}, b.EmptyCells())
	assert.True(t, b.IsEmptyAt(1))
	assert.False(t, b.IsEmptyAt(0))
	assert.False(t, b.IsEmptyAt(-1))
	assert.False(t, b.IsEmptyAt(9))
	assert.False(t, b.IsFull())
	assert.Empty(t, Board{X, O, X, X, O, O, O, X, X}.EmptyCells())
}

func TestPlayer_Opponent(t *testing.T) {
	assert.Equal(t, PlayerO, PlayerX.Opponent())
	assert.Equal(t, PlayerX, PlayerO.Opponent())
	assert.Equal(t, "X", PlayerX.String())
}

func TestGameState_JSON(t *testing.T) {
	state := NewGameState()
	state.Board[0] = X
	state.Board[4] = O
	state.RecordWin(PlayerO, Line{2, 4, 6})

	data, err := json.Marshal(state)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"Board":["X","","","","O","","","",""]`)
	assert.Contains(t, string(data), `"Winner":"O"`)

	var decoded GameState
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, state, decoded)
}

func TestCell_UnmarshalText(t *testing.T) {
	var c Cell
	require.ErrorIs(t, c.UnmarshalText([]byte("Z")), ErrUnknownCell)
	require.NoError(t, c.UnmarshalText([]byte(" ")))
	assert.Equal(t, None, c)

	var p Player
	require.ErrorIs(t, p.UnmarshalText([]byte("Z")), ErrUnknownPlayer)
}
