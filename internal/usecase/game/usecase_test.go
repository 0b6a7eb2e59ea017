package game

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/kiryu-dev/tic-tac-toe-duel/internal/domain"
	"github.com/kiryu-dev/tic-tac-toe-duel/internal/usecase/opponent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type scheduledTask struct {
	delay     time.Duration
	run       func()
	cancelled bool
}

type manualScheduler struct {
	tasks []*scheduledTask
}

func (s *manualScheduler) Schedule(delay time.Duration, task func()) func() {
	t := &scheduledTask{delay: delay, run: task}
	s.tasks = append(s.tasks, t)
	return func() {
		t.cancelled = true
	}
}

func (s *manualScheduler) pending() int {
	n := 0
	for _, t := range s.tasks {
		if !t.cancelled {
			n++
		}
	}
	return n
}

func (s *manualScheduler) runPending() {
	tasks := s.tasks
	s.tasks = nil
	for _, t := range tasks {
		if !t.cancelled {
			t.run()
		}
	}
}

// fireAll runs every task, cancelled or not, like timers that fired before
// they could be stopped.
func (s *manualScheduler) fireAll() {
	tasks := s.tasks
	s.tasks = nil
	for _, t := range tasks {
		t.run()
	}
}

func newTestController(t *testing.T) (*useCase, *manualScheduler) {
	t.Helper()
	scheduler := &manualScheduler{}
	u := New(zap.NewNop(),
		WithScheduler(scheduler),
		WithPolicy(opponent.New(rand.NewPCG(1, 2))),
	)
	return u, scheduler
}

func playMoves(u *useCase, moves ...int) {
	for _, m := range moves {
		u.ApplyMove(m)
	}
}

func board(cells string) domain.Board {
	var b domain.Board
	for i, c := range cells {
		switch c {
		case 'X':
			b[i] = domain.X
		case 'O':
			b[i] = domain.O
		}
	}
	return b
}

func TestNew(t *testing.T) {
	u, _ := newTestController(t)

	state := u.State()

	assert.Equal(t, domain.NewBoard(), state.Board)
	assert.Equal(t, domain.PlayerX, state.CurrentPlayer)
	assert.Equal(t, domain.Local, state.Mode)
	assert.Equal(t, domain.Result{Phase: domain.InProgress}, state.Result)
	assert.Equal(t, domain.Score{}, state.Score)
	assert.Equal(t, domain.PlayerO, state.LastStartingPlayer)
}

func TestApplyMove(t *testing.T) {
	t.Run("X wins the top row", func(t *testing.T) {
		u, _ := newTestController(t)

		playMoves(u, 0, 4, 1, 5, 2)

		state := u.State()
		require.Equal(t, domain.Won, state.Result.Phase)
		assert.Equal(t, domain.PlayerX, state.Result.Winner)
		assert.Equal(t, domain.Line{0, 1, 2}, state.Result.Line)
		assert.Equal(t, 1, state.Score.X)
		assert.Equal(t, 0, state.Score.O)
	})

	t.Run("flips the current player once", func(t *testing.T) {
		u, _ := newTestController(t)

		u.ApplyMove(4)
		assert.Equal(t, domain.PlayerO, u.State().CurrentPlayer)

		u.ApplyMove(0)
		assert.Equal(t, domain.PlayerX, u.State().CurrentPlayer)
	})

	t.Run("full board without a line is a draw", func(t *testing.T) {
		u, _ := newTestController(t)

		playMoves(u, 0, 1, 2, 4, 3, 5, 7, 6, 8)

		state := u.State()
		assert.Equal(t, domain.Result{Phase: domain.Draw}, state.Result)
		assert.Equal(t, domain.Score{}, state.Score)
		assert.Equal(t, board("XOXXOOOXX"), state.Board)
	})

	t.Run("illegal moves leave the state unchanged", func(t *testing.T) {
		u, _ := newTestController(t)
		u.ApplyMove(4)
		before := u.State()

		for _, index := range []int{4, -1, 9, 100} {
			u.ApplyMove(index)
			assert.Equal(t, before, u.State(), "index %d", index)
		}
	})

	t.Run("moves after the game ended are ignored", func(t *testing.T) {
		u, _ := newTestController(t)
		playMoves(u, 0, 4, 1, 5, 2)
		before := u.State()

		u.ApplyMove(8)

		assert.Equal(t, before, u.State())
	})
}

func TestReset(t *testing.T) {
	u, _ := newTestController(t)
	playMoves(u, 0, 4, 1, 5, 2)

	u.Reset()

	state := u.State()
	assert.Equal(t, domain.NewBoard(), state.Board)
	assert.Equal(t, domain.Result{Phase: domain.InProgress}, state.Result)
	assert.Equal(t, domain.PlayerX, state.CurrentPlayer)
	assert.Equal(t, domain.PlayerX, state.LastStartingPlayer)
	assert.Equal(t, 1, state.Score.X, "reset keeps the score")

	u.Reset()
	assert.Equal(t, domain.PlayerO, u.State().CurrentPlayer)
	assert.Equal(t, domain.PlayerO, u.State().LastStartingPlayer)

	u.Reset()
	assert.Equal(t, domain.PlayerX, u.State().CurrentPlayer)
}

func TestSetMode(t *testing.T) {
	t.Run("unchanged or unknown mode is a no-op", func(t *testing.T) {
		u, _ := newTestController(t)
		u.ApplyMove(0)
		before := u.State()

		u.SetMode(domain.Local)
		u.SetMode(domain.Mode("online"))

		assert.Equal(t, before, u.State())
	})

	t.Run("switching mode clears score and resets", func(t *testing.T) {
		u, _ := newTestController(t)
		playMoves(u, 0, 4, 1, 5, 2)

		u.SetMode(domain.VsComputer)

		state := u.State()
		assert.Equal(t, domain.VsComputer, state.Mode)
		assert.Equal(t, domain.Score{}, state.Score)
		assert.Equal(t, domain.NewBoard(), state.Board)
		assert.Equal(t, domain.PlayerX, state.CurrentPlayer)
	})

	t.Run("computer opens immediately when it starts", func(t *testing.T) {
		u, scheduler := newTestController(t)
		u.Reset() // X opened, next starter is O

		u.SetMode(domain.VsComputer)

		state := u.State()
		assert.Equal(t, domain.O, state.Board[domain.CenterIndex])
		assert.Equal(t, domain.PlayerX, state.CurrentPlayer)
		assert.Zero(t, scheduler.pending())
	})
}

func TestOpponentMove(t *testing.T) {
	t.Run("is scheduled after the human move", func(t *testing.T) {
		u, scheduler := newTestController(t)
		u.SetMode(domain.VsComputer)

		u.ApplyMove(0)

		require.Equal(t, 1, scheduler.pending())
		assert.Equal(t, DefaultOpponentDelay, scheduler.tasks[0].delay)
		assert.Equal(t, domain.PlayerO, u.State().CurrentPlayer)

		scheduler.runPending()

		state := u.State()
		assert.Equal(t, domain.O, state.Board[domain.CenterIndex])
		assert.Equal(t, domain.PlayerX, state.CurrentPlayer)
	})

	t.Run("human can't play while the computer is to move", func(t *testing.T) {
		u, scheduler := newTestController(t)
		u.SetMode(domain.VsComputer)
		u.ApplyMove(0)
		before := u.State()

		u.ApplyMove(8)

		assert.Equal(t, before, u.State())
		assert.Equal(t, 1, scheduler.pending())
	})

	t.Run("blocks and then wins", func(t *testing.T) {
		u, scheduler := newTestController(t)
		u.SetMode(domain.VsComputer)

		u.ApplyMove(0)
		scheduler.runPending() // center
		u.ApplyMove(1)
		scheduler.runPending() // block at 2
		assert.Equal(t, domain.O, u.State().Board[2])

		u.ApplyMove(6)
		scheduler.runPending() // block at 3
		assert.Equal(t, domain.O, u.State().Board[3])

		u.ApplyMove(8)
		scheduler.runPending() // win at 5

		state := u.State()
		require.Equal(t, domain.Won, state.Result.Phase)
		assert.Equal(t, domain.PlayerO, state.Result.Winner)
		assert.Equal(t, domain.Line{3, 4, 5}, state.Result.Line)
		assert.Equal(t, domain.Score{O: 1}, state.Score)
	})

	t.Run("stale move is dropped after reset", func(t *testing.T) {
		u, scheduler := newTestController(t)
		u.SetMode(domain.VsComputer)
		u.ApplyMove(0)

		u.Reset()
		afterReset := u.State()
		scheduler.fireAll()

		assert.Equal(t, afterReset, u.State())
	})

	t.Run("stale move is dropped after mode switch", func(t *testing.T) {
		u, scheduler := newTestController(t)
		u.SetMode(domain.VsComputer)
		u.ApplyMove(0)

		u.SetMode(domain.Local)
		afterSwitch := u.State()
		scheduler.fireAll()

		assert.Equal(t, afterSwitch, u.State())
	})

	t.Run("close cancels the pending move", func(t *testing.T) {
		u, scheduler := newTestController(t)
		u.SetMode(domain.VsComputer)
		u.ApplyMove(0)
		before := u.State()

		u.Close()
		scheduler.fireAll()

		assert.Equal(t, before, u.State())
	})
}

func TestSubscribe(t *testing.T) {
	u, scheduler := newTestController(t)
	var states []domain.GameState
	unsubscribe := u.Subscribe(func(state domain.GameState) {
		states = append(states, state)
	})

	u.SetMode(domain.VsComputer)
	u.ApplyMove(0)
	u.ApplyMove(0)
	scheduler.runPending()

	require.Len(t, states, 3)
	assert.Equal(t, domain.VsComputer, states[0].Mode)
	assert.Equal(t, domain.X, states[1].Board[0])
	assert.Equal(t, domain.O, states[2].Board[domain.CenterIndex])

	states[2].Board[8] = domain.X
	assert.Equal(t, domain.None, u.State().Board[8], "snapshots are copies")

	unsubscribe()
	u.Reset()
	assert.Len(t, states, 3)
}

func TestTimerScheduler(t *testing.T) {
	done := make(chan struct{})
	cancel := timerScheduler{}.Schedule(time.Millisecond, func() {
		close(done)
	})
	defer cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task did not run")
	}

	ran := false
	cancel = timerScheduler{}.Schedule(time.Hour, func() {
		ran = true
	})
	cancel()
	assert.False(t, ran)
}
