package game

import (
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/kiryu-dev/tic-tac-toe-duel/internal/domain"
	"github.com/kiryu-dev/tic-tac-toe-duel/internal/usecase/opponent"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

const DefaultOpponentDelay = 250 * time.Millisecond

type observer struct {
	id     uint64
	notify domain.Observer
}

type useCase struct {
	mu            *sync.Mutex
	notifyMu      *sync.Mutex
	state         domain.GameState
	policy        domain.OpponentPolicy
	scheduler     Scheduler
	opponentDelay time.Duration
	generation    *atomic.Uint64
	closed        *atomic.Bool
	cancelPending func()
	observers     []observer
	lastObserver  uint64
	logger        *zap.Logger
}

type Option func(u *useCase)

func WithPolicy(policy domain.OpponentPolicy) Option {
	return func(u *useCase) {
		u.policy = policy
	}
}

// WithScheduler replaces the timer-based scheduler. The scheduler must not
// run the task before Schedule returns.
func WithScheduler(scheduler Scheduler) Option {
	return func(u *useCase) {
		u.scheduler = scheduler
	}
}

func WithOpponentDelay(delay time.Duration) Option {
	return func(u *useCase) {
		u.opponentDelay = delay
	}
}

func New(logger *zap.Logger, opts ...Option) *useCase {
	u := &useCase{
		mu:            &sync.Mutex{},
		notifyMu:      &sync.Mutex{},
		state:         domain.NewGameState(),
		scheduler:     timerScheduler{},
		opponentDelay: DefaultOpponentDelay,
		generation:    atomic.NewUint64(0),
		closed:        atomic.NewBool(false),
		logger:        logger,
	}
	for _, opt := range opts {
		opt(u)
	}
	if u.policy == nil {
		u.policy = opponent.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	return u
}

func (u *useCase) State() domain.GameState {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state
}

func (u *useCase) ApplyMove(index int) {
	if u.applyMove(index) {
		u.notify()
	}
}

func (u *useCase) SetMode(mode domain.Mode) {
	if u.setMode(mode) {
		u.notify()
	}
}

func (u *useCase) Reset() {
	u.mu.Lock()
	u.reset()
	u.mu.Unlock()
	u.notify()
}

// Subscribe registers an observer called with a fresh snapshot after every
// state change. Observers must not call back into the controller.
func (u *useCase) Subscribe(fn domain.Observer) func() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.lastObserver++
	id := u.lastObserver
	u.observers = append(u.observers, observer{id: id, notify: fn})
	return func() {
		u.unsubscribe(id)
	}
}

func (u *useCase) Close() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.closed.Store(true)
	u.invalidatePending()
	u.observers = nil
}

func (u *useCase) applyMove(index int) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.state.Result.Phase != domain.InProgress || !u.state.Board.IsEmptyAt(index) {
		return false
	}
	if u.isComputerTurn() {
		/* the human can't play the computer's mark while its move is pending */
		return false
	}
	mark := u.state.CurrentPlayer
	u.state.Board[index] = mark.Cell()
	u.logger.Debug("move applied", zap.Stringer("player", mark), zap.Int("position", index))
	u.finishMove(mark)
	if u.isComputerTurn() {
		u.scheduleOpponentMove()
	}
	return true
}

func (u *useCase) setMode(mode domain.Mode) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	if !mode.Valid() || mode == u.state.Mode {
		return false
	}
	u.logger.Info("switching mode", zap.String("from", string(u.state.Mode)), zap.String("to", string(mode)))
	u.state.Mode = mode
	u.state.Score = domain.Score{}
	u.reset()
	return true
}

func (u *useCase) reset() {
	u.invalidatePending()
	starter := u.state.LastStartingPlayer.Opponent()
	u.state.LastStartingPlayer = starter
	u.state.CurrentPlayer = starter
	u.state.Board = domain.NewBoard()
	u.state.Result = domain.Result{Phase: domain.InProgress}
	u.logger.Debug("new game", zap.Stringer("starter", starter), zap.String("mode", string(u.state.Mode)))
	u.opponentMove()
}

func (u *useCase) finishMove(mark domain.Player) {
	evaluation := u.state.Board.Evaluate()
	switch {
	case evaluation.HasWinner:
		u.state.RecordWin(evaluation.Winner, evaluation.Line)
		u.logger.Info("game won",
			zap.Stringer("winner", evaluation.Winner),
			zap.Any("line", evaluation.Line),
			zap.Any("score", u.state.Score))
	case evaluation.IsDraw:
		u.state.Result = domain.Result{Phase: domain.Draw}
		u.logger.Info("game drawn", zap.Any("score", u.state.Score))
	default:
		u.state.CurrentPlayer = mark.Opponent()
	}
}

func (u *useCase) isComputerTurn() bool {
	return u.state.Result.Phase == domain.InProgress &&
		u.state.Mode == domain.VsComputer &&
		u.state.CurrentPlayer == domain.ComputerPlayer
}

func (u *useCase) opponentMove() bool {
	if !u.isComputerTurn() {
		return false
	}
	pos, ok := u.policy.SelectMove(u.state.Board, domain.ComputerPlayer)
	if !ok || !u.state.Board.IsEmptyAt(pos) {
		return false
	}
	u.state.Board[pos] = domain.ComputerPlayer.Cell()
	u.logger.Debug("opponent moved", zap.Int("position", pos))
	u.finishMove(domain.ComputerPlayer)
	return true
}

func (u *useCase) scheduleOpponentMove() {
	if u.closed.Load() {
		return
	}
	u.invalidatePending()
	gen := u.generation.Load()
	u.cancelPending = u.scheduler.Schedule(u.opponentDelay, func() {
		if u.playScheduledMove(gen) {
			u.notify()
		}
	})
}

// invalidatePending cancels the pending opponent move. A task that already
// fired is dropped by the generation check in playScheduledMove.
func (u *useCase) invalidatePending() {
	u.generation.Inc()
	if u.cancelPending != nil {
		u.cancelPending()
		u.cancelPending = nil
	}
}

func (u *useCase) playScheduledMove(gen uint64) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.generation.Load() != gen {
		u.logger.Debug("dropped stale opponent move")
		return false
	}
	u.cancelPending = nil
	return u.opponentMove()
}

func (u *useCase) unsubscribe(id uint64) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.observers = slices.DeleteFunc(u.observers, func(o observer) bool {
		return o.id == id
	})
}

// notify delivers the latest snapshot, so observers never end on a stale
// state even when two goroutines notify concurrently.
func (u *useCase) notify() {
	u.notifyMu.Lock()
	defer u.notifyMu.Unlock()
	u.mu.Lock()
	state := u.state
	observers := slices.Clone(u.observers)
	u.mu.Unlock()
	for _, o := range observers {
		o.notify(state)
	}
}
