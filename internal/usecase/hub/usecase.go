package hub

import (
	"context"
	"sync"
	"time"

	"github.com/kiryu-dev/tic-tac-toe-duel/internal/domain"
	"github.com/kiryu-dev/tic-tac-toe-duel/pkg/utils"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

const (
	defaultSessionTTL    = 30 * time.Minute
	defaultCleanupPeriod = time.Minute
)

// GameFactory builds the controller of a new session.
type GameFactory func() domain.GameUseCase

type session struct {
	game        domain.GameUseCase
	connections int
	lastSeen    time.Time
}

type useCase struct {
	newGame       GameFactory
	sessions      map[string]*session
	ttl           time.Duration
	cleanupPeriod time.Duration
	connections   *atomic.Int64
	mu            *sync.RWMutex
	now           func() time.Time
	logger        *zap.Logger
}

type Option func(u *useCase)

func WithSessionTTL(ttl time.Duration) Option {
	return func(u *useCase) {
		u.ttl = ttl
	}
}

func WithCleanupPeriod(period time.Duration) Option {
	return func(u *useCase) {
		u.cleanupPeriod = period
	}
}

func New(newGame GameFactory, logger *zap.Logger, opts ...Option) *useCase {
	u := &useCase{
		newGame:       newGame,
		sessions:      make(map[string]*session),
		ttl:           defaultSessionTTL,
		cleanupPeriod: defaultCleanupPeriod,
		connections:   atomic.NewInt64(0),
		mu:            &sync.RWMutex{},
		now:           time.Now,
		logger:        logger,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func (u *useCase) Handle(ctx context.Context, client domain.Client) error {
	clientKey := client.Uuid()
	game := u.attach(clientKey)
	defer u.detach(clientKey)
	u.connections.Inc()
	defer u.connections.Dec()

	err := client.WriteMessage(domain.Message{
		Type:    domain.Session,
		Payload: domain.SessionPayload{ClientKey: clientKey},
	})
	if err != nil {
		return errors.WithMessage(err, "send session message")
	}
	unsubscribe := game.Subscribe(func(state domain.GameState) {
		if err := client.WriteMessage(stateMessage(state)); err != nil {
			u.logger.Warn("failed to push game state", zap.String("client", clientKey), zap.Error(err))
		}
	})
	defer unsubscribe()
	if err := client.WriteMessage(stateMessage(game.State())); err != nil {
		return errors.WithMessage(err, "send initial game state")
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		msg, err := client.ReadMessage()
		switch {
		case errors.Is(err, domain.ErrConnectionClosed):
			u.logger.Info("client disconnected", zap.String("client", clientKey))
			return nil
		case err != nil:
			return errors.WithMessage(err, "read message from client")
		}
		u.touch(clientKey)
		u.dispatch(game, clientKey, msg)
	}
}

// dispatch never fails: a malformed message is logged and dropped.
func (u *useCase) dispatch(game domain.GameUseCase, clientKey string, msg domain.Message) {
	logger := u.logger.With(zap.String("client", clientKey), zap.Any("type", msg.Type))
	switch msg.Type {
	case domain.ApplyMove:
		v, err := utils.DecodePayload[domain.ApplyMovePayload](msg.Payload)
		if err != nil {
			logger.Warn("decode move payload", zap.Error(err))
			return
		}
		game.ApplyMove(v.Position)
	case domain.SetMode:
		v, err := utils.DecodePayload[domain.SetModePayload](msg.Payload)
		if err != nil {
			logger.Warn("decode mode payload", zap.Error(err))
			return
		}
		game.SetMode(v.Mode)
	case domain.Reset:
		game.Reset()
	default:
		logger.Warn("unexpected message type")
	}
}

func stateMessage(state domain.GameState) domain.Message {
	return domain.Message{
		Type:    domain.State,
		Payload: state,
	}
}

func (u *useCase) attach(clientKey string) domain.GameUseCase {
	u.mu.Lock()
	defer u.mu.Unlock()
	s, ok := u.sessions[clientKey]
	if !ok {
		s = &session{game: u.newGame()}
		u.sessions[clientKey] = s
		u.logger.Info("created session", zap.String("client", clientKey))
	} else {
		u.logger.Info("resumed session", zap.String("client", clientKey))
	}
	s.connections++
	s.lastSeen = u.now()
	return s.game
}

func (u *useCase) detach(clientKey string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if s, ok := u.sessions[clientKey]; ok {
		s.connections--
		s.lastSeen = u.now()
	}
}

func (u *useCase) touch(clientKey string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if s, ok := u.sessions[clientKey]; ok {
		s.lastSeen = u.now()
	}
}

// Run removes idle sessions until ctx is done, then closes every session.
func (u *useCase) Run(ctx context.Context) {
	ticker := time.NewTicker(u.cleanupPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			u.removeIdleSessions()
		case <-ctx.Done():
			u.closeSessions()
			return
		}
	}
}

func (u *useCase) removeIdleSessions() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	now := u.now()
	for clientKey, s := range u.sessions {
		if s.connections > 0 || now.Sub(s.lastSeen) < u.ttl {
			continue
		}
		s.game.Close()
		delete(u.sessions, clientKey)
		u.logger.Info("removed idle session", zap.String("client", clientKey))
	}
	return len(u.sessions)
}

func (u *useCase) closeSessions() {
	u.mu.Lock()
	defer u.mu.Unlock()
	for clientKey, s := range u.sessions {
		s.game.Close()
		delete(u.sessions, clientKey)
	}
}

func (u *useCase) Stats() domain.HubStats {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return domain.HubStats{
		ActiveSessions:    len(u.sessions),
		ActiveConnections: u.connections.Load(),
	}
}
