package main

import (
	"context"
	"flag"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kiryu-dev/tic-tac-toe-duel/internal/config"
	"github.com/kiryu-dev/tic-tac-toe-duel/internal/domain"
	"github.com/kiryu-dev/tic-tac-toe-duel/internal/transport/ws"
	"github.com/kiryu-dev/tic-tac-toe-duel/internal/usecase/game"
	"github.com/kiryu-dev/tic-tac-toe-duel/internal/usecase/hub"
	"github.com/kiryu-dev/tic-tac-toe-duel/internal/usecase/opponent"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfgPath := flag.String("config", "./config.yml", "path to config")
	flag.Parse()
	bootLogger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	cfg, err := config.New(*cfgPath)
	if err != nil {
		bootLogger.Fatal(err.Error())
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		bootLogger.Fatal(err.Error())
	}
	defer func() {
		_ = logger.Sync()
	}()

	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	errGroup, ctx := errgroup.WithContext(context.Background())
	errGroup.Go(func() error {
		select {
		case s := <-sigChan:
			return errors.Errorf("captured signal: %v", s)
		case <-ctx.Done():
			return nil
		}
	})
	var (
		newPolicy = policyFactory(cfg.Game.Seed)
		hub       = hub.New(func() domain.GameUseCase {
			return game.New(logger,
				game.WithPolicy(newPolicy()),
				game.WithOpponentDelay(cfg.Game.OpponentDelay),
			)
		}, logger, hub.WithSessionTTL(cfg.Game.SessionTTL), hub.WithCleanupPeriod(cfg.Game.CleanupPeriod))
		server = ws.New(cfg.Server.Addr(), hub, logger)
	)
	errGroup.Go(func() error {
		hub.Run(ctx)
		return nil
	})
	errGroup.Go(server.ListenAndServe)
	errGroup.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	if err := errGroup.Wait(); err != nil {
		logger.Info("gracefully shutting down the server: " + err.Error())
	}
}

func newLogger(level string) (*zap.Logger, error) {
	atomicLevel, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, errors.WithMessagef(err, "parse log level '%s'", level)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = atomicLevel
	logger, err := cfg.Build()
	if err != nil {
		return nil, errors.WithMessage(err, "build logger")
	}
	return logger, nil
}

// policyFactory gives every session its own random stream derived from
// one seed.
func policyFactory(seed uint64) func() domain.OpponentPolicy {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	sessions := atomic.NewUint64(0)
	return func() domain.OpponentPolicy {
		return opponent.New(rand.NewPCG(seed, sessions.Inc()))
	}
}
