package application

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/tictactoe-api/internal/config"
	"github.com/rocketscienceinc/tictactoe-api/internal/repository"
	"github.com/rocketscienceinc/tictactoe-api/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-api/internal/service"
	"github.com/rocketscienceinc/tictactoe-api/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-api/transport/rest"
	"github.com/rocketscienceinc/tictactoe-api/transport/websocket"
)

// RunApp - runs the application until ctx is canceled or a termination signal arrives.
func RunApp(ctx context.Context, logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gameRepo, closeRepo, err := newGameRepository(ctx, conf)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := closeRepo(); closeErr != nil {
			log.Error("could not close session store", "error", closeErr)
		}
	}()

	var bot service.BotService
	if conf.Game.WithComputer() {
		bot = service.NewBotService()
	}

	gameUseCase := usecase.NewGameManager(logger, gameRepo, bot)

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort, "basePath", conf.BasePath)
		router := rest.NewRouter(logger, gameUseCase, rest.Options{
			BasePath:   conf.BasePath,
			CookieName: conf.Session.CookieName,
			SessionTTL: conf.Session.TTL,
		})
		httpErrCh <- rest.Start(ctx, conf.HTTPPort, router)
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, gameUseCase, conf.Session.CookieName, conf.Session.TTL)
		wsErrCh <- wsServer.Start(ctx, conf.SocketPort)
	}()

	// both servers return once ctx is canceled, so a failure of one stops the other
	var httpErr, wsErr error
	select {
	case httpErr = <-httpErrCh:
		stop()
		wsErr = <-wsErrCh
	case wsErr = <-wsErrCh:
		stop()
		httpErr = <-httpErrCh
	}

	if httpErr != nil {
		return fmt.Errorf("HTTP server error: %w", httpErr)
	}

	if wsErr != nil {
		return fmt.Errorf("WebSocket server error: %w", wsErr)
	}

	log.Info("Application stopped")

	return nil
}

func newGameRepository(ctx context.Context, conf *config.Config) (repository.GameRepository, func() error, error) {
	if conf.Session.Store == config.StoreMemory {
		return repository.NewMemoryGameRepository(), func() error { return nil }, nil
	}

	redisStorage, err := storage.NewRedisStorage(ctx, conf.Redis.GetRedisAddr(), conf.Redis.Password, conf.Redis.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
	}

	return repository.NewGameRepository(redisStorage.Connection, conf.Session.TTL), redisStorage.Close, nil
}
