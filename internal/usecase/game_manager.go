package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/tictactoe-api/internal/entity"
	"github.com/rocketscienceinc/tictactoe-api/internal/pkg"
	"github.com/rocketscienceinc/tictactoe-api/internal/repository"
	"github.com/rocketscienceinc/tictactoe-api/internal/tictactoe"
)

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, sessionID string, game *entity.Game) error
	GetByID(ctx context.Context, sessionID string) (*entity.Game, error)
	DeleteByID(ctx context.Context, sessionID string) error
}

type botService interface {
	MakeTurn(game *entity.Game) error
}

// GameManager runs the game state machine for every client session. Operations on the
// same session are serialized; different sessions proceed in parallel.
type GameManager struct {
	logger   *slog.Logger
	gameRepo gameRepo
	bot      botService
	locks    *pkg.KeyMutex
}

// NewGameManager - bot may be nil, in which case both pieces are played by clients.
func NewGameManager(logger *slog.Logger, gameRepo gameRepo, bot botService) *GameManager {
	return &GameManager{
		logger:   logger.With("component", "game_manager"),
		gameRepo: gameRepo,
		bot:      bot,
		locks:    pkg.NewKeyMutex(),
	}
}

// GetState returns the session's game, creating a fresh one on first access.
func (that *GameManager) GetState(ctx context.Context, sessionID string) (*entity.Game, error) {
	unlock := that.locks.Lock(sessionID)
	defer unlock()

	return that.getOrCreateGame(ctx, sessionID)
}

// MakeMove places piece at pos and, when a bot is configured, lets it answer a human move.
func (that *GameManager) MakeMove(ctx context.Context, sessionID string, piece entity.Cell, pos entity.Position) (*entity.Game, error) {
	log := that.logger.With("method", "MakeMove", "session", sessionID)

	unlock := that.locks.Lock(sessionID)
	defer unlock()

	game, err := that.getOrCreateGame(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	log.Debug("before move", "currentTurn", game.CurrentTurn, "piece", piece, "x", pos.X, "y", pos.Y)

	if err = tictactoe.MakeMove(game, piece, pos); err != nil {
		return nil, fmt.Errorf("failed make turn: %w", err)
	}

	if that.bot != nil && piece == entity.PieceX && !game.IsFinished() {
		if err = that.bot.MakeTurn(game); err != nil {
			return nil, fmt.Errorf("failed make bot turn: %w", err)
		}

		// the bot's single reply always completes the round, even when it wins
		game.CurrentTurn = entity.PieceX
	}

	if err = that.updateGame(ctx, sessionID, game); err != nil {
		return nil, err
	}

	log.Debug("after move", "currentTurn", game.CurrentTurn, "victory", game.Victory, "draw", game.Draw)

	return game, nil
}

// Restart starts a new round and keeps the score.
func (that *GameManager) Restart(ctx context.Context, sessionID string) (*entity.Game, error) {
	unlock := that.locks.Lock(sessionID)
	defer unlock()

	game, err := that.gameRepo.GetByID(ctx, sessionID)
	switch {
	case errors.Is(err, repository.ErrGameNotFound):
		game = entity.NewGame()
	case err != nil:
		return nil, fmt.Errorf("failed to get game: %w", err)
	default:
		game.Restart()
	}

	if err = that.updateGame(ctx, sessionID, game); err != nil {
		return nil, err
	}

	that.logger.Info("game restarted", "session", sessionID, "scoreX", game.Score.X, "scoreO", game.Score.O)

	return game, nil
}

// Reset drops the session's stored game and starts over, score included.
func (that *GameManager) Reset(ctx context.Context, sessionID string) (*entity.Game, error) {
	unlock := that.locks.Lock(sessionID)
	defer unlock()

	if err := that.gameRepo.DeleteByID(ctx, sessionID); err != nil && !errors.Is(err, repository.ErrGameNotFound) {
		return nil, fmt.Errorf("failed to delete game: %w", err)
	}

	game := entity.NewGame()
	if err := that.updateGame(ctx, sessionID, game); err != nil {
		return nil, err
	}

	that.logger.Info("game reset", "session", sessionID)

	return game, nil
}

func (that *GameManager) getOrCreateGame(ctx context.Context, sessionID string) (*entity.Game, error) {
	game, err := that.gameRepo.GetByID(ctx, sessionID)
	if err == nil {
		return game, nil
	}

	if !errors.Is(err, repository.ErrGameNotFound) {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	game = entity.NewGame()
	if err = that.updateGame(ctx, sessionID, game); err != nil {
		return nil, err
	}

	that.logger.Info("new game session", "session", sessionID)

	return game, nil
}

func (that *GameManager) updateGame(ctx context.Context, sessionID string, game *entity.Game) error {
	if err := that.gameRepo.CreateOrUpdate(ctx, sessionID, game); err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}

	return nil
}
