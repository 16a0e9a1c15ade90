package service

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-api/internal/entity"
	"github.com/rocketscienceinc/tictactoe-api/internal/tictactoe"
)

var ErrNoAvailableMoves = errors.New("no available moves")

type BotService interface {
	MakeTurn(game *entity.Game) error
}

// botService plays O with the greedy win/block/first-free heuristic.
type botService struct{}

func NewBotService() BotService {
	return &botService{}
}

func (that *botService) MakeTurn(game *entity.Game) error {
	cell, ok := tictactoe.SelectComputerMove(game.Board)
	if !ok {
		return ErrNoAvailableMoves
	}

	if err := tictactoe.MakeMove(game, entity.PieceO, cell); err != nil {
		return fmt.Errorf("bot failed to make turn: %w", err)
	}

	return nil
}
