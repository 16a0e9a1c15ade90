package tictactoe

import (
	"github.com/rocketscienceinc/tictactoe-api/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-api/internal/entity"
)

// MakeMove validates and applies a single move of piece at pos.
// Nothing is mutated when an error is returned.
func MakeMove(gameInstance *entity.Game, piece entity.Cell, pos entity.Position) error {
	if gameInstance.IsFinished() {
		return apperror.ErrGameFinished
	}

	if err := validateMove(gameInstance, piece, pos); err != nil {
		return err
	}

	gameInstance.Board.Set(pos, piece)
	updateGameStatus(gameInstance, piece)

	return nil
}

// validateMove - the occupied check runs first, so a wrong-turn move onto a taken cell reports ErrCellOccupied.
func validateMove(gameInstance *entity.Game, piece entity.Cell, pos entity.Position) error {
	if !pos.Valid() || gameInstance.Board.Cell(pos) != entity.EmptyCell {
		return apperror.ErrCellOccupied
	}

	if gameInstance.CurrentTurn != piece {
		return apperror.ErrNotYourTurn
	}

	return nil
}

// updateGameStatus - checks the outcome after piece was placed.
func updateGameStatus(gameInstance *entity.Game, piece entity.Cell) {
	switch {
	case HasWon(gameInstance.Board, piece):
		gameInstance.Victory = piece
		gameInstance.Score.Add(piece)
	case gameInstance.Board.IsFull():
		gameInstance.Draw = true
	default:
		gameInstance.CurrentTurn = piece.Opponent()
	}
}

// HasWon reports whether some winning line is entirely piece.
func HasWon(board entity.Board, piece entity.Cell) bool {
	for _, line := range entity.WinLines {
		if board.Cell(line[0]) == piece && board.Cell(line[1]) == piece && board.Cell(line[2]) == piece {
			return true
		}
	}

	return false
}
