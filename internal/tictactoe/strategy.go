package tictactoe

import "github.com/rocketscienceinc/tictactoe-api/internal/entity"

// FindStrategicMove returns the empty cell of the first line, in entity.WinLines order,
// that holds two of piece and one empty cell.
func FindStrategicMove(board entity.Board, piece entity.Cell) (entity.Position, bool) {
	for _, line := range entity.WinLines {
		var (
			own   int
			empty int
			free  entity.Position
		)

		for _, pos := range line {
			switch board.Cell(pos) {
			case piece:
				own++
			case entity.EmptyCell:
				empty++
				free = pos
			}
		}

		if own == 2 && empty == 1 {
			return free, true
		}
	}

	return entity.Position{}, false
}

// SelectComputerMove picks the reply for O: win if possible, else block X, else the first
// empty cell in row-major order. It reports false on a full board.
func SelectComputerMove(board entity.Board) (entity.Position, bool) {
	if pos, ok := FindStrategicMove(board, entity.PieceO); ok {
		return pos, true
	}

	if pos, ok := FindStrategicMove(board, entity.PieceX); ok {
		return pos, true
	}

	for x, row := range board {
		for y, cell := range row {
			if cell == entity.EmptyCell {
				return entity.Position{X: x, Y: y}, true
			}
		}
	}

	return entity.Position{}, false
}
