package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotYourTurn  = errors.New("it's not your turn")
	ErrCellOccupied = errors.New("cell is already occupied")

	// ErrGameFinished is reported as a turn violation: nobody moves on a concluded board.
	ErrGameFinished = fmt.Errorf("%w: game is already finished", ErrNotYourTurn)
)
