package entity

const (
	EmptyCell Cell = ""
	PieceX    Cell = "x"
	PieceO    Cell = "o"
)

const boardSize = 3

// Cell is the content of one board position. A non-empty cell doubles as a player piece.
type Cell string

// IsPiece reports whether the cell is one of the two player pieces.
func (that Cell) IsPiece() bool {
	return that == PieceX || that == PieceO
}

// Opponent returns the other piece.
func (that Cell) Opponent() Cell {
	if that == PieceX {
		return PieceO
	}
	return PieceX
}

// Position addresses a cell as board[X][Y], X being the row.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (that Position) Valid() bool {
	return that.X >= 0 && that.X < boardSize && that.Y >= 0 && that.Y < boardSize
}

// WinLines lists the eight winning lines: rows, then columns, then the two diagonals.
// Callers rely on this order to break ties.
var WinLines = [8][3]Position{
	{{0, 0}, {0, 1}, {0, 2}},
	{{1, 0}, {1, 1}, {1, 2}},
	{{2, 0}, {2, 1}, {2, 2}},
	{{0, 0}, {1, 0}, {2, 0}},
	{{0, 1}, {1, 1}, {2, 1}},
	{{0, 2}, {1, 2}, {2, 2}},
	{{0, 0}, {1, 1}, {2, 2}},
	{{0, 2}, {1, 1}, {2, 0}},
}

type Board [boardSize][boardSize]Cell

func NewBoard() Board {
	return Board{}
}

// Cell returns the content at pos. pos must be valid.
func (that Board) Cell(pos Position) Cell {
	return that[pos.X][pos.Y]
}

// Set puts piece at pos. pos must be valid.
func (that *Board) Set(pos Position, piece Cell) {
	that[pos.X][pos.Y] = piece
}

func (that Board) IsFull() bool {
	for _, row := range that {
		for _, cell := range row {
			if cell == EmptyCell {
				return false
			}
		}
	}

	return true
}

type Score struct {
	X int `json:"x"`
	O int `json:"o"`
}

// Add credits one win to piece.
func (that *Score) Add(piece Cell) {
	switch piece {
	case PieceX:
		that.X++
	case PieceO:
		that.O++
	}
}

// Game is the per-session aggregate: board, turn, score and outcome.
type Game struct {
	Board       Board `json:"board"`
	Score       Score `json:"score"`
	CurrentTurn Cell  `json:"currentTurn"`
	Victory     Cell  `json:"victory"`
	Draw        bool  `json:"draw"`
}

// NewGame returns a fully reset game: empty board, zero score, X to move.
func NewGame() *Game {
	return &Game{
		Board:       NewBoard(),
		CurrentTurn: PieceX,
		Victory:     EmptyCell,
	}
}

// Restart clears the board and the outcome but keeps the score. X always opens.
func (that *Game) Restart() {
	that.Board = NewBoard()
	that.Victory = EmptyCell
	that.Draw = false
	that.CurrentTurn = PieceX
}

// Reset reinitializes the whole game, score included.
func (that *Game) Reset() {
	that.Restart()
	that.Score = Score{}
}

// IsFinished reports whether the board is frozen until the next restart.
func (that *Game) IsFinished() bool {
	return that.Victory.IsPiece() || that.Draw
}
