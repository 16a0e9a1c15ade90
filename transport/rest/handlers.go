package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rocketscienceinc/tictactoe-api/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-api/internal/entity"
)

const (
	msgNotYourTurn    = "Not your turn"
	msgPositionTaken  = "Position already taken"
	msgInternalServer = "Internal Server Error"
)

type gameUseCase interface {
	GetState(ctx context.Context, sessionID string) (*entity.Game, error)
	MakeMove(ctx context.Context, sessionID string, piece entity.Cell, pos entity.Position) (*entity.Game, error)
	Restart(ctx context.Context, sessionID string) (*entity.Game, error)
	Reset(ctx context.Context, sessionID string) (*entity.Game, error)
}

type errorResponse struct {
	Error string `json:"error"`
}

type resetResponse struct {
	CurrentTurn entity.Cell `json:"currentTurn"`
}

type moveRequest struct {
	X json.Number `json:"x"`
	Y json.Number `json:"y"`
}

type gameHandler struct {
	logger *slog.Logger
	game   gameUseCase
}

func (that *gameHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	game, err := that.game.GetState(r.Context(), sessionID(r.Context()))
	if err != nil {
		that.writeError(w, "GetGame", err)
		return
	}

	writeJSON(w, http.StatusOK, game)
}

func (that *gameHandler) RestartGame(w http.ResponseWriter, r *http.Request) {
	game, err := that.game.Restart(r.Context(), sessionID(r.Context()))
	if err != nil {
		that.writeError(w, "RestartGame", err)
		return
	}

	writeJSON(w, http.StatusOK, game)
}

func (that *gameHandler) MakeMove(w http.ResponseWriter, r *http.Request) {
	piece := entity.Cell(chi.URLParam(r, "piece"))

	game, err := that.game.MakeMove(r.Context(), sessionID(r.Context()), piece, readPosition(r))
	if err != nil {
		that.writeError(w, "MakeMove", err)
		return
	}

	writeJSON(w, http.StatusOK, game)
}

func (that *gameHandler) ResetGame(w http.ResponseWriter, r *http.Request) {
	game, err := that.game.Reset(r.Context(), sessionID(r.Context()))
	if err != nil {
		that.writeError(w, "ResetGame", err)
		return
	}

	writeJSON(w, http.StatusOK, resetResponse{CurrentTurn: game.CurrentTurn})
}

func (that *gameHandler) writeError(w http.ResponseWriter, method string, err error) {
	switch {
	case errors.Is(err, apperror.ErrNotYourTurn):
		writeJSON(w, http.StatusNotAcceptable, errorResponse{Error: msgNotYourTurn})
	case errors.Is(err, apperror.ErrCellOccupied):
		writeJSON(w, http.StatusConflict, errorResponse{Error: msgPositionTaken})
	default:
		that.logger.Error("request failed", "method", method, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: msgInternalServer})
	}
}

// readPosition accepts a JSON body or form values, falling back to the query string when
// the body carries no coordinates. Anything that is not a pair of integers becomes an
// off-board position, which the game reports as taken.
func readPosition(r *http.Request) entity.Position {
	invalid := entity.Position{X: -1, Y: -1}

	var rawX, rawY string

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		rawX, rawY = r.FormValue("x"), r.FormValue("y")
	default:
		var req moveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			rawX, rawY = req.X.String(), req.Y.String()
		}
	}

	if rawX == "" && rawY == "" {
		query := r.URL.Query()
		rawX, rawY = query.Get("x"), query.Get("y")
	}

	posX, errX := strconv.Atoi(rawX)
	posY, errY := strconv.Atoi(rawY)
	if errX != nil || errY != nil {
		return invalid
	}

	return entity.Position{X: posX, Y: posY}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
