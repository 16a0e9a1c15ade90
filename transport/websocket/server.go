package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rocketscienceinc/tictactoe-api/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-api/internal/entity"
	"github.com/rocketscienceinc/tictactoe-api/internal/pkg"
)

const (
	actionState   = "game:state"
	actionMove    = "game:move"
	actionRestart = "game:restart"
	actionReset   = "game:reset"

	maxMessageSize  = 4096
	shutdownTimeout = 5 * time.Second
)

var ErrUnknownAction = errors.New("unknown action")

type gameUseCase interface {
	GetState(ctx context.Context, sessionID string) (*entity.Game, error)
	MakeMove(ctx context.Context, sessionID string, piece entity.Cell, pos entity.Position) (*entity.Game, error)
	Restart(ctx context.Context, sessionID string) (*entity.Game, error)
	Reset(ctx context.Context, sessionID string) (*entity.Game, error)
}

// Message is the envelope for both directions: the reply repeats the request action.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type ResponsePayload struct {
	Game  *entity.Game `json:"game,omitempty"`
	Error string       `json:"error,omitempty"`
}

type movePayload struct {
	Piece entity.Cell `json:"piece"`
	X     json.Number `json:"x"`
	Y     json.Number `json:"y"`
}

type handlerFunc func(ctx context.Context, sessionID string, payload json.RawMessage) (*entity.Game, error)

type Server struct {
	logger     *slog.Logger
	game       gameUseCase
	upgrader   websocket.Upgrader
	cookieName string
	sessionTTL time.Duration

	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, game gameUseCase, cookieName string, sessionTTL time.Duration) *Server {
	server := &Server{
		logger:     logger.With("component", "websocket"),
		game:       game,
		cookieName: cookieName,
		sessionTTL: sessionTTL,
		handlers:   make(map[string]handlerFunc),
	}

	server.handlers[actionState] = server.handleState
	server.handlers[actionMove] = server.handleMove
	server.handlers[actionRestart] = server.handleRestart
	server.handlers[actionReset] = server.handleReset

	return server
}

func (that *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", that.upgradeToWebSocket)

	return mux
}

// Start - starts WebSocket server and stops it when ctx is canceled.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           that.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// hijacked connections are not tracked by Shutdown; their read loops end with the process
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server stopped: %w", err)
	}

	return nil
}

// upgradeToWebSocket - upgrades the connection and binds it to the client session.
func (that *Server) upgradeToWebSocket(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "upgradeToWebSocket")

	sessionID, source := pkg.SessionFromRequest(req, that.cookieName)

	header := http.Header{}
	if source != pkg.SessionFromHeader {
		header.Add("Set-Cookie", pkg.NewSessionCookie(that.cookieName, sessionID, that.sessionTTL).String())
	}

	if source == pkg.SessionNew {
		log.Info("session cookie not found, new one created", "session", sessionID)
	}

	conn, err := that.upgrader.Upgrade(writer, req, header)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	defer conn.Close()

	conn.SetReadLimit(maxMessageSize)

	log.Info("WebSocket connection established", "session", sessionID)

	if err = that.handleMessages(req.Context(), conn, sessionID); err != nil {
		log.Error("error handling messages", "error", err)
	}
}

// handleMessages - processes messages until the client goes away.
func (that *Server) handleMessages(ctx context.Context, conn *websocket.Conn, sessionID string) error {
	log := that.logger.With("method", "handleMessages", "session", sessionID)

	for {
		var message Message
		if err := conn.ReadJSON(&message); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}

			return fmt.Errorf("failed to read message: %w", err)
		}

		var response ResponsePayload

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Warn("unknown action", "action", message.Action)
			response.Error = ErrUnknownAction.Error()
		} else {
			game, err := handler(ctx, sessionID, message.Payload)
			if err != nil {
				response.Error = that.errorText(message.Action, err)
			} else {
				response.Game = game
			}
		}

		if err := that.sendMessage(conn, message.Action, response); err != nil {
			return err
		}
	}
}

func (that *Server) sendMessage(conn *websocket.Conn, action string, payload ResponsePayload) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}

	if err = conn.WriteJSON(Message{Action: action, Payload: payloadJSON}); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

func (that *Server) handleState(ctx context.Context, sessionID string, _ json.RawMessage) (*entity.Game, error) {
	return that.game.GetState(ctx, sessionID)
}

func (that *Server) handleMove(ctx context.Context, sessionID string, payload json.RawMessage) (*entity.Game, error) {
	var move movePayload
	pos := entity.Position{X: -1, Y: -1}

	if err := json.Unmarshal(payload, &move); err == nil {
		posX, errX := strconv.Atoi(move.X.String())
		posY, errY := strconv.Atoi(move.Y.String())
		if errX == nil && errY == nil {
			pos = entity.Position{X: posX, Y: posY}
		}
	}

	return that.game.MakeMove(ctx, sessionID, move.Piece, pos)
}

func (that *Server) handleRestart(ctx context.Context, sessionID string, _ json.RawMessage) (*entity.Game, error) {
	return that.game.Restart(ctx, sessionID)
}

func (that *Server) handleReset(ctx context.Context, sessionID string, _ json.RawMessage) (*entity.Game, error) {
	return that.game.Reset(ctx, sessionID)
}

func (that *Server) errorText(action string, err error) string {
	switch {
	case errors.Is(err, apperror.ErrNotYourTurn):
		return "Not your turn"
	case errors.Is(err, apperror.ErrCellOccupied):
		return "Position already taken"
	default:
		that.logger.Error("error processing message", "action", action, "error", err)
		return "Internal Server Error"
	}
}
