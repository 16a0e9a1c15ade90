package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rocketscienceinc/tictactoe-api/internal/entity"
	"github.com/rocketscienceinc/tictactoe-api/internal/pkg"
	"github.com/rocketscienceinc/tictactoe-api/internal/repository"
	"github.com/rocketscienceinc/tictactoe-api/internal/service"
	"github.com/rocketscienceinc/tictactoe-api/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testCookieName = "test_session"
	testSession    = "3e6b9f0a-2c4d-4e8f-a1b2-c3d4e5f60718"
)

func newTestServer(t *testing.T, game gameUseCase) *httptest.Server {
	t.Helper()

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	if game == nil {
		game = usecase.NewGameManager(logger, repository.NewMemoryGameRepository(), service.NewBotService())
	}

	server := httptest.NewServer(New(logger, game, testCookieName, time.Hour).Handler())
	t.Cleanup(server.Close)

	return server
}

func dial(t *testing.T, server *httptest.Server, header http.Header) (*websocket.Conn, *http.Response) {
	t.Helper()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"

	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn, resp
}

func request(t *testing.T, conn *websocket.Conn, action string, payload any) ResponsePayload {
	t.Helper()

	message := Message{Action: action}
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		message.Payload = raw
	}

	require.NoError(t, conn.WriteJSON(message))

	var reply Message
	require.NoError(t, conn.ReadJSON(&reply))
	require.Equal(t, action, reply.Action)

	var response ResponsePayload
	require.NoError(t, json.Unmarshal(reply.Payload, &response))

	return response
}

func TestUpgrade(t *testing.T) {
	t.Run("New session gets a cookie", func(t *testing.T) {
		server := newTestServer(t, nil)

		_, resp := dial(t, server, nil)

		var found bool
		for _, cookie := range resp.Cookies() {
			if cookie.Name == testCookieName {
				found = true
				assert.NotEmpty(t, cookie.Value)
			}
		}
		assert.True(t, found)
	})

	t.Run("Existing session is reused", func(t *testing.T) {
		server := newTestServer(t, nil)

		// Given: a session that already made a move
		header := http.Header{}
		header.Set(pkg.SessionHeader, testSession)

		first, _ := dial(t, server, header)
		request(t, first, actionMove, map[string]any{"piece": "x", "x": 1, "y": 1})

		// When: a second connection presents the same session
		second, resp := dial(t, server, header)
		response := request(t, second, actionState, nil)

		// Then: it sees the same game and no new cookie is issued
		require.NotNil(t, response.Game)
		assert.Equal(t, entity.PieceX, response.Game.Board[1][1])
		assert.Empty(t, resp.Cookies())
	})
}

func TestUpgradeRefreshesCookie(t *testing.T) {
	server := newTestServer(t, nil)

	// Given: a client reconnecting with the cookie of an existing session
	header := http.Header{}
	header.Set("Cookie", (&http.Cookie{Name: testCookieName, Value: testSession}).String())

	// When: it opens a new connection
	_, resp := dial(t, server, header)

	// Then: the same session cookie is re-issued with a fresh expiry
	cookies := resp.Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, testSession, cookies[0].Value)
	assert.Equal(t, int(time.Hour.Seconds()), cookies[0].MaxAge)
	assert.WithinDuration(t, time.Now().Add(time.Hour), cookies[0].Expires, time.Minute)
}

func TestActions(t *testing.T) {
	t.Run("State of a new session", func(t *testing.T) {
		conn, _ := dial(t, newTestServer(t, nil), nil)

		response := request(t, conn, actionState, nil)

		require.NotNil(t, response.Game)
		assert.Empty(t, response.Error)
		assert.Equal(t, entity.NewGame(), response.Game)
	})

	t.Run("Move gets the computer reply", func(t *testing.T) {
		conn, _ := dial(t, newTestServer(t, nil), nil)

		response := request(t, conn, actionMove, map[string]any{"piece": "x", "x": 0, "y": 0})

		require.NotNil(t, response.Game)
		assert.Equal(t, entity.Board{{entity.PieceX, entity.PieceO, entity.EmptyCell}, {}, {}}, response.Game.Board)
		assert.Equal(t, entity.PieceX, response.Game.CurrentTurn)
	})

	t.Run("Coordinates as strings", func(t *testing.T) {
		conn, _ := dial(t, newTestServer(t, nil), nil)

		response := request(t, conn, actionMove, map[string]any{"piece": "x", "x": "2", "y": "2"})

		require.NotNil(t, response.Game)
		assert.Equal(t, entity.PieceX, response.Game.Board[2][2])
	})

	t.Run("Wrong turn", func(t *testing.T) {
		conn, _ := dial(t, newTestServer(t, nil), nil)

		response := request(t, conn, actionMove, map[string]any{"piece": "o", "x": 0, "y": 0})

		assert.Nil(t, response.Game)
		assert.Equal(t, "Not your turn", response.Error)
	})

	t.Run("Occupied and malformed positions", func(t *testing.T) {
		conn, _ := dial(t, newTestServer(t, nil), nil)
		request(t, conn, actionMove, map[string]any{"piece": "x", "x": 0, "y": 0})

		for _, payload := range []any{
			map[string]any{"piece": "x", "x": 0, "y": 0},
			map[string]any{"piece": "x", "x": 5, "y": 0},
			map[string]any{"piece": "x", "x": "a", "y": 0},
			map[string]any{"piece": "x"},
			nil,
		} {
			response := request(t, conn, actionMove, payload)

			assert.Equal(t, "Position already taken", response.Error, "payload %v", payload)
		}
	})

	t.Run("Restart and reset", func(t *testing.T) {
		conn, _ := dial(t, newTestServer(t, nil), nil)
		request(t, conn, actionMove, map[string]any{"piece": "x", "x": 1, "y": 1})

		restarted := request(t, conn, actionRestart, nil)
		require.NotNil(t, restarted.Game)
		assert.Equal(t, entity.NewBoard(), restarted.Game.Board)
		assert.Equal(t, entity.PieceX, restarted.Game.CurrentTurn)

		reset := request(t, conn, actionReset, nil)
		require.NotNil(t, reset.Game)
		assert.Equal(t, entity.NewGame(), reset.Game)
	})

	t.Run("Unknown action", func(t *testing.T) {
		conn, _ := dial(t, newTestServer(t, nil), nil)

		response := request(t, conn, "game:surrender", nil)

		assert.Equal(t, ErrUnknownAction.Error(), response.Error)
	})

	t.Run("Internal errors are masked", func(t *testing.T) {
		conn, _ := dial(t, newTestServer(t, failingGame{}), nil)

		response := request(t, conn, actionState, nil)

		assert.Equal(t, "Internal Server Error", response.Error)
	})
}

type failingGame struct{}

var errBroken = errors.New("storage is broken")

func (failingGame) GetState(context.Context, string) (*entity.Game, error) {
	return nil, errBroken
}

func (failingGame) MakeMove(context.Context, string, entity.Cell, entity.Position) (*entity.Game, error) {
	return nil, errBroken
}

func (failingGame) Restart(context.Context, string) (*entity.Game, error) {
	return nil, errBroken
}

func (failingGame) Reset(context.Context, string) (*entity.Game, error) {
	return nil, errBroken
}
