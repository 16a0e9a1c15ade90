package repository

import (
	"testing"
	"time"

	"github.com/rocketscienceinc/tictactoe-api/internal/entity"
	"github.com/rocketscienceinc/tictactoe-api/testing/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sessionTTL = time.Hour

func TestGameRepository_CreateOrUpdate(t *testing.T) {
	ctx, st := suite.New(t)

	gameRepo := NewGameRepository(st.Storage, sessionTTL)

	// Given: a new game
	game := entity.NewGame()

	// When: CreateOrUpdate is called
	err := gameRepo.CreateOrUpdate(ctx, "session-1", game)

	// Then: no error should be returned, and the key expires with the session
	require.NoError(t, err)

	ttl, err := st.Storage.TTL(ctx, "game:session-1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, sessionTTL)
}

func TestGameRepository_GetByID(t *testing.T) {
	t.Run("GetByID_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		gameRepo := NewGameRepository(st.Storage, sessionTTL)

		// Given: a stored game in progress
		game := entity.NewGame()
		game.Board.Set(entity.Position{X: 1, Y: 1}, entity.PieceX)
		game.CurrentTurn = entity.PieceO
		game.Score = entity.Score{X: 3, O: 1}

		err := gameRepo.CreateOrUpdate(ctx, "session-1", game)
		require.NoError(t, err)

		// When: GetByID is called with the session id
		retrievedGame, err := gameRepo.GetByID(ctx, "session-1")

		// Then: the retrieved game should match the saved game
		require.NoError(t, err)
		require.Equal(t, game, retrievedGame)
	})

	t.Run("GetByID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		gameRepo := NewGameRepository(st.Storage, sessionTTL)

		// When: GetByID is called with an unknown session
		retrievedGame, err := gameRepo.GetByID(ctx, "9999999")

		// Then: an ErrGameNotFound error should be returned
		require.ErrorIs(t, err, ErrGameNotFound)
		assert.Nil(t, retrievedGame)
	})

	t.Run("Sessions are isolated", func(t *testing.T) {
		ctx, st := suite.New(t)

		gameRepo := NewGameRepository(st.Storage, sessionTTL)

		// Given: two sessions with different scores
		first := entity.NewGame()
		first.Score.X = 1
		second := entity.NewGame()
		second.Score.O = 5

		require.NoError(t, gameRepo.CreateOrUpdate(ctx, "a", first))
		require.NoError(t, gameRepo.CreateOrUpdate(ctx, "b", second))

		// Then: each session reads back its own game
		got, err := gameRepo.GetByID(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, first, got)

		got, err = gameRepo.GetByID(ctx, "b")
		require.NoError(t, err)
		assert.Equal(t, second, got)
	})
}

func TestGameRepository_DeleteByID(t *testing.T) {
	t.Run("DeleteByID_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		gameRepo := NewGameRepository(st.Storage, sessionTTL)

		// Given: a stored game
		err := gameRepo.CreateOrUpdate(ctx, "session-1", entity.NewGame())
		require.NoError(t, err)

		// When: DeleteByID is called
		err = gameRepo.DeleteByID(ctx, "session-1")

		// Then: no error should be returned and the game is gone
		require.NoError(t, err)

		_, err = gameRepo.GetByID(ctx, "session-1")
		require.ErrorIs(t, err, ErrGameNotFound)
	})

	t.Run("DeleteByID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		gameRepo := NewGameRepository(st.Storage, sessionTTL)

		// When: DeleteByID is called with an unknown session
		err := gameRepo.DeleteByID(ctx, "9999999")

		// Then: an ErrGameNotFound error should be returned
		require.ErrorIs(t, err, ErrGameNotFound)
	})
}
