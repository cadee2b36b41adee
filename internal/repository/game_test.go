package repository

import (
	"testing"

	"github.com/rocketscienceinc/murda-backend/internal/entity"
	"github.com/rocketscienceinc/murda-backend/testing/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameRepository_CreateOrUpdate(t *testing.T) {
	ctx, st := suite.New(t)

	gameRepo := NewGameRepository(st.Storage)

	// Given: a lobby with a code and ruleset
	game := entity.NewGame("ABC123", entity.RulesetClassic)

	// When: CreateOrUpdate is called
	err := gameRepo.CreateOrUpdate(ctx, game)

	// Then: no error should be returned, and game is stored
	require.NoError(t, err)
}

func TestGameRepository_GetByID(t *testing.T) {
	t.Run("GetByID_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		gameRepo := NewGameRepository(st.Storage)

		// Given: a stored game with players and an action log
		game := entity.NewGame("ABC123", entity.RulesetManhunt)
		game.Status = entity.StatusInGame
		game.Phase = entity.PhaseNight
		game.Turn = 3
		game.Players = []*entity.Player{
			{ID: "p1", Name: "Ada", Role: entity.RoleHunter, IsAlive: true, Status: entity.PlayerPlaying},
			{ID: "p2", Name: "Brin", Role: entity.RoleSurvivor, IsAlive: true, Status: entity.PlayerPlaying},
		}
		game.Actions = []entity.Action{
			{Type: entity.ActionTag, ActorID: "p1", TargetID: "p2", Turn: 2},
		}
		require.NoError(t, gameRepo.CreateOrUpdate(ctx, game))

		// When: loading it back
		loaded, err := gameRepo.GetByID(ctx, "ABC123")

		// Then: the round trip preserves the state tree
		require.NoError(t, err)
		assert.Equal(t, game.Status, loaded.Status)
		assert.Equal(t, game.Turn, loaded.Turn)
		require.Len(t, loaded.Players, 2)
		assert.Equal(t, entity.RoleHunter, loaded.Players[0].Role)
		require.Len(t, loaded.Actions, 1)
		assert.Equal(t, entity.ActionTag, loaded.Actions[0].Type)
	})

	t.Run("GetByID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		gameRepo := NewGameRepository(st.Storage)

		// When: loading a game that was never stored
		_, err := gameRepo.GetByID(ctx, "NOPE")

		// Then: the sentinel not-found error comes back
		assert.ErrorIs(t, err, ErrGameNotFound)
	})
}

func TestGameRepository_DeleteByID(t *testing.T) {
	ctx, st := suite.New(t)

	gameRepo := NewGameRepository(st.Storage)

	// Given: a stored game
	game := entity.NewGame("ABC123", entity.RulesetClassic)
	require.NoError(t, gameRepo.CreateOrUpdate(ctx, game))

	// When: deleting it
	require.NoError(t, gameRepo.DeleteByID(ctx, "ABC123"))

	// Then: it is gone
	_, err := gameRepo.GetByID(ctx, "ABC123")
	assert.ErrorIs(t, err, ErrGameNotFound)
}

func TestGameRepository_Exists(t *testing.T) {
	ctx, st := suite.New(t)

	gameRepo := NewGameRepository(st.Storage)

	// Given: one stored game
	require.NoError(t, gameRepo.CreateOrUpdate(ctx, entity.NewGame("ABC123", entity.RulesetClassic)))

	// When/Then: existence reflects storage
	exists, err := gameRepo.Exists(ctx, "ABC123")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = gameRepo.Exists(ctx, "XYZ789")
	require.NoError(t, err)
	assert.False(t, exists)
}
