package websocket

import (
	"testing"

	"github.com/rocketscienceinc/murda-backend/internal/entity"
	"github.com/rocketscienceinc/murda-backend/internal/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func maskedGame() *entity.Game {
	return &entity.Game{
		ID:     "ABC123",
		Status: entity.StatusInGame,
		Phase:  entity.PhaseNight,
		Turn:   1,
		Players: []*entity.Player{
			{ID: "m1", Role: entity.RoleMafia, IsAlive: true, Position: &geo.Point{Latitude: 1, Longitude: 1}},
			{ID: "m2", Role: entity.RoleMafia, IsAlive: true},
			{ID: "d1", Role: entity.RoleDetective, IsAlive: true, Position: &geo.Point{Latitude: 2, Longitude: 2}},
			{ID: "c1", Role: entity.RoleCivilian, IsAlive: true},
		},
		Actions: []entity.Action{
			{Type: entity.ActionKill, ActorID: "m1", TargetID: "c2", Turn: 1},
			{Type: entity.ActionInvestigate, ActorID: "d1", TargetID: "m1", Turn: 1, Result: entity.TeamAggressors},
		},
	}
}

func rolesByID(game *entity.Game) map[string]entity.Role {
	roles := make(map[string]entity.Role, len(game.Players))
	for _, player := range game.Players {
		roles[player.ID] = player.Role
	}
	return roles
}

func TestMaskGameFor(t *testing.T) {
	t.Run("A civilian sees only their own role", func(t *testing.T) {
		// Given: a running game
		game := maskedGame()

		// When: masking for the civilian
		masked := maskGameFor(game, "c1")

		// Then: every other role is hidden
		roles := rolesByID(masked)
		assert.Equal(t, entity.RoleCivilian, roles["c1"])
		assert.Empty(t, roles["m1"])
		assert.Empty(t, roles["m2"])
		assert.Empty(t, roles["d1"])
	})

	t.Run("Aggressors see their teammates", func(t *testing.T) {
		game := maskedGame()

		masked := maskGameFor(game, "m1")

		roles := rolesByID(masked)
		assert.Equal(t, entity.RoleMafia, roles["m1"])
		assert.Equal(t, entity.RoleMafia, roles["m2"])
		assert.Empty(t, roles["d1"])
		assert.Empty(t, roles["c1"])
	})

	t.Run("Positions are never included", func(t *testing.T) {
		game := maskedGame()

		masked := maskGameFor(game, "m1")

		for _, player := range masked.Players {
			assert.Nil(t, player.Position, "player %s", player.ID)
		}
	})

	t.Run("Investigation results stay with the investigator", func(t *testing.T) {
		game := maskedGame()

		// When: masking for the civilian and for the detective
		civilianView := maskGameFor(game, "c1")
		detectiveView := maskGameFor(game, "d1")

		// Then: the civilian sees only the kill, the detective sees both
		require.Len(t, civilianView.Actions, 1)
		assert.Equal(t, entity.ActionKill, civilianView.Actions[0].Type)

		require.Len(t, detectiveView.Actions, 2)
		assert.Equal(t, entity.TeamAggressors, detectiveView.Actions[1].Result)
	})

	t.Run("An ended game reveals everything", func(t *testing.T) {
		game := maskedGame()
		game.Status = entity.StatusEnded
		game.Winner = entity.TeamAggressors

		masked := maskGameFor(game, "c1")

		roles := rolesByID(masked)
		assert.Equal(t, entity.RoleMafia, roles["m1"])
		assert.Equal(t, entity.RoleDetective, roles["d1"])
		assert.Len(t, masked.Actions, 2)
	})

	t.Run("Masking does not touch the source game", func(t *testing.T) {
		game := maskedGame()

		_ = maskGameFor(game, "c1")

		assert.Equal(t, entity.RoleMafia, game.Players[0].Role)
		assert.NotNil(t, game.Players[0].Position)
		assert.Len(t, game.Actions, 2)
	})
}
