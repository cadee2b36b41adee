package entity

import (
	"testing"

	"github.com/rocketscienceinc/murda-backend/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameStatusMethods(t *testing.T) {
	t.Run("IsLobby returns true when game status is lobby", func(t *testing.T) {
		// Given: a game in the lobby
		game := &Game{Status: StatusLobby}

		// Then: only the lobby predicate holds
		assert.True(t, game.IsLobby())
		assert.False(t, game.IsInGame())
		assert.False(t, game.IsEnded())
	})

	t.Run("IsInGame returns true when game status is in_game", func(t *testing.T) {
		game := &Game{Status: StatusInGame}

		assert.True(t, game.IsInGame())
	})

	t.Run("IsEnded returns true when game status is ended", func(t *testing.T) {
		game := &Game{Status: StatusEnded}

		assert.True(t, game.IsEnded())
	})
}

func TestGame_ConfirmInGameState(t *testing.T) {
	t.Run("Returns nil when game is running", func(t *testing.T) {
		game := &Game{Status: StatusInGame}

		assert.NoError(t, game.ConfirmInGameState())
	})

	t.Run("Returns ErrGameNotStarted when game is in the lobby", func(t *testing.T) {
		game := &Game{Status: StatusLobby}

		assert.ErrorIs(t, game.ConfirmInGameState(), apperror.ErrGameNotStarted)
	})

	t.Run("Returns ErrGameEnded when game is over", func(t *testing.T) {
		game := &Game{Status: StatusEnded}

		assert.ErrorIs(t, game.ConfirmInGameState(), apperror.ErrGameEnded)
	})

	t.Run("Returns error for unknown game status", func(t *testing.T) {
		game := &Game{Status: "limbo"}

		err := game.ConfirmInGameState()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "limbo")
	})
}

func TestGame_AliveByTeam(t *testing.T) {
	t.Run("Counts living players per win-condition side", func(t *testing.T) {
		// Given: a mixed game with one eliminated player per side
		game := &Game{
			Players: []*Player{
				{ID: "m1", Role: RoleMafia, IsAlive: true},
				{ID: "m2", Role: RoleMafia, IsAlive: false},
				{ID: "d1", Role: RoleDetective, IsAlive: true},
				{ID: "c1", Role: RoleCivilian, IsAlive: true},
				{ID: "c2", Role: RoleCivilian, IsAlive: false},
			},
		}

		// When: counting the teams
		aggressors, targets := game.AliveByTeam()

		// Then: only the living are counted
		assert.Equal(t, 1, aggressors)
		assert.Equal(t, 2, targets)
	})
}

func TestGame_VotesForTurn(t *testing.T) {
	t.Run("Filters votes to the requested turn in dispatch order", func(t *testing.T) {
		// Given: an action log mixing turns and action types
		game := &Game{
			Actions: []Action{
				{Type: ActionVote, ActorID: "a", Turn: 1},
				{Type: ActionKill, ActorID: "b", Turn: 2},
				{Type: ActionVote, ActorID: "c", Turn: 2},
				{Type: ActionVote, ActorID: "d", Turn: 2},
			},
		}

		// When: pulling turn-two votes
		votes := game.VotesForTurn(2)

		// Then: only that turn's ballots come back, in order
		require.Len(t, votes, 2)
		assert.Equal(t, "c", votes[0].ActorID)
		assert.Equal(t, "d", votes[1].ActorID)
	})
}

func TestPlayer_Eliminate(t *testing.T) {
	t.Run("Eliminate flips isAlive exactly once", func(t *testing.T) {
		// Given: a living player
		player := &Player{ID: "p1", IsAlive: true, Status: PlayerPlaying}

		// When: eliminating them
		player.Eliminate()

		// Then: they are dead and stay dead
		assert.False(t, player.IsAlive)
		assert.Equal(t, PlayerEliminated, player.Status)

		player.Eliminate()
		assert.False(t, player.IsAlive)
	})
}

func TestRole_Team(t *testing.T) {
	t.Run("Aggressor roles are on the aggressor team", func(t *testing.T) {
		assert.Equal(t, TeamAggressors, RoleMafia.Team())
		assert.Equal(t, TeamAggressors, RoleHunter.Team())
	})

	t.Run("Everyone else is a target", func(t *testing.T) {
		assert.Equal(t, TeamTargets, RoleDetective.Team())
		assert.Equal(t, TeamTargets, RoleCivilian.Team())
		assert.Equal(t, TeamTargets, RoleSurvivor.Team())
	})
}

func TestRoleVocabularies(t *testing.T) {
	t.Run("Classic ruleset maps mafia, detective, civilian", func(t *testing.T) {
		aggressor, err := AggressorRole(RulesetClassic)
		require.NoError(t, err)
		assert.Equal(t, RoleMafia, aggressor)

		special, ok := SpecialRole(RulesetClassic)
		assert.True(t, ok)
		assert.Equal(t, RoleDetective, special)

		base, err := BaseRole(RulesetClassic)
		require.NoError(t, err)
		assert.Equal(t, RoleCivilian, base)
	})

	t.Run("Manhunt ruleset maps hunter, survivor and no special", func(t *testing.T) {
		aggressor, err := AggressorRole(RulesetManhunt)
		require.NoError(t, err)
		assert.Equal(t, RoleHunter, aggressor)

		_, ok := SpecialRole(RulesetManhunt)
		assert.False(t, ok)

		base, err := BaseRole(RulesetManhunt)
		require.NoError(t, err)
		assert.Equal(t, RoleSurvivor, base)
	})

	t.Run("Unknown rulesets are rejected", func(t *testing.T) {
		_, err := AggressorRole("poker")
		assert.ErrorIs(t, err, apperror.ErrUnknownRuleset)

		_, err = BaseRole("poker")
		assert.ErrorIs(t, err, apperror.ErrUnknownRuleset)
	})
}
