package roles

import (
	"fmt"
	"testing"

	"github.com/rocketscienceinc/murda-backend/internal/apperror"
	"github.com/rocketscienceinc/murda-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistribution(t *testing.T) {
	t.Run("Eight classic players get two mafia, one detective, five civilians", func(t *testing.T) {
		// Given: a classic game of eight players
		roleSet, err := Distribution(entity.RulesetClassic, 8)
		require.NoError(t, err)

		// Then: the multiset should match the proportional allocation
		assert.Len(t, roleSet, 8)
		assert.Equal(t, 2, countRole(roleSet, entity.RoleMafia))
		assert.Equal(t, 1, countRole(roleSet, entity.RoleDetective))
		assert.Equal(t, 5, countRole(roleSet, entity.RoleCivilian))
	})

	t.Run("Manhunt games have no special role", func(t *testing.T) {
		// Given: a manhunt game of six players
		roleSet, err := Distribution(entity.RulesetManhunt, 6)
		require.NoError(t, err)

		// Then: only hunters and survivors appear
		assert.Len(t, roleSet, 6)
		assert.Equal(t, 1, countRole(roleSet, entity.RoleHunter))
		assert.Equal(t, 5, countRole(roleSet, entity.RoleSurvivor))
	})

	t.Run("Role counts always sum to the player count", func(t *testing.T) {
		for playerCount := 2; playerCount <= 20; playerCount++ {
			t.Run(fmt.Sprintf("%d players", playerCount), func(t *testing.T) {
				roleSet, err := Distribution(entity.RulesetClassic, playerCount)
				require.NoError(t, err)
				assert.Len(t, roleSet, playerCount)
			})
		}
	})

	t.Run("Small games still get at least one of each special role", func(t *testing.T) {
		// Given: a classic game of three players
		roleSet, err := Distribution(entity.RulesetClassic, 3)
		require.NoError(t, err)

		// Then: one mafia and one detective, with the base pool shrunk to fit
		assert.Equal(t, 1, countRole(roleSet, entity.RoleMafia))
		assert.Equal(t, 1, countRole(roleSet, entity.RoleDetective))
		assert.Equal(t, 1, countRole(roleSet, entity.RoleCivilian))
	})

	t.Run("Rejects a game too small to fit the lower bounds", func(t *testing.T) {
		// Given: a one-player classic game, which cannot hold a mafia and a detective
		_, err := Distribution(entity.RulesetClassic, 1)

		// Then: it should be rejected as an input-validation error
		assert.ErrorIs(t, err, apperror.ErrNotEnoughPlayers)
	})

	t.Run("Rejects zero players", func(t *testing.T) {
		_, err := Distribution(entity.RulesetManhunt, 0)
		assert.ErrorIs(t, err, apperror.ErrNotEnoughPlayers)
	})

	t.Run("Rejects an unknown ruleset", func(t *testing.T) {
		_, err := Distribution("battle-royale", 8)
		assert.ErrorIs(t, err, apperror.ErrUnknownRuleset)
	})
}

func TestAssign(t *testing.T) {
	t.Run("Every player receives exactly one role", func(t *testing.T) {
		// Given: eight players and a matching role multiset
		playerIDs := []string{"p1", "p2", "p3", "p4", "p5", "p6", "p7", "p8"}
		roleSet, err := Distribution(entity.RulesetClassic, len(playerIDs))
		require.NoError(t, err)

		// When: assigning shuffled roles
		assignments := Assign(playerIDs, roleSet, entity.RoleCivilian)

		// Then: each id appears once and the multiset is preserved
		require.Len(t, assignments, len(playerIDs))

		seen := make(map[string]bool)
		counts := make(map[entity.Role]int)
		for _, assignment := range assignments {
			assert.False(t, seen[assignment.PlayerID], "player assigned twice")
			seen[assignment.PlayerID] = true
			counts[assignment.Role]++
		}

		assert.Equal(t, 2, counts[entity.RoleMafia])
		assert.Equal(t, 1, counts[entity.RoleDetective])
		assert.Equal(t, 5, counts[entity.RoleCivilian])
	})

	t.Run("Fills a short role set with the fallback role", func(t *testing.T) {
		// Given: three players but only two roles
		playerIDs := []string{"p1", "p2", "p3"}
		roleSet := []entity.Role{entity.RoleHunter, entity.RoleSurvivor}

		// When: assigning
		assignments := Assign(playerIDs, roleSet, entity.RoleSurvivor)

		// Then: nobody is left without a role
		require.Len(t, assignments, 3)
		for _, assignment := range assignments {
			assert.NotEmpty(t, assignment.Role)
		}
	})

	t.Run("Does not mutate the input role set", func(t *testing.T) {
		// Given: a role multiset in a known order
		roleSet := []entity.Role{entity.RoleMafia, entity.RoleCivilian, entity.RoleCivilian}
		original := make([]entity.Role, len(roleSet))
		copy(original, roleSet)

		// When: assigning
		Assign([]string{"p1", "p2", "p3"}, roleSet, entity.RoleCivilian)

		// Then: the caller's slice is untouched
		assert.Equal(t, original, roleSet)
	})
}

func countRole(roleSet []entity.Role, role entity.Role) int {
	count := 0
	for _, r := range roleSet {
		if r == role {
			count++
		}
	}
	return count
}
