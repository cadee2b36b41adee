package roles

import (
	"fmt"
	"math/rand"

	"github.com/rocketscienceinc/murda-backend/internal/apperror"
	"github.com/rocketscienceinc/murda-backend/internal/entity"
)

const (
	aggressorDivisor = 4
	specialDivisor   = 6
)

type Assignment struct {
	PlayerID string      `json:"player_id"`
	Role     entity.Role `json:"role"`
}

// Distribution computes the role multiset for a game of playerCount players.
// The aggressor count is max(1, playerCount/4) and the special count (classic
// only) is max(1, playerCount/6); the remainder is the base role. The result
// always sums to exactly playerCount, so games too small to fit the lower
// bounds are rejected instead of producing a negative base pool.
func Distribution(ruleset string, playerCount int) ([]entity.Role, error) {
	if playerCount < 1 {
		return nil, fmt.Errorf("%w: %d players", apperror.ErrNotEnoughPlayers, playerCount)
	}

	aggressor, err := entity.AggressorRole(ruleset)
	if err != nil {
		return nil, err
	}

	base, err := entity.BaseRole(ruleset)
	if err != nil {
		return nil, err
	}

	aggressorCount := max(1, playerCount/aggressorDivisor)

	specialCount := 0
	special, hasSpecial := entity.SpecialRole(ruleset)
	if hasSpecial {
		specialCount = max(1, playerCount/specialDivisor)
	}

	if playerCount < aggressorCount+specialCount {
		return nil, fmt.Errorf("%w: %d players cannot fit %d aggressors and %d specials",
			apperror.ErrNotEnoughPlayers, playerCount, aggressorCount, specialCount)
	}

	roleSet := make([]entity.Role, 0, playerCount)
	for i := 0; i < aggressorCount; i++ {
		roleSet = append(roleSet, aggressor)
	}
	for i := 0; i < specialCount; i++ {
		roleSet = append(roleSet, special)
	}
	for i := 0; i < playerCount-aggressorCount-specialCount; i++ {
		roleSet = append(roleSet, base)
	}

	return roleSet, nil
}

// Assign shuffles the role multiset with a uniform permutation and zips it to
// the given player ids. Every player receives exactly one role; if the role
// set comes up short the fallback role fills the gap.
func Assign(playerIDs []string, roleSet []entity.Role, fallback entity.Role) []Assignment {
	shuffled := make([]entity.Role, len(roleSet))
	copy(shuffled, roleSet)

	rand.Shuffle(len(shuffled), func(i, j int) { //nolint: gosec // game shuffle, not crypto
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	assignments := make([]Assignment, 0, len(playerIDs))
	for i, playerID := range playerIDs {
		role := fallback
		if i < len(shuffled) {
			role = shuffled[i]
		}
		assignments = append(assignments, Assignment{PlayerID: playerID, Role: role})
	}

	return assignments
}
