package entity

import (
	"fmt"

	"github.com/rocketscienceinc/murda-backend/internal/apperror"
)

// Two rule variants share one state shape. Classic is the mafia/detective/civilian
// ruleset; manhunt is the hunter/survivor chase ruleset with no special role.
const (
	RulesetClassic = "classic"
	RulesetManhunt = "manhunt"
)

type Role string

const (
	RoleMafia     Role = "mafia"
	RoleDetective Role = "detective"
	RoleCivilian  Role = "civilian"

	RoleHunter   Role = "hunter"
	RoleSurvivor Role = "survivor"
)

const (
	TeamAggressors = "aggressors"
	TeamTargets    = "targets"
)

// IsAggressor reports whether the role is empowered to eliminate others.
func (that Role) IsAggressor() bool {
	return that == RoleMafia || that == RoleHunter
}

// Team returns the win-condition team the role belongs to.
func (that Role) Team() string {
	if that.IsAggressor() {
		return TeamAggressors
	}
	return TeamTargets
}

// AggressorRole returns the minority elimination role for the ruleset.
func AggressorRole(ruleset string) (Role, error) {
	switch ruleset {
	case RulesetClassic:
		return RoleMafia, nil
	case RulesetManhunt:
		return RoleHunter, nil
	default:
		return "", fmt.Errorf("%w: %s", apperror.ErrUnknownRuleset, ruleset)
	}
}

// SpecialRole returns the secondary special role, if the ruleset has one.
func SpecialRole(ruleset string) (Role, bool) {
	if ruleset == RulesetClassic {
		return RoleDetective, true
	}
	return "", false
}

// BaseRole returns the majority role for the ruleset.
func BaseRole(ruleset string) (Role, error) {
	switch ruleset {
	case RulesetClassic:
		return RoleCivilian, nil
	case RulesetManhunt:
		return RoleSurvivor, nil
	default:
		return "", fmt.Errorf("%w: %s", apperror.ErrUnknownRuleset, ruleset)
	}
}
