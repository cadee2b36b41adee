package murda

import (
	"fmt"
	"time"

	"github.com/rocketscienceinc/murda-backend/internal/apperror"
	"github.com/rocketscienceinc/murda-backend/internal/entity"
)

// now is swappable for tests.
var now = time.Now

// performAction validates and resolves one discrete player action. The
// eligibility policy is explicit rejection: a dead actor, a stale turn, the
// wrong phase or the wrong role all return a sentinel error and leave the
// state exactly as it was.
func (that *Machine) performAction(action *entity.Action) error {
	game := that.game

	if err := game.ConfirmInGameState(); err != nil {
		return err
	}

	actor := game.PlayerByID(action.ActorID)
	if actor == nil {
		return fmt.Errorf("%w: actor %s", apperror.ErrPlayerNotFound, action.ActorID)
	}

	if !actor.IsAlive {
		return apperror.ErrPlayerDead
	}

	if action.Turn != game.Turn {
		return fmt.Errorf("%w: action turn %d, game turn %d", apperror.ErrStaleTurn, action.Turn, game.Turn)
	}

	switch action.Type {
	case entity.ActionKill:
		return that.resolveElimination(actor, action, entity.PhaseNight)
	case entity.ActionTag:
		// Tagging is the manhunt elimination and is not phase-gated: the
		// chase runs continuously.
		return that.resolveElimination(actor, action, "")
	case entity.ActionInvestigate:
		return that.resolveInvestigation(actor, action)
	case entity.ActionVote:
		return that.resolveVote(actor, action)
	default:
		return fmt.Errorf("%w: %s", apperror.ErrUnknownAction, action.Type)
	}
}

// resolveElimination applies a kill or tag: the target dies, the action is
// logged, and the win condition is re-evaluated immediately.
func (that *Machine) resolveElimination(actor *entity.Player, action *entity.Action, requiredPhase string) error {
	if !actor.Role.IsAggressor() {
		return apperror.ErrRoleNotAllowed
	}

	if requiredPhase != "" && that.game.Phase != requiredPhase {
		return fmt.Errorf("%w: %s requires %s, game is in %s",
			apperror.ErrWrongPhase, action.Type, requiredPhase, that.game.Phase)
	}

	target, err := that.targetOf(actor, action)
	if err != nil {
		return err
	}

	if target.Role.IsAggressor() {
		return fmt.Errorf("%w: %s", apperror.ErrFriendlyTarget, target.ID)
	}

	that.appendAction(action, "")
	target.Eliminate()
	that.checkWinCondition()

	return nil
}

// resolveInvestigation lets the special role learn which team a target is
// on. The verdict rides on the logged action so the transport can return it
// to the investigator.
func (that *Machine) resolveInvestigation(actor *entity.Player, action *entity.Action) error {
	special, hasSpecial := entity.SpecialRole(that.game.Ruleset)
	if !hasSpecial || actor.Role != special {
		return apperror.ErrRoleNotAllowed
	}

	if that.game.Phase != entity.PhaseNight {
		return fmt.Errorf("%w: investigate requires %s, game is in %s",
			apperror.ErrWrongPhase, entity.PhaseNight, that.game.Phase)
	}

	target, err := that.targetOf(actor, action)
	if err != nil {
		return err
	}

	that.appendAction(action, target.Role.Team())

	return nil
}

// resolveVote records a ballot. Votes only count; elimination happens when
// the voting phase closes.
func (that *Machine) resolveVote(actor *entity.Player, action *entity.Action) error {
	if that.game.Phase != entity.PhaseVoting {
		return fmt.Errorf("%w: vote requires %s, game is in %s",
			apperror.ErrWrongPhase, entity.PhaseVoting, that.game.Phase)
	}

	if _, err := that.targetOf(actor, action); err != nil {
		return err
	}

	that.appendAction(action, "")

	return nil
}

// resolveVotes tallies the current turn's ballots when the voting phase
// closes. The latest ballot per voter counts; a plurality eliminates its
// target, a tie spares everyone.
func (that *Machine) resolveVotes() {
	ballotByVoter := make(map[string]string)
	for _, vote := range that.game.VotesForTurn(that.game.Turn) {
		ballotByVoter[vote.ActorID] = vote.TargetID
	}

	tally := make(map[string]int)
	for _, targetID := range ballotByVoter {
		tally[targetID]++
	}

	maxVotes := 0
	var leaders []string
	for targetID, count := range tally {
		switch {
		case count > maxVotes:
			maxVotes = count
			leaders = []string{targetID}
		case count == maxVotes:
			leaders = append(leaders, targetID)
		}
	}

	if len(leaders) != 1 {
		return
	}

	target := that.game.PlayerByID(leaders[0])
	if target == nil || !target.IsAlive {
		return
	}

	target.Eliminate()
	that.checkWinCondition()
}

// checkWinCondition runs after every elimination, never batched. Once the
// game is ended the winner is frozen: no further action dispatch passes
// ConfirmInGameState.
func (that *Machine) checkWinCondition() {
	aggressors, targets := that.game.AliveByTeam()

	switch {
	case aggressors == 0:
		that.game.Winner = entity.TeamTargets
	case targets == 0:
		that.game.Winner = entity.TeamAggressors
	default:
		return
	}

	that.game.Status = entity.StatusEnded
	that.game.Phase = ""
}

func (that *Machine) targetOf(actor *entity.Player, action *entity.Action) (*entity.Player, error) {
	if action.TargetID == actor.ID {
		return nil, apperror.ErrSelfTarget
	}

	target := that.game.PlayerByID(action.TargetID)
	if target == nil {
		return nil, fmt.Errorf("%w: target %s", apperror.ErrPlayerNotFound, action.TargetID)
	}

	if !target.IsAlive {
		return nil, apperror.ErrTargetDead
	}

	return target, nil
}

func (that *Machine) appendAction(action *entity.Action, result string) {
	entry := *action
	entry.Phase = that.game.Phase
	entry.Result = result
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now()
	}

	that.game.Actions = append(that.game.Actions, entry)
}
