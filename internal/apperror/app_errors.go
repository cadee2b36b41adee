package apperror

import "errors"

var (
	ErrGameEnded          = errors.New("game is already ended")
	ErrGameNotStarted     = errors.New("game is not started")
	ErrGameAlreadyStarted = errors.New("game is already started")
	ErrNotEnoughPlayers   = errors.New("not enough players to start")
	ErrNotHost            = errors.New("only the host can do that")

	ErrStaleTurn      = errors.New("action belongs to a past turn")
	ErrWrongPhase     = errors.New("action is not allowed in the current phase")
	ErrRoleNotAllowed = errors.New("role is not allowed to perform this action")
	ErrPlayerDead     = errors.New("player is eliminated")
	ErrTargetDead     = errors.New("target is already eliminated")
	ErrSelfTarget     = errors.New("player cannot target themselves")
	ErrFriendlyTarget = errors.New("target is on the same team")

	ErrPlayerNotFound = errors.New("player not found in game")
	ErrUnknownRuleset = errors.New("unknown ruleset")
	ErrUnknownAction  = errors.New("unknown action type")
	ErrUnknownEvent   = errors.New("unknown event type")
)
