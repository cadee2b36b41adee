package entity

import (
	"fmt"

	"github.com/rocketscienceinc/murda-backend/internal/apperror"
)

const (
	StatusIdle     = "idle"
	StatusCreating = "creating"
	StatusLobby    = "lobby"
	StatusStarting = "starting"
	StatusInGame   = "in_game"
	StatusEnded    = "ended"
	StatusError    = "error"
)

// Phases cycle within an active game; one full cycle back to night is one turn.
const (
	PhaseNight   = "night"
	PhaseDay     = "day"
	PhaseVoting  = "voting"
	PhaseResults = "results"
)

// Game is the single source of truth for one lobby. It is mutated only
// through dispatched state machine events; transports and the proximity
// engine read snapshots.
type Game struct {
	ID       string     `json:"id"`
	Ruleset  string     `json:"ruleset"`
	Status   string     `json:"status"`
	Phase    string     `json:"phase,omitempty"`
	Turn     int        `json:"turn"`
	Players  []*Player  `json:"players,omitempty"`
	Actions  []Action   `json:"actions,omitempty"`
	Evidence []Evidence `json:"evidence,omitempty"`
	Winner   string     `json:"winner,omitempty"`
	Error    string     `json:"error,omitempty"`
}

func NewGame(id, ruleset string) *Game {
	return &Game{
		ID:      id,
		Ruleset: ruleset,
		Status:  StatusLobby,
	}
}

func (that *Game) IsLobby() bool {
	return that.Status == StatusLobby
}

func (that *Game) IsInGame() bool {
	return that.Status == StatusInGame
}

func (that *Game) IsEnded() bool {
	return that.Status == StatusEnded
}

// ConfirmInGameState returns nil only while the game is actively running.
func (that *Game) ConfirmInGameState() error {
	switch {
	case that.IsLobby():
		return apperror.ErrGameNotStarted
	case that.IsEnded():
		return apperror.ErrGameEnded
	case that.IsInGame():
		return nil
	default:
		return fmt.Errorf("%w: unexpected status %s", apperror.ErrGameNotStarted, that.Status)
	}
}

// PlayerByID returns the player with the given id, or nil.
func (that *Game) PlayerByID(id string) *Player {
	for _, player := range that.Players {
		if player.ID == id {
			return player
		}
	}
	return nil
}

func (that *Game) HasPlayer(id string) bool {
	return that.PlayerByID(id) != nil
}

func (that *Game) Host() *Player {
	for _, player := range that.Players {
		if player.IsHost {
			return player
		}
	}
	return nil
}

// AliveByTeam counts living players on each side of the win condition.
func (that *Game) AliveByTeam() (aggressors, targets int) {
	for _, player := range that.Players {
		if !player.IsAlive {
			continue
		}
		if player.Role.IsAggressor() {
			aggressors++
		} else {
			targets++
		}
	}
	return aggressors, targets
}

// VotesForTurn returns the vote actions stamped with the given turn, in
// dispatch order.
func (that *Game) VotesForTurn(turn int) []Action {
	var votes []Action
	for _, action := range that.Actions {
		if action.Type == ActionVote && action.Turn == turn {
			votes = append(votes, action)
		}
	}
	return votes
}
