package murda

import (
	"fmt"

	"github.com/rocketscienceinc/murda-backend/internal/apperror"
	"github.com/rocketscienceinc/murda-backend/internal/entity"
	"github.com/rocketscienceinc/murda-backend/internal/roles"
)

const DefaultMinPlayers = 4

type Rules struct {
	MinPlayers int
}

func DefaultRules() Rules {
	return Rules{MinPlayers: DefaultMinPlayers}
}

// Machine owns the canonical state of one game and applies dispatched events
// to it. A rejected dispatch returns an error and leaves the state untouched;
// transitions never apply partially. Dispatch is synchronous and the machine
// does no locking: the caller serializes access, the same way the host
// runtime serializes reducer calls in the client.
type Machine struct {
	rules Rules
	game  *entity.Game
}

func NewMachine(rules Rules) *Machine {
	if rules.MinPlayers <= 0 {
		rules.MinPlayers = DefaultMinPlayers
	}

	return &Machine{
		rules: rules,
		game:  &entity.Game{Status: entity.StatusIdle},
	}
}

// Restore wraps an already-persisted game so further events can be applied.
func Restore(rules Rules, game *entity.Game) *Machine {
	machine := NewMachine(rules)
	machine.game = game
	return machine
}

// Game exposes the owned state for persistence. Callers outside the
// repository path should use Snapshot instead.
func (that *Machine) Game() *entity.Game {
	return that.game
}

// Snapshot returns a deep copy of the current state for read-only consumers.
func (that *Machine) Snapshot() *entity.Game {
	snapshot := *that.game

	snapshot.Players = make([]*entity.Player, len(that.game.Players))
	for i, player := range that.game.Players {
		copied := *player
		snapshot.Players[i] = &copied
	}

	snapshot.Actions = append([]entity.Action(nil), that.game.Actions...)
	snapshot.Evidence = append([]entity.Evidence(nil), that.game.Evidence...)

	return &snapshot
}

// Dispatch applies one event. Errors mean the event was rejected.
func (that *Machine) Dispatch(event Event) error {
	switch event.Type {
	case EventCreateLobby:
		return that.createLobby(event.LobbyCode, event.Ruleset)
	case EventCreateLobbyFailed:
		return that.fail(event.Message)
	case EventAddPlayer:
		return that.addPlayer(event.Player)
	case EventRemovePlayer:
		return that.removePlayer(event.PlayerID)
	case EventSetReady:
		return that.setReady(event.PlayerID, event.Ready)
	case EventStartGame:
		return that.startGame()
	case EventStartGameFailed:
		return that.fail(event.Message)
	case EventPerformAction:
		return that.performAction(event.Action)
	case EventSubmitEvidence:
		return that.submitEvidence(event.Evidence)
	case EventAdvancePhase:
		return that.advancePhase()
	case EventAdvanceTurn:
		return that.advanceTurn()
	case EventEndGame:
		return that.endGame(event.Winner)
	case EventClearError:
		return that.clearError()
	case EventReset:
		that.game = &entity.Game{Status: entity.StatusIdle}
		return nil
	default:
		return fmt.Errorf("%w: %s", apperror.ErrUnknownEvent, event.Type)
	}
}

func (that *Machine) createLobby(code, ruleset string) error {
	if _, err := entity.AggressorRole(ruleset); err != nil {
		return err
	}

	that.game = entity.NewGame(code, ruleset)

	return nil
}

// fail records an in-flight transition failure. Previously committed state is
// kept so an explicit reset is the only way to lose a lobby.
func (that *Machine) fail(message string) error {
	that.game.Status = entity.StatusError
	that.game.Error = message
	return nil
}

func (that *Machine) clearError() error {
	that.game.Error = ""

	if that.game.Status == entity.StatusError {
		if that.game.ID == "" {
			that.game.Status = entity.StatusIdle
		} else {
			// The failed transition never touched the lobby, so it is still valid.
			that.game.Status = entity.StatusLobby
		}
	}

	return nil
}

// addPlayer appends a player to the lobby. Re-adding an existing id is a
// no-op, not an error.
func (that *Machine) addPlayer(player *entity.Player) error {
	if !that.game.IsLobby() {
		return apperror.ErrGameAlreadyStarted
	}

	if that.game.HasPlayer(player.ID) {
		return nil
	}

	player.GameID = that.game.ID
	player.IsAlive = true
	player.Status = entity.PlayerWaiting
	that.game.Players = append(that.game.Players, player)

	return nil
}

func (that *Machine) removePlayer(playerID string) error {
	for i, player := range that.game.Players {
		if player.ID == playerID {
			that.game.Players = append(that.game.Players[:i], that.game.Players[i+1:]...)
			return nil
		}
	}

	return apperror.ErrPlayerNotFound
}

func (that *Machine) setReady(playerID string, ready bool) error {
	if !that.game.IsLobby() {
		return apperror.ErrGameAlreadyStarted
	}

	player := that.game.PlayerByID(playerID)
	if player == nil {
		return apperror.ErrPlayerNotFound
	}

	player.IsReady = ready

	return nil
}

// startGame assigns roles and moves the game into its first night. Role
// assignment is all-or-nothing: the full assignment set is computed before
// any player record is touched.
func (that *Machine) startGame() error {
	if that.game.IsInGame() {
		return apperror.ErrGameAlreadyStarted
	}

	if !that.game.IsLobby() {
		return that.game.ConfirmInGameState()
	}

	if len(that.game.Players) < that.rules.MinPlayers {
		return fmt.Errorf("%w: have %d, need %d",
			apperror.ErrNotEnoughPlayers, len(that.game.Players), that.rules.MinPlayers)
	}

	roleSet, err := roles.Distribution(that.game.Ruleset, len(that.game.Players))
	if err != nil {
		return fmt.Errorf("failed to compute role distribution: %w", err)
	}

	fallback, err := entity.BaseRole(that.game.Ruleset)
	if err != nil {
		return err
	}

	playerIDs := make([]string, 0, len(that.game.Players))
	for _, player := range that.game.Players {
		playerIDs = append(playerIDs, player.ID)
	}

	assignments := roles.Assign(playerIDs, roleSet, fallback)

	for _, assignment := range assignments {
		player := that.game.PlayerByID(assignment.PlayerID)
		player.Role = assignment.Role
		player.IsAlive = true
		player.Status = entity.PlayerPlaying
	}

	that.game.Status = entity.StatusInGame
	that.game.Phase = entity.PhaseNight
	that.game.Turn = 1

	return nil
}

func (that *Machine) submitEvidence(evidence *entity.Evidence) error {
	if err := that.game.ConfirmInGameState(); err != nil {
		return err
	}

	actor := that.game.PlayerByID(evidence.ActorID)
	if actor == nil {
		return apperror.ErrPlayerNotFound
	}

	if !actor.IsAlive {
		return apperror.ErrPlayerDead
	}

	entry := *evidence
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now()
	}

	that.game.Evidence = append(that.game.Evidence, entry)

	return nil
}

// advancePhase moves night → day → voting → results → night, incrementing the
// turn on the wrap. Leaving the voting phase resolves the vote tally first.
func (that *Machine) advancePhase() error {
	if err := that.game.ConfirmInGameState(); err != nil {
		return err
	}

	switch that.game.Phase {
	case entity.PhaseNight:
		that.game.Phase = entity.PhaseDay
	case entity.PhaseDay:
		that.game.Phase = entity.PhaseVoting
	case entity.PhaseVoting:
		that.resolveVotes()
		if that.game.IsEnded() {
			return nil
		}
		that.game.Phase = entity.PhaseResults
	case entity.PhaseResults:
		that.game.Turn++
		that.game.Phase = entity.PhaseNight
	default:
		return fmt.Errorf("%w: phase %s", apperror.ErrWrongPhase, that.game.Phase)
	}

	return nil
}

func (that *Machine) advanceTurn() error {
	if err := that.game.ConfirmInGameState(); err != nil {
		return err
	}

	that.game.Turn++
	that.game.Phase = entity.PhaseNight

	return nil
}

func (that *Machine) endGame(winner string) error {
	if that.game.IsEnded() {
		return apperror.ErrGameEnded
	}

	that.game.Status = entity.StatusEnded
	that.game.Phase = ""
	that.game.Winner = winner

	return nil
}
