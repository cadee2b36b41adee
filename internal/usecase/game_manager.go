package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/rocketscienceinc/murda-backend/internal/apperror"
	"github.com/rocketscienceinc/murda-backend/internal/config"
	"github.com/rocketscienceinc/murda-backend/internal/entity"
	"github.com/rocketscienceinc/murda-backend/internal/geo"
	"github.com/rocketscienceinc/murda-backend/internal/murda"
	"github.com/rocketscienceinc/murda-backend/internal/pkg"
	"github.com/rocketscienceinc/murda-backend/internal/proximity"
)

const maxLobbyCodeAttempts = 5

type playerRepo interface {
	CreateOrUpdate(ctx context.Context, player *entity.Player) error
	GetByID(ctx context.Context, id string) (*entity.Player, error)
	DeleteByID(ctx context.Context, id string) error
}

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
}

// GameManager orchestrates lobbies and running games: it loads state from
// the repositories, applies events through the state machine, and persists
// the result. All game mutation funnels through Dispatch.
type GameManager struct {
	logger     *slog.Logger
	playerRepo playerRepo
	gameRepo   gameRepo

	rules      murda.Rules
	gameConfig config.Game
}

func NewGameManager(logger *slog.Logger, playerRepo playerRepo, gameRepo gameRepo, gameConfig config.Game) *GameManager {
	return &GameManager{
		logger: logger,

		playerRepo: playerRepo,
		gameRepo:   gameRepo,

		rules:      murda.Rules{MinPlayers: gameConfig.MinPlayers},
		gameConfig: gameConfig,
	}
}

// GetOrCreatePlayer returns the player with the given id, minting a new
// identity when the id is empty.
func (that *GameManager) GetOrCreatePlayer(ctx context.Context, id string) (*entity.Player, error) {
	if id == "" {
		player := &entity.Player{ID: uuid.NewString()}
		if err := that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
			return nil, fmt.Errorf("failed to create player: %w", err)
		}

		return player, nil
	}

	player, err := that.playerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	return player, nil
}

// CreateLobby creates a lobby with a fresh shareable code and seats the
// creator as its host, pre-marked ready.
func (that *GameManager) CreateLobby(ctx context.Context, playerID, playerName, ruleset string) (*entity.Game, error) {
	player, err := that.GetOrCreatePlayer(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	code, err := that.uniqueLobbyCode(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate lobby code: %w", err)
	}

	machine := murda.NewMachine(that.rules)
	if err = machine.Dispatch(murda.Event{Type: murda.EventCreateLobby, LobbyCode: code, Ruleset: ruleset}); err != nil {
		return nil, fmt.Errorf("failed to create lobby: %w", err)
	}

	player.Name = playerName
	player.IsHost = true
	player.IsReady = true

	if err = machine.Dispatch(murda.Event{Type: murda.EventAddPlayer, Player: player}); err != nil {
		return nil, fmt.Errorf("failed to seat host: %w", err)
	}

	if err = that.persistGame(ctx, machine.Game()); err != nil {
		that.surfaceFailure(ctx, machine, murda.EventCreateLobbyFailed, "could not save lobby")
		return nil, fmt.Errorf("failed to persist lobby: %w", err)
	}

	return machine.Game(), nil
}

// JoinLobby appends a player to an existing lobby. Joining a lobby the
// player is already in is a no-op.
func (that *GameManager) JoinLobby(ctx context.Context, code, playerID, playerName string) (*entity.Game, error) {
	machine, err := that.loadMachine(ctx, code)
	if err != nil {
		return nil, err
	}

	player, err := that.GetOrCreatePlayer(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	player.Name = playerName

	if err = machine.Dispatch(murda.Event{Type: murda.EventAddPlayer, Player: player}); err != nil {
		return nil, fmt.Errorf("failed to join lobby: %w", err)
	}

	if err = that.persistGame(ctx, machine.Game()); err != nil {
		return nil, fmt.Errorf("failed to persist lobby: %w", err)
	}

	return machine.Game(), nil
}

// SetReady toggles the lobby ready flag of one player.
func (that *GameManager) SetReady(ctx context.Context, playerID string, ready bool) (*entity.Game, error) {
	machine, player, err := that.loadMachineByPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}

	if err = machine.Dispatch(murda.Event{Type: murda.EventSetReady, PlayerID: player.ID, Ready: ready}); err != nil {
		return nil, fmt.Errorf("failed to set ready: %w", err)
	}

	if err = that.persistGame(ctx, machine.Game()); err != nil {
		return nil, fmt.Errorf("failed to persist lobby: %w", err)
	}

	return machine.Game(), nil
}

// StartGame assigns roles and opens the first night. Only the host can
// start, and the whole transition is all-or-nothing: a persistence failure
// surfaces an error state and leaves the lobby as it was.
func (that *GameManager) StartGame(ctx context.Context, playerID string) (*entity.Game, error) {
	machine, player, err := that.loadMachineByPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}

	if !player.IsHost {
		return nil, apperror.ErrNotHost
	}

	lobbyState := machine.Snapshot()

	if err = machine.Dispatch(murda.Event{Type: murda.EventStartGame}); err != nil {
		return nil, fmt.Errorf("failed to start game: %w", err)
	}

	if err = that.persistGame(ctx, machine.Game()); err != nil {
		// Role assignment is all-or-nothing: surface the failure on the
		// untouched lobby state, not the half-committed started one.
		that.surfaceFailure(ctx, murda.Restore(that.rules, lobbyState), murda.EventStartGameFailed, "could not save started game")
		return nil, fmt.Errorf("failed to persist started game: %w", err)
	}

	return machine.Game(), nil
}

// PerformAction dispatches one kill/tag/investigate/vote through the state
// machine and persists the resolved state.
func (that *GameManager) PerformAction(ctx context.Context, playerID string, action entity.Action) (*entity.Game, error) {
	machine, player, err := that.loadMachineByPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}

	action.ActorID = player.ID

	if err = machine.Dispatch(murda.Event{Type: murda.EventPerformAction, Action: &action}); err != nil {
		return nil, fmt.Errorf("failed to perform action: %w", err)
	}

	if err = that.persistGame(ctx, machine.Game()); err != nil {
		return nil, fmt.Errorf("failed to persist game: %w", err)
	}

	return machine.Game(), nil
}

// SubmitEvidence appends an already-captured evidence descriptor to the log.
func (that *GameManager) SubmitEvidence(ctx context.Context, playerID string, evidence entity.Evidence) (*entity.Game, error) {
	machine, player, err := that.loadMachineByPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}

	evidence.ActorID = player.ID

	if err = machine.Dispatch(murda.Event{Type: murda.EventSubmitEvidence, Evidence: &evidence}); err != nil {
		return nil, fmt.Errorf("failed to submit evidence: %w", err)
	}

	if err = that.persistGame(ctx, machine.Game()); err != nil {
		return nil, fmt.Errorf("failed to persist game: %w", err)
	}

	return machine.Game(), nil
}

// AdvancePhase moves the phase cycle forward, resolving votes on the way out
// of the voting phase. Host only.
func (that *GameManager) AdvancePhase(ctx context.Context, playerID string) (*entity.Game, error) {
	machine, player, err := that.loadMachineByPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}

	if !player.IsHost {
		return nil, apperror.ErrNotHost
	}

	if err = machine.Dispatch(murda.Event{Type: murda.EventAdvancePhase}); err != nil {
		return nil, fmt.Errorf("failed to advance phase: %w", err)
	}

	if err = that.persistGame(ctx, machine.Game()); err != nil {
		return nil, fmt.Errorf("failed to persist game: %w", err)
	}

	return machine.Game(), nil
}

// UpdateLocation records a player's position (last-writer-wins, outside the
// dispatch path) and computes a fresh proximity reading against the game's
// other players.
func (that *GameManager) UpdateLocation(ctx context.Context, playerID string, position geo.Point) (*proximity.Reading, *entity.Game, error) {
	machine, player, err := that.loadMachineByPlayer(ctx, playerID)
	if err != nil {
		return nil, nil, err
	}

	game := machine.Game()

	inGame := game.PlayerByID(player.ID)
	if inGame == nil {
		return nil, nil, apperror.ErrPlayerNotFound
	}

	inGame.Position = &position
	player.Position = &position

	if err = that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return nil, nil, fmt.Errorf("failed to persist player position: %w", err)
	}

	if err = that.persistGame(ctx, game); err != nil {
		return nil, nil, fmt.Errorf("failed to persist game: %w", err)
	}

	engine := proximity.NewEngine(that.gameConfig.TagDistanceMeters, that.gameConfig.WarningDistanceMeters)
	engine.Configure(inGame.Role, game.Phase)
	reading := engine.OnLocationUpdate(inGame, game.Players)

	return &reading, game, nil
}

// GetGameByPlayerID returns the game the player currently belongs to.
func (that *GameManager) GetGameByPlayerID(ctx context.Context, playerID string) (*entity.Game, error) {
	_, _, game, err := that.loadPlayerAndGame(ctx, playerID)
	if err != nil {
		return nil, err
	}

	return game, nil
}

// LeaveGame tears the game down: the state is reset, every member is
// detached, and the stored game is deleted.
func (that *GameManager) LeaveGame(ctx context.Context, playerID string) (*entity.Game, error) {
	log := that.logger.With("method", "LeaveGame")

	machine, _, err := that.loadMachineByPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}

	game := machine.Game()

	for _, member := range game.Players {
		member.GameID = ""
		member.Role = ""
		member.IsReady = false

		if err = that.playerRepo.CreateOrUpdate(ctx, member); err != nil {
			log.Error("failed to detach player", "playerID", member.ID, "error", err)
		}
	}

	if err = that.gameRepo.DeleteByID(ctx, game.ID); err != nil {
		log.Error("failed to delete game", "gameID", game.ID, "error", err)
	}

	if err = machine.Dispatch(murda.Event{Type: murda.EventReset}); err != nil {
		return nil, fmt.Errorf("failed to reset game: %w", err)
	}

	log.Info("game closed", "gameID", game.ID)

	return game, nil
}

func (that *GameManager) loadMachine(ctx context.Context, gameID string) (*murda.Machine, error) {
	game, err := that.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	return murda.Restore(that.rules, game), nil
}

func (that *GameManager) loadMachineByPlayer(ctx context.Context, playerID string) (*murda.Machine, *entity.Player, error) {
	machine, player, _, err := that.loadPlayerAndGame(ctx, playerID)
	return machine, player, err
}

func (that *GameManager) loadPlayerAndGame(ctx context.Context, playerID string) (*murda.Machine, *entity.Player, *entity.Game, error) {
	player, err := that.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	if player.GameID == "" {
		return nil, nil, nil, apperror.ErrPlayerNotFound
	}

	machine, err := that.loadMachine(ctx, player.GameID)
	if err != nil {
		return nil, nil, nil, err
	}

	return machine, player, machine.Game(), nil
}

// persistGame stores the game and every player record it owns, so a player
// reconnecting by id finds their membership again.
func (that *GameManager) persistGame(ctx context.Context, game *entity.Game) error {
	for _, player := range game.Players {
		if err := that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
			return fmt.Errorf("failed to update player: %w", err)
		}
	}

	if err := that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}

	return nil
}

// surfaceFailure marks the in-memory state with a transition failure and
// tries, best effort, to store it so the client sees the error status.
func (that *GameManager) surfaceFailure(ctx context.Context, machine *murda.Machine, event murda.EventType, message string) {
	log := that.logger.With("method", "surfaceFailure")

	if err := machine.Dispatch(murda.Event{Type: event, Message: message}); err != nil {
		log.Error("failed to record failure", "error", err)
		return
	}

	if err := that.gameRepo.CreateOrUpdate(ctx, machine.Game()); err != nil {
		log.Error("failed to store failure state", "error", err)
	}
}

func (that *GameManager) uniqueLobbyCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxLobbyCodeAttempts; attempt++ {
		code := pkg.GenerateLobbyCode()

		exists, err := that.gameRepo.Exists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("failed to check lobby code: %w", err)
		}

		if !exists {
			return code, nil
		}
	}

	return "", fmt.Errorf("failed to find a free lobby code in %d attempts", maxLobbyCodeAttempts)
}
