package websocket

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rocketscienceinc/murda-backend/internal/entity"
)

const (
	payloadActionGameLeave = "game:leave"
	gameStatusLeave        = "leave"
)

func (that *Server) handleConnect(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	log := that.logger.With("method", "handleConnect")

	var payloadReq Payload

	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	var playerID string
	if payloadReq.Player != nil {
		playerID = payloadReq.Player.ID
	}

	player, err := that.gameUseCase.GetOrCreatePlayer(ctx, playerID)
	if err != nil {
		log.Error("failed to create or get player", "error", err)
		return that.sendErrorResponse(bufrw, msg.Action, "failed to create a new player")
	}

	that.registerConnection(player.ID, bufrw)
	that.playerReconnected(player.ID)

	payloadResp := Payload{Player: player}

	if player.GameID != "" {
		game, gameErr := that.gameUseCase.GetGameByPlayerID(ctx, player.ID)
		if gameErr != nil {
			log.Error("failed to get game", "gameID", player.GameID, "error", gameErr)
			return that.sendErrorResponse(bufrw, msg.Action, "failed to get the game")
		}

		payloadResp.Game = maskGameFor(game, player.ID)
	}

	if err = that.sendMessage(bufrw, msg.Action, payloadResp); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	log.Info("successfully connected player", "playerID", player.ID)

	return nil
}

func (that *Server) handleNewLobby(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	log := that.logger.With("method", "handleNewLobby")

	payloadReq, err := that.requirePlayer(msg, bufrw)
	if err != nil || payloadReq == nil {
		return err
	}

	ruleset := payloadReq.Ruleset
	if ruleset == "" {
		ruleset = entity.RulesetClassic
	}

	game, err := that.gameUseCase.CreateLobby(ctx, payloadReq.Player.ID, payloadReq.Player.Name, ruleset)
	if err != nil {
		log.Error("failed to create lobby", "error", err)
		return that.sendErrorResponse(bufrw, msg.Action, "failed to create a new lobby")
	}

	log.Info("lobby created", "gameID", game.ID)

	return that.broadcastGame(msg.Action, game)
}

func (that *Server) handleJoinLobby(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	log := that.logger.With("method", "handleJoinLobby")

	payloadReq, err := that.requirePlayer(msg, bufrw)
	if err != nil || payloadReq == nil {
		return err
	}

	if payloadReq.Game == nil || payloadReq.Game.ID == "" {
		log.Error("Game is missing in payload")
		return that.sendErrorResponse(bufrw, msg.Action, "Game is required")
	}

	game, err := that.gameUseCase.JoinLobby(ctx, payloadReq.Game.ID, payloadReq.Player.ID, payloadReq.Player.Name)
	if err != nil {
		log.Error("failed to join lobby", "error", err)
		return that.sendErrorResponse(bufrw, msg.Action, fmt.Sprintf("lobby %s: %v", payloadReq.Game.ID, err))
	}

	log.Info("player joined lobby", "gameID", game.ID, "playerID", payloadReq.Player.ID)

	return that.broadcastGame(msg.Action, game)
}

func (that *Server) handleReady(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	log := that.logger.With("method", "handleReady")

	payloadReq, err := that.requirePlayer(msg, bufrw)
	if err != nil || payloadReq == nil {
		return err
	}

	ready := true
	if payloadReq.Ready != nil {
		ready = *payloadReq.Ready
	}

	game, err := that.gameUseCase.SetReady(ctx, payloadReq.Player.ID, ready)
	if err != nil {
		log.Error("failed to set ready", "error", err)
		return that.sendErrorResponse(bufrw, msg.Action, fmt.Sprintf("ready: %v", err))
	}

	return that.broadcastGame(msg.Action, game)
}

func (that *Server) handleStartGame(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	log := that.logger.With("method", "handleStartGame")

	payloadReq, err := that.requirePlayer(msg, bufrw)
	if err != nil || payloadReq == nil {
		return err
	}

	game, err := that.gameUseCase.StartGame(ctx, payloadReq.Player.ID)
	if err != nil {
		log.Error("failed to start game", "error", err)
		return that.sendErrorResponse(bufrw, msg.Action, fmt.Sprintf("start: %v", err))
	}

	log.Info("game started", "gameID", game.ID, "players", len(game.Players))

	return that.broadcastGame(msg.Action, game)
}

func (that *Server) handleAdvancePhase(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	log := that.logger.With("method", "handleAdvancePhase")

	payloadReq, err := that.requirePlayer(msg, bufrw)
	if err != nil || payloadReq == nil {
		return err
	}

	game, err := that.gameUseCase.AdvancePhase(ctx, payloadReq.Player.ID)
	if err != nil {
		log.Error("failed to advance phase", "error", err)
		return that.sendErrorResponse(bufrw, msg.Action, fmt.Sprintf("phase: %v", err))
	}

	return that.broadcastGame(msg.Action, game)
}

func (that *Server) handleGameAction(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	log := that.logger.With("method", "handleGameAction")

	payloadReq, err := that.requirePlayer(msg, bufrw)
	if err != nil || payloadReq == nil {
		return err
	}

	if payloadReq.Action == nil {
		log.Error("Action is missing in payload")
		return that.sendErrorResponse(bufrw, msg.Action, "Action is required")
	}

	game, err := that.gameUseCase.PerformAction(ctx, payloadReq.Player.ID, *payloadReq.Action)
	if err != nil {
		log.Error("failed to perform action", "type", payloadReq.Action.Type, "error", err)
		return that.sendErrorResponse(bufrw, msg.Action, fmt.Sprintf("action: %v", err))
	}

	log.Info("action resolved", "gameID", game.ID, "type", payloadReq.Action.Type)

	return that.broadcastGame(msg.Action, game)
}

func (that *Server) handleEvidence(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	log := that.logger.With("method", "handleEvidence")

	payloadReq, err := that.requirePlayer(msg, bufrw)
	if err != nil || payloadReq == nil {
		return err
	}

	if payloadReq.Evidence == nil {
		log.Error("Evidence is missing in payload")
		return that.sendErrorResponse(bufrw, msg.Action, "Evidence is required")
	}

	game, err := that.gameUseCase.SubmitEvidence(ctx, payloadReq.Player.ID, *payloadReq.Evidence)
	if err != nil {
		log.Error("failed to submit evidence", "error", err)
		return that.sendErrorResponse(bufrw, msg.Action, fmt.Sprintf("evidence: %v", err))
	}

	return that.broadcastGame(msg.Action, game)
}

// handleLocation records a position tick and answers only the observer with
// their proximity reading. Positions are not broadcast: players learn about
// each other through readings, on their own side of the visibility rules.
func (that *Server) handleLocation(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	log := that.logger.With("method", "handleLocation")

	payloadReq, err := that.requirePlayer(msg, bufrw)
	if err != nil || payloadReq == nil {
		return err
	}

	if payloadReq.Position == nil {
		log.Error("Position is missing in payload")
		return that.sendErrorResponse(bufrw, msg.Action, "Position is required")
	}

	reading, _, err := that.gameUseCase.UpdateLocation(ctx, payloadReq.Player.ID, *payloadReq.Position)
	if err != nil {
		log.Error("failed to update location", "error", err)
		return that.sendErrorResponse(bufrw, msg.Action, fmt.Sprintf("location: %v", err))
	}

	payloadResp := Payload{Reading: reading}

	if err = that.sendMessage(bufrw, msg.Action, payloadResp); err != nil {
		return fmt.Errorf("failed to send reading: %w", err)
	}

	return nil
}

func (that *Server) handleGameLeave(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	log := that.logger.With("method", "handleGameLeave")

	payloadReq, err := that.requirePlayer(msg, bufrw)
	if err != nil || payloadReq == nil {
		return err
	}

	game, err := that.gameUseCase.LeaveGame(ctx, payloadReq.Player.ID)
	if err != nil {
		log.Error("failed to leave game", "error", err)
		return that.sendErrorResponse(bufrw, msg.Action, "game doesn't exist")
	}

	game.Status = gameStatusLeave

	log.Info("player leaving", "gameID", game.ID, "playerID", payloadReq.Player.ID)

	return that.broadcastGame(payloadActionGameLeave, game)
}

func (that *Server) handleDisconnect(bufrw *bufio.ReadWriter) {
	log := that.logger.With("method", "handleDisconnect")

	that.connectionsMutex.Lock()
	var disconnectedPlayerID string
	for playerID, connection := range that.connections {
		if connection == bufrw {
			disconnectedPlayerID = playerID
			break
		}
	}

	if disconnectedPlayerID == "" {
		that.connectionsMutex.Unlock()
		return
	}

	delete(that.connections, disconnectedPlayerID)
	that.connectionsMutex.Unlock()

	log.Info("player disconnected", "playerID", disconnectedPlayerID)

	that.disconnectedMutex.Lock()
	that.disconnectedPlayers[disconnectedPlayerID] = time.Now()
	that.disconnectedMutex.Unlock()
}

// handlePlayerOut closes the game of a player who never came back.
func (that *Server) handlePlayerOut(ctx context.Context, playerID string) {
	log := that.logger.With("method", "handlePlayerOut")

	game, err := that.gameUseCase.GetGameByPlayerID(ctx, playerID)
	if err != nil {
		log.Error("failed to get game by player ID", "playerID", playerID, "error", err)
		return
	}

	if _, err = that.gameUseCase.LeaveGame(ctx, playerID); err != nil {
		log.Error("failed to close game", "gameID", game.ID, "error", err)
		return
	}

	game.Status = gameStatusLeave

	if err = that.broadcastGame(payloadActionGameLeave, game); err != nil {
		log.Error("failed to notify players", "gameID", game.ID, "error", err)
	}
}

func (that *Server) playerReconnected(playerID string) {
	that.disconnectedMutex.Lock()
	defer that.disconnectedMutex.Unlock()
	delete(that.disconnectedPlayers, playerID)
}

func (that *Server) registerConnection(playerID string, bufrw *bufio.ReadWriter) {
	that.connectionsMutex.Lock()
	that.connections[playerID] = bufrw
	that.connectionsMutex.Unlock()
}

// broadcastGame sends the game to every connected member, masked per viewer.
func (that *Server) broadcastGame(action string, game *entity.Game) error {
	log := that.logger.With("method", "broadcastGame", "gameID", game.ID)

	for _, player := range game.Players {
		that.connectionsMutex.RLock()
		conn, ok := that.connections[player.ID]
		that.connectionsMutex.RUnlock()

		if !ok {
			log.Warn("connection not found for player", "playerID", player.ID)
			continue
		}

		payloadResp := Payload{
			Player: player,
			Game:   maskGameFor(game, player.ID),
		}

		if err := that.sendMessage(conn, action, payloadResp); err != nil {
			log.Error("failed to send game update", "playerID", player.ID, "error", err)
		}
	}

	return nil
}

// requirePlayer unmarshals the request payload and rejects it when the
// player is missing. A nil return with nil error means the rejection was
// already sent.
func (that *Server) requirePlayer(msg *Message, bufrw *bufio.ReadWriter) (*Payload, error) {
	var payloadReq Payload

	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payloadReq.Player == nil || payloadReq.Player.ID == "" {
		that.logger.Error("Player is missing in payload", "action", msg.Action)
		return nil, that.sendErrorResponse(bufrw, msg.Action, "Player is required")
	}

	that.registerConnection(payloadReq.Player.ID, bufrw)
	that.playerReconnected(payloadReq.Player.ID)

	return &payloadReq, nil
}

// maskGameFor hides hidden-role information the viewer must not see: other
// players' roles and positions, and night actions the viewer did not take
// part in. Aggressors see their teammates; everyone sees everything once the
// game has ended.
func maskGameFor(game *entity.Game, viewerID string) *entity.Game {
	masked := *game

	viewer := game.PlayerByID(viewerID)
	revealAll := game.IsEnded()

	masked.Players = make([]*entity.Player, 0, len(game.Players))
	for _, player := range game.Players {
		copied := *player
		copied.Position = nil

		if !revealAll && player.ID != viewerID && !sameAggressorTeam(viewer, player) {
			copied.Role = ""
		}

		masked.Players = append(masked.Players, &copied)
	}

	if !revealAll {
		masked.Actions = make([]entity.Action, 0, len(game.Actions))
		for _, action := range game.Actions {
			if action.ActorID != viewerID && action.Type == entity.ActionInvestigate {
				continue
			}
			masked.Actions = append(masked.Actions, action)
		}
	}

	return &masked
}

func sameAggressorTeam(viewer, player *entity.Player) bool {
	return viewer != nil && viewer.Role.IsAggressor() && player.Role.IsAggressor()
}

func (that *Server) sendErrorResponse(bufrw *bufio.ReadWriter, action, errorMsg string) error {
	payload := Payload{Error: errorMsg}
	if err := that.sendMessage(bufrw, action, payload); err != nil {
		return fmt.Errorf("failed to send error response: %w", err)
	}

	return nil
}
