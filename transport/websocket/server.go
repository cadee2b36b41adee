package websocket

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/rocketscienceinc/murda-backend/internal/entity"
	"github.com/rocketscienceinc/murda-backend/internal/geo"
	"github.com/rocketscienceinc/murda-backend/internal/pkg"
	"github.com/rocketscienceinc/murda-backend/internal/proximity"
)

const disconnectSweepInterval = 5 * time.Second

type gameUseCase interface {
	GetOrCreatePlayer(ctx context.Context, id string) (*entity.Player, error)
	GetGameByPlayerID(ctx context.Context, playerID string) (*entity.Game, error)

	CreateLobby(ctx context.Context, playerID, playerName, ruleset string) (*entity.Game, error)
	JoinLobby(ctx context.Context, code, playerID, playerName string) (*entity.Game, error)
	SetReady(ctx context.Context, playerID string, ready bool) (*entity.Game, error)
	StartGame(ctx context.Context, playerID string) (*entity.Game, error)

	PerformAction(ctx context.Context, playerID string, action entity.Action) (*entity.Game, error)
	SubmitEvidence(ctx context.Context, playerID string, evidence entity.Evidence) (*entity.Game, error)
	AdvancePhase(ctx context.Context, playerID string) (*entity.Game, error)
	UpdateLocation(ctx context.Context, playerID string, position geo.Point) (*proximity.Reading, *entity.Game, error)

	LeaveGame(ctx context.Context, playerID string) (*entity.Game, error)
}

type Server struct {
	logger      *slog.Logger
	gameUseCase gameUseCase

	handlers map[string]func(ctx context.Context, message *Message, bufrw *bufio.ReadWriter) error

	connectionsMutex sync.RWMutex
	connections      map[string]*bufio.ReadWriter

	disconnectedMutex   sync.Mutex
	disconnectedPlayers map[string]time.Time
	reconnectGrace      time.Duration
}

func New(logger *slog.Logger, gameUseCase gameUseCase, reconnectGrace time.Duration) *Server {
	server := &Server{
		logger:      logger,
		gameUseCase: gameUseCase,

		connections:         make(map[string]*bufio.ReadWriter),
		disconnectedPlayers: make(map[string]time.Time),
		reconnectGrace:      reconnectGrace,

		handlers: make(map[string]func(context.Context, *Message, *bufio.ReadWriter) error),
	}

	server.handlers["connect"] = server.handleConnect
	server.handlers["lobby:new"] = server.handleNewLobby
	server.handlers["lobby:join"] = server.handleJoinLobby
	server.handlers["lobby:ready"] = server.handleReady
	server.handlers["game:start"] = server.handleStartGame
	server.handlers["game:phase"] = server.handleAdvancePhase
	server.handlers["game:action"] = server.handleGameAction
	server.handlers["game:evidence"] = server.handleEvidence
	server.handlers["game:location"] = server.handleLocation
	server.handlers["game:leave"] = server.handleGameLeave

	return server
}

// Start - starts WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	go that.watchDisconnected(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.upgradeToWebSocket(ctx, w, r)
	})

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	if err := srv.ListenAndServe(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// upgradeToWebSocket - upgrades the connection to WebSocket.
func (that *Server) upgradeToWebSocket(ctx context.Context, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "upgradeToWebSocket")

	if req.Header.Get("Upgrade") != "websocket" {
		http.Error(writer, "not a websocket upgrade", http.StatusBadRequest)
		return
	}

	key := req.Header.Get("Sec-WebSocket-Key")
	acceptKey := pkg.GenerateAcceptKey(key)

	writer.Header().Set("Upgrade", "websocket")
	writer.Header().Set("Connection", "Upgrade")
	writer.Header().Set("Sec-WebSocket-Accept", acceptKey)
	writer.WriteHeader(http.StatusSwitchingProtocols)

	hijacker, ok := writer.(http.Hijacker)
	if !ok {
		log.Error("web server does not support hijacking")
		return
	}

	conn, bufrw, err := hijacker.Hijack()
	if err != nil {
		log.Error("failed to hijack connection", "error", err)
		return
	}

	defer conn.Close()

	log.Info("WebSocket connection established")

	if err = that.handleMessages(ctx, bufrw); err != nil {
		log.Error("error handling messages", "error", err)
	}

	that.handleDisconnect(bufrw)
}

// handleMessages - processes messages from the client.
func (that *Server) handleMessages(ctx context.Context, bufrw *bufio.ReadWriter) error {
	log := that.logger.With("method", "handleMessages")

	for {
		reqBody, err := that.readRequest(bufrw)
		if err != nil {
			return fmt.Errorf("failed to read message: %w", err)
		}

		var message Message
		if err = json.Unmarshal(reqBody, &message); err != nil {
			log.Error("failed to unmarshal message", "error", err)
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Error("unknown action", "action", message.Action)
			continue
		}

		if err = handler(ctx, &message, bufrw); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}

// watchDisconnected sweeps players whose reconnect grace expired and closes
// their game the same way an explicit leave would.
func (that *Server) watchDisconnected(ctx context.Context) {
	log := that.logger.With("method", "watchDisconnected")

	ticker := time.NewTicker(disconnectSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		var expired []string

		that.disconnectedMutex.Lock()
		for playerID, since := range that.disconnectedPlayers {
			if time.Since(since) > that.reconnectGrace {
				expired = append(expired, playerID)
				delete(that.disconnectedPlayers, playerID)
			}
		}
		that.disconnectedMutex.Unlock()

		for _, playerID := range expired {
			log.Info("reconnect grace expired", "playerID", playerID)
			that.handlePlayerOut(ctx, playerID)
		}
	}
}
