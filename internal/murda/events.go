package murda

import "github.com/rocketscienceinc/murda-backend/internal/entity"

type EventType string

// The closed dispatch surface of the state machine. Every mutation of a game
// goes through one of these events.
const (
	EventCreateLobby       EventType = "lobby:create"
	EventCreateLobbyFailed EventType = "lobby:create:failed"
	EventAddPlayer         EventType = "lobby:add_player"
	EventRemovePlayer      EventType = "lobby:remove_player"
	EventSetReady          EventType = "lobby:set_ready"
	EventStartGame         EventType = "game:start"
	EventStartGameFailed   EventType = "game:start:failed"
	EventPerformAction     EventType = "game:action"
	EventSubmitEvidence    EventType = "game:evidence"
	EventAdvancePhase      EventType = "game:advance_phase"
	EventAdvanceTurn       EventType = "game:advance_turn"
	EventEndGame           EventType = "game:end"
	EventClearError        EventType = "game:clear_error"
	EventReset             EventType = "game:reset"
)

// Event carries one dispatched trigger and its payload. Only the fields the
// event type needs are set.
type Event struct {
	Type EventType

	LobbyCode string
	Ruleset   string

	Player   *entity.Player
	PlayerID string
	Ready    bool

	Action   *entity.Action
	Evidence *entity.Evidence

	Winner  string
	Message string
}
