package entity

import "github.com/rocketscienceinc/murda-backend/internal/geo"

const (
	PlayerWaiting    = "waiting"
	PlayerPlaying    = "playing"
	PlayerEliminated = "eliminated"
)

type Player struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Role    Role   `json:"role,omitempty"`
	IsAlive bool   `json:"is_alive"`
	IsHost  bool   `json:"is_host,omitempty"`
	IsReady bool   `json:"is_ready,omitempty"`
	Status  string `json:"status"`
	GameID  string `json:"game_id,omitempty"`

	// Position is the only field written outside the dispatch path: the
	// location stream updates it last-writer-wins per player. It feeds the
	// proximity engine and never participates in turn or win logic directly.
	Position *geo.Point `json:"position,omitempty"`
}

// Eliminate marks the player dead. IsAlive is monotonic: it flips to false
// exactly once and never back.
func (that *Player) Eliminate() {
	that.IsAlive = false
	that.Status = PlayerEliminated
}

func (that *Player) HasPosition() bool {
	return that.Position != nil
}
