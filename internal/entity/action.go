package entity

import "time"

const (
	ActionKill        = "kill"
	ActionTag         = "tag"
	ActionInvestigate = "investigate"
	ActionVote        = "vote"
)

// Action is one resolved entry of the append-only action log. Entries are
// only ever appended, in dispatch order, and stamped with the turn they were
// dispatched in.
type Action struct {
	Type      string    `json:"type"`
	ActorID   string    `json:"actor_id"`
	TargetID  string    `json:"target_id,omitempty"`
	Turn      int       `json:"turn"`
	Phase     string    `json:"phase"`
	Result    string    `json:"result,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Evidence is one entry of the append-only evidence log. The descriptor is
// produced elsewhere (camera, upload pipeline); the core only records it.
type Evidence struct {
	ActorID   string    `json:"actor_id"`
	URI       string    `json:"uri"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
