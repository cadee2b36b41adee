package proximity

import (
	"github.com/rocketscienceinc/murda-backend/internal/entity"
	"github.com/rocketscienceinc/murda-backend/internal/geo"
)

// Reading is the per-tick result of evaluating an observer against its
// relevant peers. It is ephemeral: each location tick supersedes the last,
// and nothing here is persisted.
type Reading struct {
	ObserverID string   `json:"observer_id"`
	NearbyIDs  []string `json:"nearby_ids"`
	NearestID  string   `json:"nearest_id,omitempty"`

	// NearestDistanceMeters is reported even above the threshold so a client
	// can render warming/cooling signals. It is nil when no relevant peer has
	// a position, which is distinct from "everyone is far away".
	NearestDistanceMeters *float64 `json:"nearest_distance_meters"`

	ThresholdMeters float64 `json:"threshold_meters"`
}

// Engine evaluates which peers are within actionable distance of the local
// observer. It holds only threshold configuration: the caller supplies the
// tick cadence and the position data, so scheduling stays a platform concern.
type Engine struct {
	tagDistanceMeters     float64
	warningDistanceMeters float64

	role  entity.Role
	phase string
}

func NewEngine(tagDistanceMeters, warningDistanceMeters float64) *Engine {
	return &Engine{
		tagDistanceMeters:     tagDistanceMeters,
		warningDistanceMeters: warningDistanceMeters,
	}
}

// Configure sets the observer's role and the current phase. Aggressors hunt
// at the short tag threshold; targets watch for aggressors at the longer
// warning threshold.
func (that *Engine) Configure(role entity.Role, phase string) {
	that.role = role
	that.phase = phase
}

// ThresholdMeters returns the active threshold for the configured role.
func (that *Engine) ThresholdMeters() float64 {
	if that.role.IsAggressor() {
		return that.tagDistanceMeters
	}
	return that.warningDistanceMeters
}

// OnLocationUpdate computes a fresh reading for the observer against all
// known peers. Visibility is asymmetric: an aggressor sees every living
// non-aggressor, while a target sees only aggressors. Peers without a
// position are excluded entirely rather than treated as near or far, and an
// empty peer set yields an empty reading, never an error.
func (that *Engine) OnLocationUpdate(observer *entity.Player, peers []*entity.Player) Reading {
	reading := Reading{
		ObserverID:      observer.ID,
		NearbyIDs:       []string{},
		ThresholdMeters: that.ThresholdMeters(),
	}

	if !observer.HasPosition() {
		return reading
	}

	for _, peer := range peers {
		if !that.isRelevant(observer, peer) {
			continue
		}

		meters := geo.Distance(*observer.Position, *peer.Position)

		if reading.NearestDistanceMeters == nil || meters < *reading.NearestDistanceMeters {
			distance := meters
			reading.NearestDistanceMeters = &distance
			reading.NearestID = peer.ID
		}

		// Ties at the threshold are inclusive: everyone at or inside the
		// boundary is reported.
		if meters <= reading.ThresholdMeters {
			reading.NearbyIDs = append(reading.NearbyIDs, peer.ID)
		}
	}

	return reading
}

func (that *Engine) isRelevant(observer, peer *entity.Player) bool {
	if peer.ID == observer.ID || !peer.IsAlive || !peer.HasPosition() {
		return false
	}

	if that.role.IsAggressor() {
		// Aggressors see all living targets, never their own team.
		return !peer.Role.IsAggressor()
	}

	// Targets only see the threats.
	return peer.Role.IsAggressor()
}
