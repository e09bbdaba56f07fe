package response

import (
	"time"

	"github.com/mcoot/multiplayer-demo/internal/model"
)

// Player represents a player in API responses and change-feed frames
type Player struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Color     string    `json:"color"`
	LastSeen  time.Time `json:"last_seen"`
	CreatedAt time.Time `json:"created_at"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	return Player{
		ID:        string(p.ID),
		Name:      p.Name,
		X:         p.X,
		Y:         p.Y,
		Color:     p.Color,
		LastSeen:  p.LastSeen,
		CreatedAt: p.CreatedAt,
	}
}

// ToModel converts back to a model.Player
func (p Player) ToModel() *model.Player {
	return &model.Player{
		ID:        model.PlayerID(p.ID),
		Name:      p.Name,
		X:         p.X,
		Y:         p.Y,
		Color:     p.Color,
		LastSeen:  p.LastSeen,
		CreatedAt: p.CreatedAt,
	}
}

// PlayersFromModel converts a slice, never returning nil
func PlayersFromModel(players []*model.Player) []Player {
	out := make([]Player, 0, len(players))
	for _, p := range players {
		out = append(out, PlayerFromModel(p))
	}
	return out
}

// PlayerListResponse is the response for listing players
type PlayerListResponse struct {
	Players []Player `json:"players"`
}

// DeleteResponse reports how many records a bulk delete removed
type DeleteResponse struct {
	Deleted int `json:"deleted"`
}

// HealthResponse is the response for the health endpoint
type HealthResponse struct {
	Status string `json:"status"`
}

// FeedMessage is one frame of the player change feed. Snapshot frames carry
// Players; insert, update and delete frames carry Player.
type FeedMessage struct {
	Type    string    `json:"type"`
	Players []Player  `json:"players,omitempty"`
	Player  *Player   `json:"player,omitempty"`
	At      time.Time `json:"at"`
}

// FeedSnapshotType names the first frame of every subscription
const FeedSnapshotType = "snapshot"

// SnapshotMessage builds the initial frame of a subscription
func SnapshotMessage(players []*model.Player, at time.Time) FeedMessage {
	return FeedMessage{
		Type:    FeedSnapshotType,
		Players: PlayersFromModel(players),
		At:      at,
	}
}

// EventMessage builds the frame for a single change event
func EventMessage(ev model.PlayerEvent) FeedMessage {
	p := PlayerFromModel(&ev.Player)
	return FeedMessage{
		Type:   string(ev.Type),
		Player: &p,
		At:     ev.At,
	}
}
