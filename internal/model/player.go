package model

import "time"

// PlayerID uniquely identifies a player across the system
type PlayerID string

// DefaultPlayerName is used when a player joins without a name
const DefaultPlayerName = "Anonymous"

// Player represents one connected participant in the shared space
type Player struct {
	ID        PlayerID
	Name      string
	X         float64
	Y         float64
	Color     string // "#RRGGBB", assigned once at creation
	LastSeen  time.Time
	CreatedAt time.Time
}

// Position returns the player's current coordinates
func (p *Player) Position() Position {
	return Position{X: p.X, Y: p.Y}
}

// Clone returns a copy that can be mutated without affecting the original
func (p *Player) Clone() *Player {
	c := *p
	return &c
}
