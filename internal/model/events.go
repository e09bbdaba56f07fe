package model

import "time"

// EventType identifies the kind of change in the player set
type EventType string

const (
	EventInsert EventType = "insert"
	EventUpdate EventType = "update"
	EventDelete EventType = "delete"
)

// PlayerEvent is one entry of the player change feed.
// Delete events carry the last known record of the removed player.
type PlayerEvent struct {
	Type   EventType
	Player Player
	At     time.Time
}
