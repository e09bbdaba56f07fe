package storage

import (
	"context"
	"time"

	"github.com/mcoot/multiplayer-demo/internal/model"
)

// Storage defines the interface for player persistence.
// Implementations return copies; callers may mutate what they receive.
type Storage interface {
	// SavePlayer inserts or overwrites a player record
	SavePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)

	// ListPlayers returns every player ordered by creation time, then ID
	ListPlayers(ctx context.Context) ([]*model.Player, error)

	// UpdatePosition patches the position and liveness timestamp of an
	// existing record. Returns model.ErrPlayerNotFound if it no longer exists.
	UpdatePosition(ctx context.Context, id model.PlayerID, pos model.Position, seenAt time.Time) (*model.Player, error)

	DeletePlayer(ctx context.Context, id model.PlayerID) error

	// DeleteAllPlayers removes every player and returns the removed records
	DeleteAllPlayers(ctx context.Context) ([]*model.Player, error)

	// DeletePlayersSeenBefore removes players whose LastSeen is strictly
	// before cutoff and returns the removed records
	DeletePlayersSeenBefore(ctx context.Context, cutoff time.Time) ([]*model.Player, error)
}
