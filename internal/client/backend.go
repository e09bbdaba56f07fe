package client

import (
	"context"

	"github.com/mcoot/multiplayer-demo/internal/model"
)

// Backend is the subset of the server API the play session drives
type Backend interface {
	CreatePlayer(ctx context.Context, name string) (*model.Player, error)
	ListPlayers(ctx context.Context) ([]*model.Player, error)
	UpdatePlayerPosition(ctx context.Context, id model.PlayerID, x, y float64) error
}

// Ensure HTTPClient satisfies Backend
var _ Backend = (*HTTPClient)(nil)
