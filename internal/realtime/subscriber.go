package realtime

import (
	"context"

	"github.com/mcoot/multiplayer-demo/internal/model"
)

// Subscriber hands out feed subscriptions: a snapshot of the current player
// set plus a registered client that receives every later change.
type Subscriber interface {
	Subscribe(ctx context.Context, transport string) ([]*model.Player, *Client, error)
	Unsubscribe(client *Client)
}
