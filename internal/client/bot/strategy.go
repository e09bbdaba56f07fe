package bot

import "github.com/mcoot/multiplayer-demo/internal/client"

// Strategy decides which keys a bot holds for its next step
type Strategy interface {
	// Choose returns the directions to hold; none means stand still
	Choose() []client.Direction
}
