package bot

import (
	"github.com/mcoot/multiplayer-demo/internal/client"
	"github.com/mcoot/multiplayer-demo/internal/dependencies/random"
)

// RandomStrategy wanders: each step holds one random direction or rests
type RandomStrategy struct {
	random random.Random
}

// NewRandomStrategy creates a new RandomStrategy
func NewRandomStrategy(rnd random.Random) *RandomStrategy {
	return &RandomStrategy{random: rnd}
}

// Choose picks one of the four directions, or nothing one time in five
func (s *RandomStrategy) Choose() []client.Direction {
	n := s.random.Intn(len(client.Directions) + 1)
	if n >= len(client.Directions) {
		return nil
	}
	return []client.Direction{client.Directions[n]}
}
