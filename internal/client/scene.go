package client

import (
	"github.com/mcoot/multiplayer-demo/internal/model"
	"github.com/mcoot/multiplayer-demo/internal/storage"
)

// Sprite is one player as it should be drawn
type Sprite struct {
	ID       model.PlayerID
	Name     string
	Color    string
	Position model.Position
	// Self marks the controlled player
	Self bool
	// Predicted is set when Position is the local estimate rather than
	// the server's
	Predicted bool
}

// Scene is everything a renderer needs for one frame
type Scene struct {
	Area    model.Area
	Sprites []Sprite
}

// BuildScene places every player at its server position, except self which
// is drawn at the predicted position when one is available
func BuildScene(area model.Area, players []*model.Player, self model.PlayerID, predicted model.Position, hasPredicted bool) Scene {
	ordered := make([]*model.Player, len(players))
	copy(ordered, players)
	storage.SortPlayers(ordered)

	sprites := make([]Sprite, 0, len(ordered))
	for _, p := range ordered {
		s := Sprite{
			ID:       p.ID,
			Name:     p.Name,
			Color:    p.Color,
			Position: p.Position(),
			Self:     self != "" && p.ID == self,
		}
		if s.Self && hasPredicted {
			s.Position = predicted
			s.Predicted = true
		}
		sprites = append(sprites, s)
	}
	return Scene{Area: area, Sprites: sprites}
}

// Self returns the controlled player's sprite, if present
func (s Scene) Self() (Sprite, bool) {
	for _, sp := range s.Sprites {
		if sp.Self {
			return sp, true
		}
	}
	return Sprite{}, false
}
