package storage

import (
	"sort"

	"github.com/mcoot/multiplayer-demo/internal/model"
)

// SortPlayers orders players by creation time, breaking ties by ID
func SortPlayers(players []*model.Player) {
	sort.SliceStable(players, func(i, j int) bool {
		a, b := players[i], players[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}
