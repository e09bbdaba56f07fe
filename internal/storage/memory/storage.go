package memory

import (
	"context"
	"sync"
	"time"

	"github.com/mcoot/multiplayer-demo/internal/model"
	"github.com/mcoot/multiplayer-demo/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu      sync.RWMutex
	players map[model.PlayerID]*model.Player
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players: make(map[model.PlayerID]*model.Player),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players[player.ID] = player.Clone()
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return player.Clone(), nil
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	players := make([]*model.Player, 0, len(s.players))
	for _, p := range s.players {
		players = append(players, p.Clone())
	}
	storage.SortPlayers(players)
	return players, nil
}

func (s *Storage) UpdatePosition(ctx context.Context, id model.PlayerID, pos model.Position, seenAt time.Time) (*model.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	player.X = pos.X
	player.Y = pos.Y
	player.LastSeen = seenAt
	return player.Clone(), nil
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.players, id)
	return nil
}

func (s *Storage) DeleteAllPlayers(ctx context.Context) ([]*model.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := make([]*model.Player, 0, len(s.players))
	for id, p := range s.players {
		removed = append(removed, p)
		delete(s.players, id)
	}
	storage.SortPlayers(removed)
	return removed, nil
}

func (s *Storage) DeletePlayersSeenBefore(ctx context.Context, cutoff time.Time) ([]*model.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed []*model.Player
	for id, p := range s.players {
		if p.LastSeen.Before(cutoff) {
			removed = append(removed, p)
			delete(s.players, id)
		}
	}
	storage.SortPlayers(removed)
	return removed, nil
}
