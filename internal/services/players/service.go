package players

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mcoot/multiplayer-demo/internal/dependencies/clock"
	"github.com/mcoot/multiplayer-demo/internal/dependencies/random"
	"github.com/mcoot/multiplayer-demo/internal/model"
	"github.com/mcoot/multiplayer-demo/internal/realtime"
	"github.com/mcoot/multiplayer-demo/internal/storage"
)

const (
	// ColorAlphabet is the digit set for generated colors
	ColorAlphabet = "0123456789ABCDEF"
	colorDigits   = 6
)

// Service is the backend's player CRUD surface plus its change feed. It
// performs no validation beyond rejecting non-finite coordinates.
type Service struct {
	storage storage.Storage
	hub     *realtime.Hub
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger
}

// New creates a new player Service
func New(
	storage storage.Storage,
	hub *realtime.Hub,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Service {
	return &Service{
		storage: storage,
		hub:     hub,
		clock:   clock,
		random:  random,
		logger:  logger.With(slog.String("component", "players")),
	}
}

// Ensure Service can back the feed transports
var _ realtime.Subscriber = (*Service)(nil)

// CreatePlayer inserts a player at a random spawn point with a random color
func (s *Service) CreatePlayer(ctx context.Context, name string) (*model.Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = model.DefaultPlayerName
	}

	now := s.clock.Now()
	player := &model.Player{
		ID:        model.PlayerID(s.random.NewID()),
		Name:      name,
		X:         float64(s.random.Intn(model.SpawnRange)),
		Y:         float64(s.random.Intn(model.SpawnRange)),
		Color:     "#" + s.random.String(colorDigits, ColorAlphabet),
		LastSeen:  now,
		CreatedAt: now,
	}

	if err := s.storage.SavePlayer(ctx, player); err != nil {
		return nil, fmt.Errorf("saving player: %w", err)
	}

	s.logger.Info("player created",
		slog.String("player_id", string(player.ID)),
		slog.String("name", player.Name))
	s.publish(model.EventInsert, player)
	return player, nil
}

// GetPlayer returns a single player
func (s *Service) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	return s.storage.GetPlayer(ctx, id)
}

// ListPlayers returns the full player set ordered by creation
func (s *Service) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	return s.storage.ListPlayers(ctx)
}

// UpdatePlayerPosition overwrites a player's position and refreshes its
// liveness. Updating a player that no longer exists is a logged no-op.
func (s *Service) UpdatePlayerPosition(ctx context.Context, id model.PlayerID, x, y float64) error {
	pos := model.Position{X: x, Y: y}
	if !pos.IsFinite() {
		return model.ErrInvalidPosition
	}

	player, err := s.storage.UpdatePosition(ctx, id, pos, s.clock.Now())
	if errors.Is(err, model.ErrPlayerNotFound) {
		s.logger.Warn("position update for missing player",
			slog.String("player_id", string(id)))
		return nil
	}
	if err != nil {
		return fmt.Errorf("updating position: %w", err)
	}

	s.publish(model.EventUpdate, player)
	return nil
}

// DeleteAllPlayers removes every player with no access control
func (s *Service) DeleteAllPlayers(ctx context.Context) (int, error) {
	removed, err := s.storage.DeleteAllPlayers(ctx)
	if err != nil {
		return 0, fmt.Errorf("deleting players: %w", err)
	}
	for _, p := range removed {
		s.publish(model.EventDelete, p)
	}
	s.logger.Info("all players deleted", slog.Int("count", len(removed)))
	return len(removed), nil
}

// DeleteInactive removes players whose LastSeen is strictly before cutoff
func (s *Service) DeleteInactive(ctx context.Context, cutoff time.Time) (int, error) {
	removed, err := s.storage.DeletePlayersSeenBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("deleting inactive players: %w", err)
	}
	for _, p := range removed {
		s.publish(model.EventDelete, p)
	}
	return len(removed), nil
}

// Subscribe registers a feed client and then reads the snapshot, so no
// change between the two is lost. A change may appear both in the snapshot
// and as the first event; applying it twice is harmless.
func (s *Service) Subscribe(ctx context.Context, transport string) ([]*model.Player, *realtime.Client, error) {
	client := realtime.NewClient(transport)
	s.hub.Register(client)

	snapshot, err := s.storage.ListPlayers(ctx)
	if err != nil {
		s.hub.Unregister(client)
		return nil, nil, fmt.Errorf("listing players: %w", err)
	}
	return snapshot, client, nil
}

// Unsubscribe releases a feed client
func (s *Service) Unsubscribe(client *realtime.Client) {
	s.hub.Unregister(client)
}

func (s *Service) publish(t model.EventType, p *model.Player) {
	s.hub.Publish(model.PlayerEvent{Type: t, Player: *p, At: s.clock.Now()})
}
