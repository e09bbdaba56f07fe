package factory

import (
	"context"
	"log/slog"
	"time"

	"github.com/mcoot/multiplayer-demo/internal/dependencies/mocks"
	"github.com/mcoot/multiplayer-demo/internal/model"
	"github.com/mcoot/multiplayer-demo/internal/services/sweeper"
	"github.com/mcoot/multiplayer-demo/internal/storage/memory"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp(logger *slog.Logger) *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	app := newWithDependencies(store, mockClock, mockRandom, sweeper.DefaultConfig(), logger)

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}

// SeedPlayer stores a player directly, bypassing the service and its events
func (t *TestApp) SeedPlayer(ctx context.Context, p *model.Player) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = t.MockClock.Now()
	}
	if p.LastSeen.IsZero() {
		p.LastSeen = p.CreatedAt
	}
	return t.Storage.SavePlayer(ctx, p)
}
