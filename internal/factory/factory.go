package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/multiplayer-demo/internal/dependencies/clock"
	"github.com/mcoot/multiplayer-demo/internal/dependencies/random"
	"github.com/mcoot/multiplayer-demo/internal/realtime"
	"github.com/mcoot/multiplayer-demo/internal/services/players"
	"github.com/mcoot/multiplayer-demo/internal/services/sweeper"
	"github.com/mcoot/multiplayer-demo/internal/storage"
	"github.com/mcoot/multiplayer-demo/internal/storage/memory"
	redisstorage "github.com/mcoot/multiplayer-demo/internal/storage/redis"
	"github.com/mcoot/multiplayer-demo/internal/storage/sqlite"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
	StorageTypeSQLite = "sqlite"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random
	Logger *slog.Logger

	// Services
	Hub           *realtime.Hub
	PlayerService *players.Service
	Sweeper       *sweeper.Sweeper
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "sqlite")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SQLitePath is the database file (required if StorageType is "sqlite")
	SQLitePath string
	// SweeperConfig schedules the liveness sweep; zero fields use defaults
	SweeperConfig sweeper.Config
}

// New creates a new application with all dependencies wired. The hub is
// running when New returns; call Close to stop it and release storage.
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := newStorage(cfg)
	if err != nil {
		return nil, err
	}

	return newWithDependencies(store, clock.New(), random.New(), cfg.SweeperConfig, logger), nil
}

func newStorage(cfg Config) (storage.Storage, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		return redisstorage.New(*cfg.RedisConfig)
	case StorageTypeSQLite:
		if cfg.SQLitePath == "" {
			return nil, errors.New("SQLitePath required when StorageType is sqlite")
		}
		return sqlite.New(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be 'memory', 'redis' or 'sqlite'", storageType)
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, sweepCfg sweeper.Config, logger *slog.Logger) *App {
	hub := realtime.NewHub(logger)
	go hub.Run()

	playerService := players.New(store, hub, clk, rnd, logger)

	return &App{
		Storage:       store,
		Clock:         clk,
		Random:        rnd,
		Logger:        logger,
		Hub:           hub,
		PlayerService: playerService,
		Sweeper:       sweeper.New(playerService, clk, sweepCfg, logger),
	}
}

// RunSweeper blocks running the liveness sweep until ctx is cancelled
func (a *App) RunSweeper(ctx context.Context) {
	a.Sweeper.Run(ctx)
}

// Close stops the hub and closes storage connections
func (a *App) Close() error {
	a.Hub.Close()
	if c, ok := a.Storage.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
