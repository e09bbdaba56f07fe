package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"

	"github.com/mcoot/multiplayer-demo/internal/api"
	"github.com/mcoot/multiplayer-demo/internal/factory"
	redisstorage "github.com/mcoot/multiplayer-demo/internal/storage/redis"
	"github.com/mcoot/multiplayer-demo/internal/web"
)

func main() {
	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Build factory config from environment
	cfg := factory.Config{
		Logger:      logger,
		StorageType: os.Getenv("STORAGE_TYPE"),
		SQLitePath:  getEnvOrDefault("SQLITE_PATH", "players.db"),
	}
	cfg.SweeperConfig.Interval = durationFromEnv(logger, "SWEEP_INTERVAL")
	cfg.SweeperConfig.Threshold = durationFromEnv(logger, "INACTIVITY_THRESHOLD")

	// Configure Redis if storage type is redis
	if cfg.StorageType == factory.StorageTypeRedis {
		redisURL := os.Getenv("REDIS_URL")
		if redisURL == "" {
			logger.Error("REDIS_URL required when STORAGE_TYPE=redis")
			os.Exit(1)
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = redisURL
		cfg.RedisConfig = &redisCfg
	}

	// Create application factory
	app, err := factory.New(cfg)
	if err != nil {
		logger.Error("failed to create application", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("failed to close application", slog.Any("error", err))
		}
	}()

	// API and spectator page share one router
	router := mux.NewRouter()
	api.RegisterRoutes(router, api.RouterConfig{
		Logger:        logger,
		PlayerService: app.PlayerService,
	})
	web.RegisterRoutes(router, web.RouterConfig{
		Logger:        logger,
		PlayerService: app.PlayerService,
	})

	serverConfig := api.DefaultServerConfig()
	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			logger.Error("invalid PORT", slog.String("port", port))
			os.Exit(1)
		}
		serverConfig.Port = p
	}
	server := api.NewServer(router, serverConfig, logger)

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(gctx)
	})
	g.Go(func() error {
		app.RunSweeper(gctx)
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// durationFromEnv parses a duration such as "15s", returning zero (the
// default) when unset
func durationFromEnv(logger *slog.Logger, key string) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return 0
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		logger.Error("invalid duration", slog.String("key", key), slog.String("value", val))
		os.Exit(1)
	}
	return d
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
