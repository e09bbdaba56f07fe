package sweeper

import (
	"context"
	"log/slog"
	"time"

	"github.com/mcoot/multiplayer-demo/internal/dependencies/clock"
)

// Deleter removes players last seen strictly before cutoff
type Deleter interface {
	DeleteInactive(ctx context.Context, cutoff time.Time) (int, error)
}

// Config holds sweep scheduling settings
type Config struct {
	Interval  time.Duration
	Threshold time.Duration
	NewTicker clock.TickerFactory
}

// DefaultConfig returns the default sweep schedule
func DefaultConfig() Config {
	return Config{
		Interval:  15 * time.Second,
		Threshold: 60 * time.Second,
		NewTicker: clock.NewTicker,
	}
}

// Sweeper periodically deletes players that stopped sending updates
type Sweeper struct {
	deleter Deleter
	clock   clock.Clock
	cfg     Config
	logger  *slog.Logger
}

// New creates a Sweeper. Zero config fields fall back to defaults.
func New(deleter Deleter, clock clock.Clock, cfg Config, logger *slog.Logger) *Sweeper {
	def := DefaultConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = def.Threshold
	}
	if cfg.NewTicker == nil {
		cfg.NewTicker = def.NewTicker
	}
	return &Sweeper{
		deleter: deleter,
		clock:   clock,
		cfg:     cfg,
		logger:  logger.With(slog.String("component", "sweeper")),
	}
}

// Run sweeps every Interval until ctx is cancelled
func (s *Sweeper) Run(ctx context.Context) {
	ticker := s.cfg.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	s.logger.Info("sweeper started",
		slog.Duration("interval", s.cfg.Interval),
		slog.Duration("threshold", s.cfg.Threshold))

	for {
		select {
		case <-ticker.C():
			if _, err := s.SweepOnce(ctx); err != nil {
				s.logger.Error("sweep failed", slog.Any("error", err))
			}
		case <-ctx.Done():
			s.logger.Info("sweeper stopped")
			return
		}
	}
}

// SweepOnce deletes every player whose LastSeen is older than now-Threshold
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	cutoff := s.clock.Now().Add(-s.cfg.Threshold)
	n, err := s.deleter.DeleteInactive(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("cleaning up inactive players", slog.Int("count", n))
	}
	return n, nil
}
