package bot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mcoot/multiplayer-demo/internal/client"
	"github.com/mcoot/multiplayer-demo/internal/dependencies/clock"
	"github.com/mcoot/multiplayer-demo/internal/dependencies/random"
	"github.com/mcoot/multiplayer-demo/internal/model"
)

// Config controls how many bots join and how they move
type Config struct {
	Count      int
	NamePrefix string
	// Step is how long each strategy choice is held
	Step time.Duration
	Loop client.LoopConfig
}

// DefaultConfig returns a single bot that changes direction every 400ms
func DefaultConfig() Config {
	return Config{
		Count:      1,
		NamePrefix: "Bot",
		Step:       400 * time.Millisecond,
		Loop:       client.DefaultLoopConfig(),
	}
}

// Runner drives headless players through the same session and motion loop
// a person uses. The bots share one roster and change feed.
type Runner struct {
	api    *client.HTTPClient
	cfg    Config
	logger *slog.Logger

	newStrategy func() Strategy
}

// NewRunner creates a Runner whose bots use RandomStrategy
func NewRunner(api *client.HTTPClient, cfg Config, rnd random.Random, logger *slog.Logger) *Runner {
	if cfg.Loop.NewTicker == nil {
		cfg.Loop.NewTicker = clock.NewTicker
	}
	return &Runner{
		api:         api,
		cfg:         cfg,
		logger:      logger.With(slog.String("component", "bot-runner")),
		newStrategy: func() Strategy { return NewRandomStrategy(rnd) },
	}
}

type bot struct {
	loop   *client.Loop
	sender client.PositionSender
}

// Join creates every bot's player. Bots never persist their identity.
func (r *Runner) Join(ctx context.Context) ([]model.PlayerID, error) {
	ids := make([]model.PlayerID, 0, r.cfg.Count)
	for i := 0; i < r.cfg.Count; i++ {
		p, err := r.api.CreatePlayer(ctx, fmt.Sprintf("%s %d", r.cfg.NamePrefix, i+1))
		if err != nil {
			return ids, fmt.Errorf("creating bot %d: %w", i+1, err)
		}
		ids = append(ids, p.ID)
	}
	return ids, nil
}

// Run joins the bots and moves them until ctx is cancelled
func (r *Runner) Run(ctx context.Context) error {
	ids, err := r.Join(ctx)
	if err != nil {
		return err
	}

	roster := client.NewRoster()
	feed := client.NewFeedSubscriber(r.api.FeedURL(), roster, client.DefaultFeedConfig(), r.logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return feed.Run(gctx)
	})

	bots := make([]bot, 0, len(ids))
	for _, id := range ids {
		b, err := r.start(gctx, id, roster)
		if err != nil {
			for _, started := range bots {
				started.loop.Stop()
				started.sender.Close()
			}
			return err
		}
		bots = append(bots, b)
	}
	r.logger.Info("bots joined", slog.Int("count", len(bots)))

	g.Go(func() error {
		<-gctx.Done()
		for _, b := range bots {
			b.loop.Stop()
			b.sender.Close()
		}
		return nil
	})

	return g.Wait()
}

func (r *Runner) start(ctx context.Context, id model.PlayerID, roster *client.Roster) (bot, error) {
	session := client.NewSessionManager(r.api, client.NewMemoryIdentityStore(id), client.SessionConfig{Reconcile: false}, r.logger)
	if _, err := session.AcquireIdentity(ctx); err != nil {
		return bot{}, err
	}

	sender := client.NewBestEffortSender(r.api, client.NewLogReporter(r.logger))
	input := NewInput(r.newStrategy(), r.cfg.Step, r.cfg.Loop.NewTicker)
	loop := client.NewLoop(r.cfg.Loop, session, roster, input, sender, nopRenderer{}, r.logger)
	if err := loop.Start(ctx); err != nil {
		_ = input.Close()
		return bot{}, err
	}
	return bot{loop: loop, sender: sender}, nil
}

type nopRenderer struct{}

func (nopRenderer) Render(client.Scene) {}
