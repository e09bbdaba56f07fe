package client

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/multiplayer-demo/internal/dependencies/clock"
	"github.com/mcoot/multiplayer-demo/internal/model"
)

// KeyEvent is a key press or release edge
type KeyEvent struct {
	Dir  Direction
	Down bool
}

// KeyInput is a source of key edges. The loop owns it once started and
// closes it on teardown. A closed Events channel ends the loop.
type KeyInput interface {
	Events() <-chan KeyEvent
	Close() error
}

// Renderer draws one frame
type Renderer interface {
	Render(Scene)
}

// IdentitySource reports the controlled player, once known
type IdentitySource interface {
	Identity() (model.PlayerID, bool)
}

// LoopConfig holds the loop cadences and movement settings
type LoopConfig struct {
	FrameInterval time.Duration
	FlushInterval time.Duration
	Motion        MotionConfig
	// NewTicker defaults to clock.NewTicker
	NewTicker clock.TickerFactory
}

// DefaultLoopConfig returns a ~60fps frame rate and a 50ms flush cadence
func DefaultLoopConfig() LoopConfig {
	return LoopConfig{
		FrameInterval: 16 * time.Millisecond,
		FlushInterval: 50 * time.Millisecond,
		Motion:        DefaultMotionConfig(),
		NewTicker:     clock.NewTicker,
	}
}

// ErrLoopStarted is returned when Start is called twice
var ErrLoopStarted = errors.New("loop already started")

// Loop drives a MotionState from key input and two tickers: the frame
// ticker integrates movement and renders, the flush ticker sends changed
// positions. All motion state is touched only by the loop goroutine.
type Loop struct {
	cfg      LoopConfig
	identity IdentitySource
	roster   *Roster
	input    KeyInput
	sender   PositionSender
	renderer Renderer
	logger   *slog.Logger

	motion *MotionState

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewLoop creates a loop. Nothing is acquired until Start.
func NewLoop(cfg LoopConfig, identity IdentitySource, roster *Roster, input KeyInput, sender PositionSender, renderer Renderer, logger *slog.Logger) *Loop {
	if cfg.NewTicker == nil {
		cfg.NewTicker = clock.NewTicker
	}
	return &Loop{
		cfg:      cfg,
		identity: identity,
		roster:   roster,
		input:    input,
		sender:   sender,
		renderer: renderer,
		logger:   logger.With(slog.String("component", "loop")),
		motion:   NewMotionState(cfg.Motion),
		done:     make(chan struct{}),
	}
}

// resources is the stack of acquired handles, released last-in first-out
type resources []func()

func (r *resources) acquire(release func()) {
	*r = append(*r, release)
}

func (r resources) releaseAll() {
	for i := len(r) - 1; i >= 0; i-- {
		r[i]()
	}
}

// Start acquires the roster subscription, key input, flush ticker and frame
// ticker, in that order, and runs the loop until ctx is cancelled, Stop is
// called or the key input closes. Teardown releases them in reverse.
func (l *Loop) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.started {
		return ErrLoopStarted
	}
	l.started = true

	ctx, l.cancel = context.WithCancel(ctx)

	var res resources
	changes, unsubscribe := l.roster.Subscribe()
	res.acquire(unsubscribe)

	keys := l.input.Events()
	res.acquire(func() {
		if err := l.input.Close(); err != nil {
			l.logger.Warn("failed to release key input", slog.Any("error", err))
		}
	})

	flush := l.cfg.NewTicker(l.cfg.FlushInterval)
	res.acquire(flush.Stop)

	frame := l.cfg.NewTicker(l.cfg.FrameInterval)
	res.acquire(frame.Stop)

	go func() {
		defer close(l.done)
		defer res.releaseAll()
		l.run(ctx, changes, keys, flush.C(), frame.C())
	}()
	return nil
}

// Stop cancels the loop and waits for teardown to finish
func (l *Loop) Stop() {
	l.mu.Lock()
	started := l.started
	cancel := l.cancel
	l.mu.Unlock()

	if !started {
		return
	}
	cancel()
	<-l.done
}

// Done is closed once the loop has released its resources
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

func (l *Loop) run(ctx context.Context, changes <-chan struct{}, keys <-chan KeyEvent, flush, frame <-chan time.Time) {
	l.logger.Debug("loop started")
	defer l.logger.Debug("loop stopped")

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-keys:
			if !ok {
				return
			}
			if ev.Down {
				l.motion.KeyDown(ev.Dir)
			} else {
				l.motion.KeyUp(ev.Dir)
			}

		case <-changes:
			l.trySeed()

		case <-frame:
			l.trySeed()
			l.motion.Step()
			l.render()

		case <-flush:
			l.flush(ctx)
		}
	}
}

// trySeed adopts the controlled player's server position the first time it
// shows up in the roster
func (l *Loop) trySeed() {
	if l.motion.Seeded() {
		return
	}
	id, ok := l.identity.Identity()
	if !ok {
		return
	}
	p, ok := l.roster.Get(id)
	if !ok {
		return
	}
	l.motion.Seed(p.Position())
	l.logger.Debug("seeded position",
		slog.Float64("x", p.X),
		slog.Float64("y", p.Y),
	)
}

func (l *Loop) flush(ctx context.Context) {
	id, ok := l.identity.Identity()
	if !ok {
		return
	}
	pos, ok := l.motion.Flush()
	if !ok {
		return
	}
	l.sender.Send(ctx, id, pos)
}

func (l *Loop) render() {
	id, _ := l.identity.Identity()
	predicted, ok := l.motion.Predicted()
	l.renderer.Render(BuildScene(l.cfg.Motion.Area, l.roster.Players(), id, predicted, ok))
}
