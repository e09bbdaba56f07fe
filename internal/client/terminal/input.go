package terminal

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/multiplayer-demo/internal/client"
	"github.com/mcoot/multiplayer-demo/internal/dependencies/clock"
)

// InputConfig controls key-release detection
type InputConfig struct {
	// HoldTimeout is how long a key counts as held after its last repeat.
	// Terminals report presses and auto-repeats but never releases.
	HoldTimeout time.Duration
	Clock       clock.Clock
	NewTicker   clock.TickerFactory
}

// DefaultInputConfig returns a 150ms hold timeout on the real clock
func DefaultInputConfig() InputConfig {
	return InputConfig{
		HoldTimeout: 150 * time.Millisecond,
		Clock:       clock.New(),
		NewTicker:   clock.NewTicker,
	}
}

// Input turns a raw keystroke stream into key press and release edges
type Input struct {
	cfg    InputConfig
	logger *slog.Logger

	keys   chan Key
	events chan client.KeyEvent
	quit   chan struct{}
	stop   chan struct{}
	done   chan struct{}

	stopOnce sync.Once
}

var _ client.KeyInput = (*Input)(nil)

// NewInput starts reading keystrokes from r
func NewInput(r io.Reader, cfg InputConfig, logger *slog.Logger) *Input {
	in := &Input{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "input")),
		keys:   make(chan Key),
		events: make(chan client.KeyEvent),
		quit:   make(chan struct{}),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go in.read(r)
	go in.run()
	return in
}

// Events delivers key edges. It is closed when the user quits, the reader
// ends or Close is called.
func (in *Input) Events() <-chan client.KeyEvent {
	return in.events
}

// Quit is closed when the user asks to quit or the input ends
func (in *Input) Quit() <-chan struct{} {
	return in.quit
}

// Close stops edge generation. A read blocked on the underlying reader is
// left to finish on its own.
func (in *Input) Close() error {
	in.stopOnce.Do(func() { close(in.stop) })
	<-in.done
	return nil
}

func (in *Input) read(r io.Reader) {
	defer close(in.keys)

	buf := make([]byte, 64)
	var pending []byte
	for {
		n, err := r.Read(buf)
		if n > 0 {
			var keys []Key
			keys, pending = Decode(append(pending, buf[:n]...))
			for _, k := range keys {
				select {
				case in.keys <- k:
				case <-in.stop:
					return
				}
			}
		}
		if err != nil {
			if err != io.EOF {
				in.logger.Warn("reading keys failed", slog.Any("error", err))
			}
			return
		}
	}
}

func (in *Input) run() {
	defer close(in.done)
	defer close(in.events)
	defer close(in.quit)

	ticker := in.cfg.NewTicker(in.cfg.HoldTimeout / 3)
	defer ticker.Stop()

	held := make(map[client.Direction]time.Time, len(client.Directions))
	for {
		select {
		case <-in.stop:
			return

		case k, ok := <-in.keys:
			if !ok || k.Quit {
				return
			}
			_, down := held[k.Dir]
			held[k.Dir] = in.cfg.Clock.Now()
			if !down && !in.emit(client.KeyEvent{Dir: k.Dir, Down: true}) {
				return
			}

		case <-ticker.C():
			now := in.cfg.Clock.Now()
			for _, dir := range client.Directions {
				last, down := held[dir]
				if !down || now.Sub(last) < in.cfg.HoldTimeout {
					continue
				}
				delete(held, dir)
				if !in.emit(client.KeyEvent{Dir: dir, Down: false}) {
					return
				}
			}
		}
	}
}

func (in *Input) emit(ev client.KeyEvent) bool {
	select {
	case in.events <- ev:
		return true
	case <-in.stop:
		return false
	}
}
