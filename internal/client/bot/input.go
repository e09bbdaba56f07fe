package bot

import (
	"sync"
	"time"

	"github.com/mcoot/multiplayer-demo/internal/client"
	"github.com/mcoot/multiplayer-demo/internal/dependencies/clock"
)

// Input is a KeyInput that replaces the held keys with the strategy's
// choice every step
type Input struct {
	strategy Strategy
	ticker   clock.Ticker

	events   chan client.KeyEvent
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

var _ client.KeyInput = (*Input)(nil)

// NewInput starts choosing keys every step
func NewInput(strategy Strategy, step time.Duration, newTicker clock.TickerFactory) *Input {
	in := &Input{
		strategy: strategy,
		ticker:   newTicker(step),
		events:   make(chan client.KeyEvent),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go in.run()
	return in
}

func (in *Input) Events() <-chan client.KeyEvent {
	return in.events
}

func (in *Input) Close() error {
	in.stopOnce.Do(func() { close(in.stop) })
	<-in.done
	return nil
}

func (in *Input) run() {
	defer close(in.done)
	defer close(in.events)
	defer in.ticker.Stop()

	held := make(map[client.Direction]bool, len(client.Directions))
	for {
		select {
		case <-in.stop:
			return
		case <-in.ticker.C():
		}

		next := make(map[client.Direction]bool, 2)
		for _, d := range in.strategy.Choose() {
			next[d] = true
		}

		for _, d := range client.Directions {
			switch {
			case held[d] && !next[d]:
				if !in.emit(client.KeyEvent{Dir: d, Down: false}) {
					return
				}
			case !held[d] && next[d]:
				if !in.emit(client.KeyEvent{Dir: d, Down: true}) {
					return
				}
			}
		}
		held = next
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
