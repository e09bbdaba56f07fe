package mocks

import (
	"sync"
	"time"

	"github.com/mcoot/multiplayer-demo/internal/dependencies/clock"
)

// MockTicker is a Ticker that only ticks when told to
type MockTicker struct {
	Interval time.Duration

	ch      chan time.Time
	mu      sync.Mutex
	stopped bool
	onStop  func()
}

// Ensure MockTicker implements Ticker
var _ clock.Ticker = (*MockTicker)(nil)

// NewMockTicker creates a stopped-on-demand ticker for the given interval
func NewMockTicker(d time.Duration) *MockTicker {
	return &MockTicker{Interval: d, ch: make(chan time.Time)}
}

// C returns the tick channel
func (t *MockTicker) C() <-chan time.Time {
	return t.ch
}

// Tick delivers one tick, blocking until the receiver takes it
func (t *MockTicker) Tick() {
	t.ch <- time.Time{}
}

// Stop marks the ticker stopped
func (t *MockTicker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	t.stopped = true
	if t.onStop != nil {
		t.onStop()
	}
}

// Stopped reports whether Stop has been called
func (t *MockTicker) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

// MockTickerFactory hands out MockTickers keyed by interval and records the
// order in which they are stopped
type MockTickerFactory struct {
	mu      sync.Mutex
	tickers map[time.Duration]*MockTicker
	stops   []time.Duration
}

// NewMockTickerFactory creates an empty factory
func NewMockTickerFactory() *MockTickerFactory {
	return &MockTickerFactory{
		tickers: make(map[time.Duration]*MockTicker),
	}
}

// New satisfies clock.TickerFactory
func (f *MockTickerFactory) New(d time.Duration) clock.Ticker {
	t := NewMockTicker(d)
	t.onStop = func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.stops = append(f.stops, d)
	}

	f.mu.Lock()
	f.tickers[d] = t
	f.mu.Unlock()
	return t
}

// Ticker returns the ticker created for interval d, or nil
func (f *MockTickerFactory) Ticker(d time.Duration) *MockTicker {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tickers[d]
}

// Stops returns the intervals of stopped tickers in stop order
func (f *MockTickerFactory) Stops() []time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]time.Duration, len(f.stops))
	copy(out, f.stops)
	return out
}
