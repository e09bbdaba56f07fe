package bot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/multiplayer-demo/internal/client"
	"github.com/mcoot/multiplayer-demo/internal/dependencies/mocks"
)

// scriptStrategy returns its choices in order, then rests
type scriptStrategy struct {
	steps [][]client.Direction
}

func (s *scriptStrategy) Choose() []client.Direction {
	if len(s.steps) == 0 {
		return nil
	}
	next := s.steps[0]
	s.steps = s.steps[1:]
	return next
}

func nextEvent(t *testing.T, in *Input) client.KeyEvent {
	t.Helper()
	select {
	case ev, ok := <-in.Events():
		require.True(t, ok, "events closed")
		return ev
	case <-time.After(time.Second):
		t.Fatal("no key event")
		return client.KeyEvent{}
	}
}

func TestInput_ReplacesHeldKeysEachStep(t *testing.T) {
	tickers := mocks.NewMockTickerFactory()
	strategy := &scriptStrategy{steps: [][]client.Direction{
		{client.DirUp},
		{client.DirUp},
		{client.DirLeft},
		nil,
	}}
	in := NewInput(strategy, 100*time.Millisecond, tickers.New)
	defer func() { _ = in.Close() }()
	ticker := tickers.Ticker(100 * time.Millisecond)
	require.NotNil(t, ticker)

	go ticker.Tick()
	assert.Equal(t, client.KeyEvent{Dir: client.DirUp, Down: true}, nextEvent(t, in))

	// Same choice again: no edges
	ticker.Tick()

	go ticker.Tick()
	assert.Equal(t, client.KeyEvent{Dir: client.DirUp, Down: false}, nextEvent(t, in))
	assert.Equal(t, client.KeyEvent{Dir: client.DirLeft, Down: true}, nextEvent(t, in))

	go ticker.Tick()
	assert.Equal(t, client.KeyEvent{Dir: client.DirLeft, Down: false}, nextEvent(t, in))
}

func TestInput_CloseStopsTicker(t *testing.T) {
	tickers := mocks.NewMockTickerFactory()
	in := NewInput(&scriptStrategy{}, time.Second, tickers.New)

	require.NoError(t, in.Close())
	assert.True(t, tickers.Ticker(time.Second).Stopped())
	_, ok := <-in.Events()
	assert.False(t, ok)
}
