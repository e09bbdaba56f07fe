package terminal

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/multiplayer-demo/internal/client"
	"github.com/mcoot/multiplayer-demo/internal/dependencies/mocks"
	"github.com/mcoot/multiplayer-demo/internal/testutil"
)

type InputSuite struct {
	suite.Suite
	clock   *mocks.MockClock
	tickers *mocks.MockTickerFactory
	cfg     InputConfig
	pw      *io.PipeWriter
	input   *Input
}

func TestInputSuite(t *testing.T) {
	suite.Run(t, new(InputSuite))
}

func (s *InputSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	s.tickers = mocks.NewMockTickerFactory()
	s.cfg = InputConfig{
		HoldTimeout: 150 * time.Millisecond,
		Clock:       s.clock,
		NewTicker:   s.tickers.New,
	}

	pr, pw := io.Pipe()
	s.pw = pw
	s.input = NewInput(pr, s.cfg, testutil.NopLogger())
	s.Require().Eventually(func() bool { return s.ticker() != nil }, time.Second, time.Millisecond)
}

func (s *InputSuite) TearDownTest() {
	_ = s.pw.Close()
	s.NoError(s.input.Close())
}

func (s *InputSuite) ticker() *mocks.MockTicker {
	return s.tickers.Ticker(s.cfg.HoldTimeout / 3)
}

// typeKeys writes keystrokes and returns once they have been handed to
// the edge generator
func (s *InputSuite) typeKeys(keys string) {
	_, err := s.pw.Write([]byte(keys))
	s.Require().NoError(err)
	_, err = s.pw.Write([]byte("x"))
	s.Require().NoError(err)
}

func (s *InputSuite) next() client.KeyEvent {
	select {
	case ev, ok := <-s.input.Events():
		s.Require().True(ok, "events closed")
		return ev
	case <-time.After(time.Second):
		s.FailNow("no key event")
		return client.KeyEvent{}
	}
}

func (s *InputSuite) noEvent() {
	select {
	case ev := <-s.input.Events():
		s.Failf("unexpected event", "%+v", ev)
	case <-time.After(20 * time.Millisecond):
	}
}

func (s *InputSuite) TestPressRepeatRelease() {
	go func() { _, _ = s.pw.Write([]byte("d")) }()
	s.Equal(client.KeyEvent{Dir: client.DirRight, Down: true}, s.next())

	// Auto-repeats inside the hold timeout keep the key down
	s.clock.Advance(100 * time.Millisecond)
	s.typeKeys("d")
	s.ticker().Tick()
	s.clock.Advance(100 * time.Millisecond)
	s.ticker().Tick()
	s.noEvent()

	// 160ms since the last repeat
	s.clock.Advance(60 * time.Millisecond)
	go s.ticker().Tick()
	s.Equal(client.KeyEvent{Dir: client.DirRight, Down: false}, s.next())
}

func (s *InputSuite) TestArrowAndLetterShareDirection() {
	go func() { _, _ = s.pw.Write([]byte("\x1b[Aw")) }()
	s.Equal(client.KeyEvent{Dir: client.DirUp, Down: true}, s.next())
	s.noEvent()
}

func (s *InputSuite) TestIndependentReleases() {
	go func() { _, _ = s.pw.Write([]byte("w")) }()
	s.Equal(client.KeyEvent{Dir: client.DirUp, Down: true}, s.next())

	s.clock.Advance(100 * time.Millisecond)
	go func() { _, _ = s.pw.Write([]byte("a")) }()
	s.Equal(client.KeyEvent{Dir: client.DirLeft, Down: true}, s.next())

	s.clock.Advance(60 * time.Millisecond)
	go s.ticker().Tick()
	s.Equal(client.KeyEvent{Dir: client.DirUp, Down: false}, s.next())
	s.noEvent()

	s.clock.Advance(100 * time.Millisecond)
	go s.ticker().Tick()
	s.Equal(client.KeyEvent{Dir: client.DirLeft, Down: false}, s.next())
}

func (s *InputSuite) TestQuitClosesEvents() {
	go func() { _, _ = s.pw.Write([]byte("q")) }()

	select {
	case <-s.input.Quit():
	case <-time.After(time.Second):
		s.FailNow("quit not signalled")
	}
	_, ok := <-s.input.Events()
	s.False(ok)
}

func (s *InputSuite) TestReaderEOFClosesEvents() {
	s.Require().NoError(s.pw.Close())

	select {
	case _, ok := <-s.input.Events():
		s.False(ok)
	case <-time.After(time.Second):
		s.FailNow("events not closed")
	}
}

func (s *InputSuite) TestCloseWhileEdgeUndelivered() {
	go func() { _, _ = s.pw.Write([]byte("s")) }()
	time.Sleep(20 * time.Millisecond)
	s.Require().NoError(s.input.Close())

	select {
	case <-s.input.Quit():
	case <-time.After(time.Second):
		s.FailNow("input did not stop")
	}
}
