package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mcoot/multiplayer-demo/internal/model"
)

type positionCall struct {
	ID  model.PlayerID
	Pos model.Position
}

// fakeBackend records calls and keeps a tiny player table
type fakeBackend struct {
	mu        sync.Mutex
	players   []*model.Player
	creates   int
	lists     int
	updates   []positionCall
	createErr error
	listErr   error
	updateErr []error // consumed one per update call
	nextID    int
}

func (b *fakeBackend) CreatePlayer(_ context.Context, name string) (*model.Player, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.creates++
	if b.createErr != nil {
		return nil, b.createErr
	}
	b.nextID++
	if name == "" {
		name = model.DefaultPlayerName
	}
	p := &model.Player{
		ID:        model.PlayerID(fmt.Sprintf("created-%d", b.nextID)),
		Name:      name,
		X:         100,
		Y:         100,
		Color:     "#112233",
		CreatedAt: time.Date(2026, 1, 1, 0, 0, b.nextID, 0, time.UTC),
	}
	b.players = append(b.players, p)
	return p.Clone(), nil
}

func (b *fakeBackend) ListPlayers(_ context.Context) ([]*model.Player, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lists++
	if b.listErr != nil {
		return nil, b.listErr
	}
	out := make([]*model.Player, 0, len(b.players))
	for _, p := range b.players {
		out = append(out, p.Clone())
	}
	return out, nil
}

func (b *fakeBackend) UpdatePlayerPosition(_ context.Context, id model.PlayerID, x, y float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.updates = append(b.updates, positionCall{ID: id, Pos: model.Position{X: x, Y: y}})
	if len(b.updateErr) > 0 {
		err := b.updateErr[0]
		b.updateErr = b.updateErr[1:]
		return err
	}
	return nil
}

func (b *fakeBackend) createCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.creates
}

func (b *fakeBackend) updateCalls() []positionCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]positionCall, len(b.updates))
	copy(out, b.updates)
	return out
}

// recordingReporter collects send results
type recordingReporter struct {
	mu      sync.Mutex
	results []SendResult
}

func (r *recordingReporter) ReportSend(res SendResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, res)
}

func (r *recordingReporter) all() []SendResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]SendResult, len(r.results))
	copy(out, r.results)
	return out
}

// recordingSender captures Send calls synchronously
type recordingSender struct {
	mu    sync.Mutex
	sends []positionCall
}

func (s *recordingSender) Send(_ context.Context, id model.PlayerID, pos model.Position) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sends = append(s.sends, positionCall{ID: id, Pos: pos})
}

func (s *recordingSender) Close() {}

func (s *recordingSender) all() []positionCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]positionCall, len(s.sends))
	copy(out, s.sends)
	return out
}

// recordingRenderer keeps the last rendered scene
type recordingRenderer struct {
	mu     sync.Mutex
	frames int
	last   Scene
}

func (r *recordingRenderer) Render(s Scene) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames++
	r.last = s
}

func (r *recordingRenderer) lastScene() (Scene, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last, r.frames
}

// chanInput is a KeyInput fed directly by the test
type chanInput struct {
	ch      chan KeyEvent
	mu      sync.Mutex
	closed  bool
	onClose func()
}

func newChanInput() *chanInput {
	return &chanInput{ch: make(chan KeyEvent)}
}

func (i *chanInput) Events() <-chan KeyEvent { return i.ch }

func (i *chanInput) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.closed = true
	if i.onClose != nil {
		i.onClose()
	}
	return nil
}

func (i *chanInput) isClosed() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.closed
}

// fixedIdentity is an IdentitySource that can be set mid-test
type fixedIdentity struct {
	mu sync.Mutex
	id model.PlayerID
}

func (f *fixedIdentity) set(id model.PlayerID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.id = id
}

func (f *fixedIdentity) Identity() (model.PlayerID, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.id, f.id != ""
}
