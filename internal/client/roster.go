package client

import (
	"sync"

	"github.com/mcoot/multiplayer-demo/internal/model"
	"github.com/mcoot/multiplayer-demo/internal/storage"
)

// Roster is the client's view of the remote player set. Events are applied
// in arrival order with no sequence comparison, so the latest write wins.
type Roster struct {
	mu      sync.RWMutex
	players map[model.PlayerID]*model.Player
	subs    map[int]chan struct{}
	nextSub int
}

// NewRoster creates an empty roster
func NewRoster() *Roster {
	return &Roster{
		players: make(map[model.PlayerID]*model.Player),
		subs:    make(map[int]chan struct{}),
	}
}

// Replace swaps in a full snapshot
func (r *Roster) Replace(players []*model.Player) {
	r.mu.Lock()
	clear(r.players)
	for _, p := range players {
		r.players[p.ID] = p.Clone()
	}
	r.mu.Unlock()
	r.notify()
}

// Apply folds one change event into the roster
func (r *Roster) Apply(ev model.PlayerEvent) {
	r.mu.Lock()
	switch ev.Type {
	case model.EventInsert, model.EventUpdate:
		p := ev.Player
		r.players[p.ID] = &p
	case model.EventDelete:
		delete(r.players, ev.Player.ID)
	}
	r.mu.Unlock()
	r.notify()
}

// Get returns a copy of one player
func (r *Roster) Get(id model.PlayerID) (*model.Player, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.players[id]
	if !ok {
		return nil, false
	}
	return p.Clone(), true
}

// Players returns copies of every player, ordered by creation
func (r *Roster) Players() []*model.Player {
	r.mu.RLock()
	out := make([]*model.Player, 0, len(r.players))
	for _, p := range r.players {
		out = append(out, p.Clone())
	}
	r.mu.RUnlock()
	storage.SortPlayers(out)
	return out
}

// Len returns the number of known players
func (r *Roster) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.players)
}

// Subscribe returns a channel signalled after every change. Signals are
// coalesced; receivers re-read the roster. The returned func releases the
// subscription.
func (r *Roster) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	r.mu.Lock()
	id := r.nextSub
	r.nextSub++
	r.subs[id] = ch
	r.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.subs, id)
			r.mu.Unlock()
		})
	}
}

func (r *Roster) notify() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, ch := range r.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
