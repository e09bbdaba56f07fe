package client

import (
	"math"

	"github.com/mcoot/multiplayer-demo/internal/model"
)

// Direction is one of the four movement keys
type Direction int

const (
	DirUp Direction = iota
	DirDown
	DirLeft
	DirRight
)

// Directions lists every direction in a fixed order
var Directions = [...]Direction{DirUp, DirDown, DirLeft, DirRight}

func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	default:
		return "unknown"
	}
}

// unit is the per-tick displacement of a held key at speed 1
func (d Direction) unit() model.Position {
	switch d {
	case DirUp:
		return model.Position{Y: -1}
	case DirDown:
		return model.Position{Y: 1}
	case DirLeft:
		return model.Position{X: -1}
	case DirRight:
		return model.Position{X: 1}
	default:
		return model.Position{}
	}
}

// MotionConfig parameterises movement integration
type MotionConfig struct {
	// Speed is the displacement per frame per held key
	Speed float64
	Area  model.Area
	// Clamp keeps the predicted position inside Area
	Clamp bool
}

// DefaultMotionConfig returns the default movement settings
func DefaultMotionConfig() MotionConfig {
	return MotionConfig{
		Speed: 5,
		Area:  model.DefaultArea(),
		Clamp: true,
	}
}

// optionalPosition is a position that may not be known yet
type optionalPosition struct {
	pos   model.Position
	valid bool
}

// MotionState is the controlled player's movement state machine. It is not
// safe for concurrent use; the Loop touches it from one goroutine only.
type MotionState struct {
	cfg MotionConfig

	pressed   map[Direction]bool
	predicted optionalPosition
	lastSent  optionalPosition
}

// NewMotionState creates an unseeded state with no keys held
func NewMotionState(cfg MotionConfig) *MotionState {
	return &MotionState{
		cfg:     cfg,
		pressed: make(map[Direction]bool, len(Directions)),
	}
}

// KeyDown marks dir as held
func (s *MotionState) KeyDown(dir Direction) {
	s.pressed[dir] = true
}

// KeyUp marks dir as released
func (s *MotionState) KeyUp(dir Direction) {
	delete(s.pressed, dir)
}

// ReleaseAll clears every held key
func (s *MotionState) ReleaseAll() {
	clear(s.pressed)
}

// Held reports whether dir is currently held
func (s *MotionState) Held(dir Direction) bool {
	return s.pressed[dir]
}

// Seed initialises predicted and lastSent from the first known server
// position. It reports false and changes nothing once already seeded.
func (s *MotionState) Seed(pos model.Position) bool {
	if s.predicted.valid {
		return false
	}
	s.predicted = optionalPosition{pos: pos, valid: true}
	s.lastSent = optionalPosition{pos: pos, valid: true}
	return true
}

// Seeded reports whether a server position has been adopted
func (s *MotionState) Seeded() bool {
	return s.predicted.valid
}

// Displacement is the per-frame movement for the currently held keys.
// Opposite keys cancel; perpendicular keys add, so diagonals are faster.
func (s *MotionState) Displacement() model.Position {
	var d model.Position
	for _, dir := range Directions {
		if s.pressed[dir] {
			u := dir.unit()
			d = d.Add(model.Position{X: u.X * s.cfg.Speed, Y: u.Y * s.cfg.Speed})
		}
	}
	return d
}

// Step advances the predicted position by one frame. Unseeded state and
// frames with no keys held leave it unchanged.
func (s *MotionState) Step() {
	if !s.predicted.valid || len(s.pressed) == 0 {
		return
	}
	next := s.predicted.pos.Add(s.Displacement())
	if s.cfg.Clamp {
		next = s.cfg.Area.Clamp(next)
	}
	s.predicted.pos = next
}

// Flush decides whether the predicted position has drifted far enough from
// the last transmitted one to send. When it has, the rounded position is
// returned and recorded as lastSent in the same step, so a given delta is
// never sent twice.
//
// While keys are held predicted keeps its fractional part. Once every key
// is released predicted settles onto the position the server was sent, so
// a fractional speed leaves no residue between the two.
func (s *MotionState) Flush() (model.Position, bool) {
	if !s.predicted.valid || !s.lastSent.valid {
		return model.Position{}, false
	}
	resting := len(s.pressed) == 0
	delta := s.predicted.pos.Sub(s.lastSent.pos)
	if math.Abs(delta.X) < 1 && math.Abs(delta.Y) < 1 {
		if resting {
			s.predicted.pos = s.lastSent.pos
		}
		return model.Position{}, false
	}
	out := s.predicted.pos.Round()
	s.lastSent = optionalPosition{pos: out, valid: true}
	if resting {
		s.predicted.pos = out
	}
	return out, true
}

// Predicted returns the locally predicted position, if seeded
func (s *MotionState) Predicted() (model.Position, bool) {
	return s.predicted.pos, s.predicted.valid
}

// LastSent returns the most recently transmitted position, if seeded
func (s *MotionState) LastSent() (model.Position, bool) {
	return s.lastSent.pos, s.lastSent.valid
}
