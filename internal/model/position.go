package model

import "math"

// Position is a point in the playable area
type Position struct {
	X float64
	Y float64
}

// Add returns p translated by d
func (p Position) Add(d Position) Position {
	return Position{X: p.X + d.X, Y: p.Y + d.Y}
}

// Sub returns the per-axis delta p - o
func (p Position) Sub(o Position) Position {
	return Position{X: p.X - o.X, Y: p.Y - o.Y}
}

// Round rounds both coordinates to the nearest integer
func (p Position) Round() Position {
	return Position{X: math.Round(p.X), Y: math.Round(p.Y)}
}

// IsFinite reports whether neither coordinate is NaN or infinite
func (p Position) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// Area describes the playable area and the avatar footprint inside it
type Area struct {
	Width      float64
	Height     float64
	AvatarSize float64
}

// SpawnRange is the exclusive upper bound for random initial coordinates
const SpawnRange = 500

// DefaultArea returns the standard playable area
func DefaultArea() Area {
	return Area{
		Width:      800,
		Height:     600,
		AvatarSize: 20,
	}
}

// Clamp keeps each axis within [0, extent - AvatarSize]
func (a Area) Clamp(p Position) Position {
	return Position{
		X: clamp(p.X, 0, a.Width-a.AvatarSize),
		Y: clamp(p.Y, 0, a.Height-a.AvatarSize),
	}
}

// Contains reports whether p is already within the clamped bounds
func (a Area) Contains(p Position) bool {
	return a.Clamp(p) == p
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
