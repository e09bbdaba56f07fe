package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/multiplayer-demo/internal/model"
)

func seededState(cfg MotionConfig, at model.Position) *MotionState {
	s := NewMotionState(cfg)
	s.Seed(at)
	return s
}

func TestMotionStep_Displacement(t *testing.T) {
	cfg := MotionConfig{Speed: 5, Area: model.DefaultArea(), Clamp: false}
	start := model.Position{X: 200, Y: 200}

	tests := []struct {
		name  string
		held  []Direction
		ticks int
		want  model.Position
	}{
		{name: "no keys", ticks: 10, want: start},
		{name: "up", held: []Direction{DirUp}, ticks: 1, want: model.Position{X: 200, Y: 195}},
		{name: "down", held: []Direction{DirDown}, ticks: 3, want: model.Position{X: 200, Y: 215}},
		{name: "left", held: []Direction{DirLeft}, ticks: 2, want: model.Position{X: 190, Y: 200}},
		{name: "right", held: []Direction{DirRight}, ticks: 4, want: model.Position{X: 220, Y: 200}},
		{name: "opposites cancel", held: []Direction{DirLeft, DirRight}, ticks: 5, want: start},
		{name: "diagonal is additive", held: []Direction{DirUp, DirRight}, ticks: 2, want: model.Position{X: 210, Y: 190}},
		{name: "three keys", held: []Direction{DirUp, DirDown, DirLeft}, ticks: 3, want: model.Position{X: 185, Y: 200}},
		{name: "all keys", held: []Direction{DirUp, DirDown, DirLeft, DirRight}, ticks: 3, want: start},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := seededState(cfg, start)
			for _, d := range tt.held {
				s.KeyDown(d)
			}
			for i := 0; i < tt.ticks; i++ {
				s.Step()
			}
			got, ok := s.Predicted()
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMotionStep_ChangingKeysBetweenTicks(t *testing.T) {
	s := seededState(MotionConfig{Speed: 2, Area: model.DefaultArea()}, model.Position{X: 50, Y: 50})

	s.KeyDown(DirRight)
	s.Step() // 52,50
	s.KeyDown(DirDown)
	s.Step() // 54,52
	s.KeyUp(DirRight)
	s.Step() // 54,54
	s.KeyUp(DirDown)
	s.Step() // unchanged

	got, _ := s.Predicted()
	assert.Equal(t, model.Position{X: 54, Y: 54}, got)
}

func TestMotionStep_DuplicateKeyDownCountsOnce(t *testing.T) {
	s := seededState(MotionConfig{Speed: 5, Area: model.DefaultArea()}, model.Position{X: 50, Y: 50})
	s.KeyDown(DirLeft)
	s.KeyDown(DirLeft)
	s.Step()

	got, _ := s.Predicted()
	assert.Equal(t, model.Position{X: 45, Y: 50}, got)
}

func TestMotionStep_UnseededIsNoop(t *testing.T) {
	s := NewMotionState(DefaultMotionConfig())
	s.KeyDown(DirRight)
	s.Step()

	_, ok := s.Predicted()
	assert.False(t, ok)
	_, ok = s.Flush()
	assert.False(t, ok)
}

func TestMotionStep_ClampBounds(t *testing.T) {
	area := model.DefaultArea()
	maxX := area.Width - area.AvatarSize
	maxY := area.Height - area.AvatarSize

	for _, speed := range []float64{1, 5, 333, 1e6, 1e300} {
		for _, held := range [][]Direction{
			{DirUp}, {DirDown}, {DirLeft}, {DirRight},
			{DirUp, DirLeft}, {DirDown, DirRight},
		} {
			s := seededState(MotionConfig{Speed: speed, Area: area, Clamp: true}, model.Position{X: 400, Y: 300})
			for _, d := range held {
				s.KeyDown(d)
			}
			for i := 0; i < 50; i++ {
				s.Step()
				p, _ := s.Predicted()
				require.GreaterOrEqual(t, p.X, 0.0, "speed %v keys %v", speed, held)
				require.LessOrEqual(t, p.X, maxX, "speed %v keys %v", speed, held)
				require.GreaterOrEqual(t, p.Y, 0.0, "speed %v keys %v", speed, held)
				require.LessOrEqual(t, p.Y, maxY, "speed %v keys %v", speed, held)
			}
		}
	}
}

func TestMotionStep_ClampPinsToEdge(t *testing.T) {
	area := model.DefaultArea()
	s := seededState(MotionConfig{Speed: 1e9, Area: area, Clamp: true}, model.Position{X: 10, Y: 10})
	s.KeyDown(DirDown)
	s.KeyDown(DirRight)
	s.Step()

	got, _ := s.Predicted()
	assert.Equal(t, model.Position{X: area.Width - area.AvatarSize, Y: area.Height - area.AvatarSize}, got)
}

func TestMotionStep_WithoutClampDrifts(t *testing.T) {
	s := seededState(MotionConfig{Speed: 5, Area: model.DefaultArea(), Clamp: false}, model.Position{X: 0, Y: 0})
	s.KeyDown(DirLeft)
	s.KeyDown(DirUp)
	for i := 0; i < 4; i++ {
		s.Step()
	}

	got, _ := s.Predicted()
	assert.Equal(t, model.Position{X: -20, Y: -20}, got)
}

func TestMotionSeed_OnlyOnce(t *testing.T) {
	s := NewMotionState(DefaultMotionConfig())
	assert.True(t, s.Seed(model.Position{X: 1, Y: 2}))
	assert.False(t, s.Seed(model.Position{X: 9, Y: 9}))

	predicted, _ := s.Predicted()
	lastSent, _ := s.LastSent()
	assert.Equal(t, model.Position{X: 1, Y: 2}, predicted)
	assert.Equal(t, model.Position{X: 1, Y: 2}, lastSent)
}

func TestMotionFlush_IdempotentWithoutMovement(t *testing.T) {
	s := seededState(DefaultMotionConfig(), model.Position{X: 100, Y: 100})

	for i := 0; i < 20; i++ {
		s.Step()
		_, ok := s.Flush()
		assert.False(t, ok)
	}
}

func TestMotionFlush_AfterSendNoRepeat(t *testing.T) {
	s := seededState(DefaultMotionConfig(), model.Position{X: 100, Y: 100})
	s.KeyDown(DirRight)
	s.Step()
	s.KeyUp(DirRight)

	pos, ok := s.Flush()
	require.True(t, ok)
	assert.Equal(t, model.Position{X: 105, Y: 100}, pos)

	for i := 0; i < 5; i++ {
		_, ok := s.Flush()
		assert.False(t, ok)
	}
}

func TestMotionFlush_ExactlyOncePerThresholdCrossing(t *testing.T) {
	// With speed 0.25 it takes four frames for the delta to reach 1
	s := seededState(MotionConfig{Speed: 0.25, Area: model.DefaultArea(), Clamp: true}, model.Position{X: 100, Y: 100})
	s.KeyDown(DirRight)

	var sent []model.Position
	for i := 0; i < 12; i++ {
		s.Step()
		if pos, ok := s.Flush(); ok {
			sent = append(sent, pos)
		}
	}

	assert.Equal(t, []model.Position{
		{X: 101, Y: 100},
		{X: 102, Y: 100},
		{X: 103, Y: 100},
	}, sent)
	last, _ := s.LastSent()
	assert.Equal(t, model.Position{X: 103, Y: 100}, last)
}

func TestMotionFlush_BelowThresholdOnEitherAxis(t *testing.T) {
	s := seededState(MotionConfig{Speed: 0.6, Area: model.DefaultArea()}, model.Position{X: 100, Y: 100})
	s.KeyDown(DirUp)
	s.KeyDown(DirLeft)
	s.Step()

	_, ok := s.Flush()
	assert.False(t, ok, "delta of 0.6 on each axis must not send")

	s.Step()
	pos, ok := s.Flush()
	require.True(t, ok)
	assert.Equal(t, model.Position{X: 99, Y: 99}, pos)
}

func TestMotionFlush_SendsRoundedAndRecordsIt(t *testing.T) {
	s := seededState(MotionConfig{Speed: 1.4, Area: model.DefaultArea()}, model.Position{X: 10, Y: 10})
	s.KeyDown(DirDown)
	s.Step()

	pos, ok := s.Flush()
	require.True(t, ok)
	assert.Equal(t, model.Position{X: 10, Y: 11}, pos)

	last, _ := s.LastSent()
	assert.Equal(t, pos, last)
	predicted, _ := s.Predicted()
	assert.InDelta(t, 11.4, predicted.Y, 1e-9)
}

func TestMotionFlush_FractionalSpeedSettlesOnRelease(t *testing.T) {
	s := seededState(MotionConfig{Speed: 2.5, Area: model.DefaultArea()}, model.Position{X: 100, Y: 100})
	s.KeyDown(DirRight)
	for i := 0; i < 3; i++ {
		s.Step()
	}

	pos, ok := s.Flush()
	require.True(t, ok)
	assert.Equal(t, model.Position{X: 108, Y: 100}, pos)
	predicted, _ := s.Predicted()
	assert.InDelta(t, 107.5, predicted.X, 1e-9, "held keys keep the fractional part")

	s.KeyUp(DirRight)
	_, ok = s.Flush()
	assert.False(t, ok)
	predicted, _ = s.Predicted()
	last, _ := s.LastSent()
	assert.Equal(t, last, predicted)
}

func TestMotionFlush_SendWhileRestingSnapsPrediction(t *testing.T) {
	s := seededState(MotionConfig{Speed: 2.5, Area: model.DefaultArea()}, model.Position{X: 100, Y: 100})
	s.KeyDown(DirLeft)
	s.Step()
	s.KeyUp(DirLeft)

	pos, ok := s.Flush()
	require.True(t, ok)
	predicted, _ := s.Predicted()
	assert.Equal(t, pos, predicted)
	assert.Equal(t, model.Position{X: 98, Y: 100}, pos)
}

func TestMotionReleaseAll(t *testing.T) {
	s := seededState(DefaultMotionConfig(), model.Position{X: 100, Y: 100})
	s.KeyDown(DirUp)
	s.KeyDown(DirLeft)
	s.ReleaseAll()

	assert.False(t, s.Held(DirUp))
	assert.False(t, s.Held(DirLeft))
	assert.Equal(t, model.Position{}, s.Displacement())
}

func TestDirectionString(t *testing.T) {
	assert.Equal(t, "up", DirUp.String())
	assert.Equal(t, "right", DirRight.String())
	assert.Equal(t, "unknown", Direction(42).String())
}
