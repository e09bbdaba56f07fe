package terminal

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/multiplayer-demo/internal/client"
	"github.com/mcoot/multiplayer-demo/internal/model"
)

func testScene() client.Scene {
	return client.Scene{
		Area: model.DefaultArea(),
		Sprites: []client.Sprite{
			{ID: "a", Name: "alice", Position: model.Position{X: 0, Y: 0}},
			{ID: "b", Name: "bob", Position: model.Position{X: 390, Y: 290}},
			{ID: "me", Name: "me", Position: model.Position{X: 780, Y: 580}, Self: true, Predicted: true},
		},
	}
}

func frameLines(t *testing.T, frame string) []string {
	t.Helper()
	require.True(t, strings.HasSuffix(frame, "\r\n"))
	return strings.Split(strings.TrimSuffix(frame, "\r\n"), "\r\n")
}

func TestFrame_PlacesSprites(t *testing.T) {
	lines := frameLines(t, Frame(testScene(), 40, 10))

	// border + 10 rows + border + status
	require.Len(t, lines, 13)
	assert.Equal(t, "+"+strings.Repeat("-", 40)+"+", lines[0])
	assert.Equal(t, lines[0], lines[11])

	row := func(i int) []rune { return []rune(lines[i+1])[1:41] }
	assert.Equal(t, 'A', row(0)[0])
	assert.Equal(t, 'B', row(5)[20])
	assert.Equal(t, '@', row(9)[39])

	assert.Contains(t, lines[12], "players: 3")
	assert.Contains(t, lines[12], "you: me (780, 580)")
}

func TestFrame_SelfDrawnOverOthers(t *testing.T) {
	scene := client.Scene{
		Area: model.DefaultArea(),
		Sprites: []client.Sprite{
			{ID: "me", Name: "me", Position: model.Position{X: 100, Y: 100}, Self: true},
			{ID: "z", Name: "zed", Position: model.Position{X: 100, Y: 100}},
		},
	}
	frame := Frame(scene, 40, 10)
	assert.Contains(t, frame, "@")
	assert.NotContains(t, frame, "Z")
}

func TestFrame_OffscreenAndOddNames(t *testing.T) {
	scene := client.Scene{
		Area: model.DefaultArea(),
		Sprites: []client.Sprite{
			{ID: "far", Name: "far", Position: model.Position{X: -500, Y: 9000}},
			{ID: "blank", Name: "", Position: model.Position{X: 400, Y: 300}},
		},
	}
	frame := Frame(scene, 40, 10)
	assert.NotContains(t, frame, "F")
	assert.Contains(t, frame, "?")
	assert.Contains(t, frame, "joining...")
}

func TestRenderer_SkipsUnchangedFrames(t *testing.T) {
	var buf bytes.Buffer
	clears := 0
	r := NewRenderer(&buf, RendererConfig{Cols: 20, Rows: 5, Clear: func() { clears++ }})

	r.Render(testScene())
	first := buf.Len()
	require.Positive(t, first)
	assert.True(t, strings.HasPrefix(buf.String(), cursorHome))

	r.Render(testScene())
	assert.Equal(t, first, buf.Len())

	moved := testScene()
	moved.Sprites[2].Position = model.Position{X: 0, Y: 580}
	r.Render(moved)
	assert.Greater(t, buf.Len(), first)
	assert.Equal(t, 1, clears)
}
