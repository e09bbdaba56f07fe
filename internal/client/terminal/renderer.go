package terminal

import (
	"fmt"
	"io"
	"math"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/lguibr/asciiring/helpers"

	"github.com/mcoot/multiplayer-demo/internal/client"
)

// cursorHome moves the cursor to the top-left without clearing
const cursorHome = "\x1b[H"

// RendererConfig sizes the character grid
type RendererConfig struct {
	Cols int
	Rows int
	// Clear wipes the screen before the first frame
	Clear func()
}

// DefaultRendererConfig fits an 80x24 terminal with room for borders and
// a status line
func DefaultRendererConfig() RendererConfig {
	return RendererConfig{
		Cols:  76,
		Rows:  20,
		Clear: func() { helpers.ClearScreen() },
	}
}

// Renderer draws scenes as ASCII art. Self is '@'; other players are the
// first letter of their name.
type Renderer struct {
	w   io.Writer
	cfg RendererConfig

	mu      sync.Mutex
	last    string
	cleared bool
}

var _ client.Renderer = (*Renderer)(nil)

// NewRenderer creates a renderer writing to w
func NewRenderer(w io.Writer, cfg RendererConfig) *Renderer {
	return &Renderer{w: w, cfg: cfg}
}

// Render redraws the screen when the frame differs from the last one
func (r *Renderer) Render(scene client.Scene) {
	frame := Frame(scene, r.cfg.Cols, r.cfg.Rows)

	r.mu.Lock()
	defer r.mu.Unlock()
	if frame == r.last {
		return
	}
	r.last = frame

	if !r.cleared {
		if r.cfg.Clear != nil {
			r.cfg.Clear()
		}
		r.cleared = true
	}
	_, _ = io.WriteString(r.w, cursorHome+frame)
}

// Frame lays a scene out on a cols x rows grid with a border and a status
// line. Lines end in CRLF since raw mode disables output processing.
func Frame(scene client.Scene, cols, rows int) string {
	grid := make([][]rune, rows)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", cols))
	}

	// Others first so self is never hidden
	var self *client.Sprite
	for i := range scene.Sprites {
		sp := &scene.Sprites[i]
		if sp.Self {
			self = sp
			continue
		}
		plot(grid, scene, sp.Position.X, sp.Position.Y, glyph(sp.Name))
	}
	if self != nil {
		plot(grid, scene, self.Position.X, self.Position.Y, '@')
	}

	var b strings.Builder
	border := "+" + strings.Repeat("-", cols) + "+\r\n"
	b.WriteString(border)
	for _, row := range grid {
		b.WriteByte('|')
		b.WriteString(string(row))
		b.WriteString("|\r\n")
	}
	b.WriteString(border)
	b.WriteString(status(scene, cols+2))
	return b.String()
}

func plot(grid [][]rune, scene client.Scene, x, y float64, ch rune) {
	rows := len(grid)
	if rows == 0 {
		return
	}
	cols := len(grid[0])
	if scene.Area.Width <= 0 || scene.Area.Height <= 0 {
		return
	}

	// Scale the avatar's centre into the grid
	cx := (x + scene.Area.AvatarSize/2) / scene.Area.Width
	cy := (y + scene.Area.AvatarSize/2) / scene.Area.Height
	col := int(math.Floor(cx * float64(cols)))
	row := int(math.Floor(cy * float64(rows)))
	if col < 0 || col >= cols || row < 0 || row >= rows {
		return // off screen when clamping is disabled
	}
	grid[row][col] = ch
}

func glyph(name string) rune {
	r, _ := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError || !unicode.IsPrint(r) {
		return '?'
	}
	return unicode.ToUpper(r)
}

func status(scene client.Scene, width int) string {
	line := fmt.Sprintf("players: %d", len(scene.Sprites))
	if self, ok := scene.Self(); ok {
		line += fmt.Sprintf("  you: %s (%.0f, %.0f)", self.Name, self.Position.X, self.Position.Y)
	} else {
		line += "  joining..."
	}
	line += "  [arrows/wasd move, q quits]"

	if n := utf8.RuneCountInString(line); n < width {
		line += strings.Repeat(" ", width-n)
	}
	return line + "\r\n"
}
