package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// errWriter remembers the first write error so components can write
// straight through and check once at the end
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) str(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = io.WriteString(ew.w, s)
}

// esc writes s HTML-escaped
func (ew *errWriter) esc(s string) {
	ew.str(templ.EscapeString(s))
}

func (ew *errWriter) component(ctx context.Context, c templ.Component) {
	if ew.err != nil {
		return
	}
	ew.err = c.Render(ctx, ew.w)
}

const baseStyle = `
body { margin: 0; font-family: system-ui, sans-serif; background: #111; color: #eee; }
main { display: flex; flex-direction: column; align-items: center; padding: 1rem; }
#area { position: relative; background: #222; border: 1px solid #444; overflow: hidden; }
.player { position: absolute; border-radius: 3px; }
.player span { position: absolute; top: -1.2em; left: 0; font-size: 0.7rem; white-space: nowrap; }
.error { color: #f66; }
`

// Layout wraps body in the full HTML document
func Layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		ew := &errWriter{w: w}
		ew.str(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>`)
		ew.esc(title)
		ew.str(`</title><style>`)
		ew.str(baseStyle)
		ew.str(`</style></head><body><main>`)
		ew.component(ctx, body)
		ew.str(`</main></body></html>`)
		return ew.err
	})
}

// ErrorPage renders a standalone error document
func ErrorPage(message string) templ.Component {
	return Layout("Error", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		ew := &errWriter{w: w}
		ew.str(`<h1>Internal Server Error</h1><p class="error">`)
		ew.esc(message)
		ew.str(`</p><p><a href="/">Return to the spectator view</a></p>`)
		return ew.err
	}))
}
