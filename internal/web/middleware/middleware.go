package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/multiplayer-demo/internal/middleware"
	"github.com/mcoot/multiplayer-demo/internal/web/templates"
)

// Recovery creates panic recovery middleware for the web interface.
// Panics render the HTML error page.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, webPanicHandler)
}

// Logging creates request logging middleware for the web interface
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Logging(logger.With(slog.String("component", "web")))
}

func webPanicHandler(w http.ResponseWriter, r *http.Request, _ any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	_ = templates.ErrorPage("Something went wrong. Please try again later.").Render(r.Context(), w)
}
