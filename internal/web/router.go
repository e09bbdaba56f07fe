package web

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/multiplayer-demo/internal/model"
	"github.com/mcoot/multiplayer-demo/internal/services/players"
	"github.com/mcoot/multiplayer-demo/internal/web/handler"
	"github.com/mcoot/multiplayer-demo/internal/web/middleware"
)

// RouterConfig holds configuration for the web router
type RouterConfig struct {
	Logger        *slog.Logger
	PlayerService *players.Service
	// Area sizes the rendered view; zero uses model.DefaultArea()
	Area model.Area
}

// RegisterRoutes mounts the spectator page on r
func RegisterRoutes(r *mux.Router, cfg RouterConfig) {
	area := cfg.Area
	if area.Width == 0 {
		area = model.DefaultArea()
	}

	spectatorHandler := handler.NewSpectatorHandler(cfg.PlayerService, area, cfg.Logger)

	pages := r.NewRoute().Subrouter()
	pages.Use(middleware.Recovery(cfg.Logger))
	pages.Use(middleware.Logging(cfg.Logger))
	pages.HandleFunc("/", spectatorHandler.Spectator).Methods(http.MethodGet)
}

// NewRouter creates a new web router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	RegisterRoutes(r, cfg)
	return r
}
