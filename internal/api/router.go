package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/multiplayer-demo/internal/api/handler"
	"github.com/mcoot/multiplayer-demo/internal/api/middleware"
	"github.com/mcoot/multiplayer-demo/internal/api/response"
	"github.com/mcoot/multiplayer-demo/internal/services/players"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger        *slog.Logger
	PlayerService *players.Service
}

// RegisterRoutes mounts the API under /api/v1 on r
func RegisterRoutes(r *mux.Router, cfg RouterConfig) {
	playerHandler := handler.NewPlayerHandler(cfg.PlayerService, cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(middleware.Logging(cfg.Logger))

	// Feed routes come first so "events" and "ws" never match {id}
	api.HandleFunc("/players/events", playerHandler.Events).Methods(http.MethodGet)
	api.HandleFunc("/players/ws", playerHandler.WebSocket).Methods(http.MethodGet)

	api.HandleFunc("/players", playerHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/players", playerHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/players", playerHandler.DeleteAll).Methods(http.MethodDelete)
	api.HandleFunc("/players/{id}", playerHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/players/{id}/position", playerHandler.UpdatePosition).Methods(http.MethodPatch)

	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	RegisterRoutes(r, cfg)
	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.HealthResponse{Status: "ok"})
}
