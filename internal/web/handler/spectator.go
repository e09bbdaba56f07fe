package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/multiplayer-demo/internal/model"
	"github.com/mcoot/multiplayer-demo/internal/services/players"
	"github.com/mcoot/multiplayer-demo/internal/web/templates"
)

// FeedPath is the SSE endpoint the spectator page subscribes to
const FeedPath = "/api/v1/players/events"

// SpectatorHandler renders the read-only view of the shared space
type SpectatorHandler struct {
	service *players.Service
	area    model.Area
	logger  *slog.Logger
}

// NewSpectatorHandler creates a new SpectatorHandler
func NewSpectatorHandler(service *players.Service, area model.Area, logger *slog.Logger) *SpectatorHandler {
	return &SpectatorHandler{
		service: service,
		area:    area,
		logger:  logger.With(slog.String("component", "web")),
	}
}

// Spectator renders every player as a positioned square
func (h *SpectatorHandler) Spectator(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListPlayers(r.Context())
	if err != nil {
		h.logger.Error("failed to list players", slog.Any("error", err))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_ = templates.ErrorPage("Could not load players.").Render(r.Context(), w)
		return
	}

	data := templates.SpectatorData{
		Area:    h.area,
		Players: list,
		FeedURL: FeedPath,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Spectator(data).Render(r.Context(), w); err != nil {
		h.logger.Warn("failed to render spectator page", slog.Any("error", err))
	}
}
