package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/multiplayer-demo/internal/api/request"
	"github.com/mcoot/multiplayer-demo/internal/api/response"
	"github.com/mcoot/multiplayer-demo/internal/model"
	"github.com/mcoot/multiplayer-demo/internal/realtime"
	"github.com/mcoot/multiplayer-demo/internal/services/players"
)

// PlayerHandler handles player CRUD and change-feed endpoints
type PlayerHandler struct {
	service *players.Service
	logger  *slog.Logger
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(service *players.Service, logger *slog.Logger) *PlayerHandler {
	return &PlayerHandler{
		service: service,
		logger:  logger.With(slog.String("component", "api")),
	}
}

// Create handles POST /api/v1/players
func (h *PlayerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreatePlayerRequest
	// An empty body creates an anonymous player
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	player, err := h.service.CreatePlayer(r.Context(), req.Name)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.PlayerFromModel(player))
}

// List handles GET /api/v1/players
func (h *PlayerHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListPlayers(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerListResponse{
		Players: response.PlayersFromModel(list),
	})
}

// Get handles GET /api/v1/players/{id}
func (h *PlayerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := model.PlayerID(mux.Vars(r)["id"])

	player, err := h.service.GetPlayer(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerFromModel(player))
}

// UpdatePosition handles PATCH /api/v1/players/{id}/position
func (h *PlayerHandler) UpdatePosition(w http.ResponseWriter, r *http.Request) {
	id := model.PlayerID(mux.Vars(r)["id"])

	var req request.UpdatePositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.X == nil || req.Y == nil {
		WriteError(w, NewInvalidRequestError("x and y are required"))
		return
	}

	if err := h.service.UpdatePlayerPosition(r.Context(), id, *req.X, *req.Y); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// DeleteAll handles DELETE /api/v1/players
func (h *PlayerHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.DeleteAllPlayers(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.DeleteResponse{Deleted: n})
}

// Events handles GET /api/v1/players/events (server-sent events)
func (h *PlayerHandler) Events(w http.ResponseWriter, r *http.Request) {
	realtime.ServeSSE(w, r, h.service, h.logger)
}

// WebSocket handles GET /api/v1/players/ws
func (h *PlayerHandler) WebSocket(w http.ResponseWriter, r *http.Request) {
	realtime.ServeWS(w, r, h.service, h.logger)
}
