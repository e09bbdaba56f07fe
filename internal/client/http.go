package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/mcoot/multiplayer-demo/internal/api/apierr"
	"github.com/mcoot/multiplayer-demo/internal/api/request"
	"github.com/mcoot/multiplayer-demo/internal/api/response"
	"github.com/mcoot/multiplayer-demo/internal/model"
)

// HTTPClient talks to the backend's JSON API. It sets no request timeout
// of its own; callers bound one-shot calls through their context.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClient creates a new API client for the server at baseURL
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{},
	}
}

// APIError is an error envelope returned by the server
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

// Is lets errors.Is match the model sentinel behind an error code
func (e *APIError) Is(target error) bool {
	switch e.Code {
	case apierr.CodePlayerNotFound:
		return target == model.ErrPlayerNotFound
	case apierr.CodeInvalidPosition:
		return target == model.ErrInvalidPosition
	}
	return false
}

// Do performs an HTTP request, decoding a JSON result or error envelope
func (c *HTTPClient) Do(ctx context.Context, method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	// Check for error responses
	if resp.StatusCode >= 400 {
		var errResp apierr.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error.Code != "" {
			return &APIError{Status: resp.StatusCode, Code: errResp.Error.Code, Message: errResp.Error.Message}
		}
		return &APIError{Status: resp.StatusCode, Code: "HTTP_ERROR", Message: strings.TrimSpace(string(respBody))}
	}

	// Parse successful response
	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}

	return nil
}

// CreatePlayer creates a player with the given name (empty for the default)
func (c *HTTPClient) CreatePlayer(ctx context.Context, name string) (*model.Player, error) {
	var p response.Player
	if err := c.Do(ctx, http.MethodPost, "/api/v1/players", request.CreatePlayerRequest{Name: name}, &p); err != nil {
		return nil, err
	}
	return p.ToModel(), nil
}

// ListPlayers returns every player ordered by creation
func (c *HTTPClient) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	var resp response.PlayerListResponse
	if err := c.Do(ctx, http.MethodGet, "/api/v1/players", nil, &resp); err != nil {
		return nil, err
	}
	out := make([]*model.Player, 0, len(resp.Players))
	for _, p := range resp.Players {
		out = append(out, p.ToModel())
	}
	return out, nil
}

// GetPlayer returns one player
func (c *HTTPClient) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	var p response.Player
	if err := c.Do(ctx, http.MethodGet, "/api/v1/players/"+url.PathEscape(string(id)), nil, &p); err != nil {
		return nil, err
	}
	return p.ToModel(), nil
}

// UpdatePlayerPosition overwrites a player's position
func (c *HTTPClient) UpdatePlayerPosition(ctx context.Context, id model.PlayerID, x, y float64) error {
	body := request.UpdatePositionRequest{X: &x, Y: &y}
	return c.Do(ctx, http.MethodPatch, "/api/v1/players/"+url.PathEscape(string(id))+"/position", body, nil)
}

// DeleteAllPlayers removes every player and reports how many were removed
func (c *HTTPClient) DeleteAllPlayers(ctx context.Context) (int, error) {
	var resp response.DeleteResponse
	if err := c.Do(ctx, http.MethodDelete, "/api/v1/players", nil, &resp); err != nil {
		return 0, err
	}
	return resp.Deleted, nil
}

// Health checks the server health endpoint
func (c *HTTPClient) Health(ctx context.Context) (string, error) {
	var resp response.HealthResponse
	if err := c.Do(ctx, http.MethodGet, "/api/v1/health", nil, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

// FeedURL returns the WebSocket URL of the player change feed
func (c *HTTPClient) FeedURL() string {
	u := c.baseURL
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u + "/api/v1/players/ws"
}

// EventsURL returns the SSE URL of the player change feed
func (c *HTTPClient) EventsURL() string {
	return c.baseURL + "/api/v1/players/events"
}
