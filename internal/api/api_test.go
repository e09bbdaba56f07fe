package api_test

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/multiplayer-demo/internal/api"
	"github.com/mcoot/multiplayer-demo/internal/api/apierr"
	"github.com/mcoot/multiplayer-demo/internal/api/response"
	"github.com/mcoot/multiplayer-demo/internal/factory"
	"github.com/mcoot/multiplayer-demo/internal/testutil"
)

// testServer wires the API router to a test app with mocked clock and random
type testServer struct {
	handler http.Handler
	app     *factory.TestApp
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	app := factory.NewTestApp(testutil.NopLogger())
	t.Cleanup(func() { _ = app.Close() })

	router := api.NewRouter(api.RouterConfig{
		Logger:        testutil.NopLogger(),
		PlayerService: app.PlayerService,
	})

	return &testServer{handler: router, app: app}
}

func (ts *testServer) request(method, path string, body any) *httptest.ResponseRecorder {
	reqBody := bytes.NewBuffer(nil)
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func (ts *testServer) createPlayer(t *testing.T, name string) response.Player {
	t.Helper()
	rr := ts.request(http.MethodPost, "/api/v1/players", map[string]string{"name": name})
	require.Equal(t, http.StatusCreated, rr.Code)

	var p response.Player
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &p))
	return p
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) apierr.APIError {
	t.Helper()
	var resp apierr.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.Error
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestCreatePlayer(t *testing.T) {
	ts := newTestServer(t)
	ts.app.MockRandom.QueueID("player-1")
	ts.app.MockRandom.QueueIntn(100, 250)
	ts.app.MockRandom.QueueString("FF8800")

	p := ts.createPlayer(t, "Alice")

	assert.Equal(t, "player-1", p.ID)
	assert.Equal(t, "Alice", p.Name)
	assert.Equal(t, 100.0, p.X)
	assert.Equal(t, 250.0, p.Y)
	assert.Equal(t, "#FF8800", p.Color)
	assert.True(t, ts.app.MockClock.Now().Equal(p.LastSeen))
}

func TestCreatePlayerWithEmptyBody(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/players", nil)
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	var p response.Player
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &p))
	assert.Equal(t, "Anonymous", p.Name)
}

func TestCreatePlayerInvalidBody(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/players", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeInvalidRequest, decodeError(t, rr).Code)
}

func TestListPlayers(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/players", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"players":[]}`, rr.Body.String())

	a := ts.createPlayer(t, "A")
	ts.app.MockClock.Advance(time.Second)
	b := ts.createPlayer(t, "B")

	rr = ts.request(http.MethodGet, "/api/v1/players", nil)
	var list response.PlayerListResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list.Players, 2)
	assert.Equal(t, a.ID, list.Players[0].ID)
	assert.Equal(t, b.ID, list.Players[1].ID)
}

func TestGetPlayer(t *testing.T) {
	ts := newTestServer(t)
	p := ts.createPlayer(t, "Alice")

	rr := ts.request(http.MethodGet, "/api/v1/players/"+p.ID, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/players/missing", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodePlayerNotFound, decodeError(t, rr).Code)
}

func TestUpdatePosition(t *testing.T) {
	ts := newTestServer(t)
	p := ts.createPlayer(t, "Alice")
	ts.app.MockClock.Advance(5 * time.Second)

	rr := ts.request(http.MethodPatch, "/api/v1/players/"+p.ID+"/position", map[string]float64{"x": 321, "y": 54})
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/players/"+p.ID, nil)
	var got response.Player
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, 321.0, got.X)
	assert.Equal(t, 54.0, got.Y)
	assert.True(t, ts.app.MockClock.Now().Equal(got.LastSeen))
}

func TestUpdatePositionMissingPlayerIsNoOp(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPatch, "/api/v1/players/ghost/position", map[string]float64{"x": 1, "y": 1})
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/players/ghost", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUpdatePositionValidation(t *testing.T) {
	ts := newTestServer(t)
	p := ts.createPlayer(t, "Alice")

	rr := ts.request(http.MethodPatch, "/api/v1/players/"+p.ID+"/position", map[string]float64{"x": 1})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeInvalidRequest, decodeError(t, rr).Code)
}

func TestDeleteAllPlayers(t *testing.T) {
	ts := newTestServer(t)
	ts.createPlayer(t, "A")
	ts.createPlayer(t, "B")

	rr := ts.request(http.MethodDelete, "/api/v1/players", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"deleted":2}`, rr.Body.String())

	rr = ts.request(http.MethodGet, "/api/v1/players", nil)
	assert.JSONEq(t, `{"players":[]}`, rr.Body.String())
}

// readSSEEvent reads one "event:/data:" block from an SSE stream
func readSSEEvent(t *testing.T, r *bufio.Reader) (string, response.FeedMessage) {
	t.Helper()
	var name, data string
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case strings.HasPrefix(line, "event: "):
			name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data += strings.TrimPrefix(line, "data: ")
		case line == "" && name != "":
			var msg response.FeedMessage
			require.NoError(t, json.Unmarshal([]byte(data), &msg))
			return name, msg
		}
	}
}

func TestEventsStream(t *testing.T) {
	ts := newTestServer(t)
	existing := ts.createPlayer(t, "Existing")

	srv := httptest.NewServer(ts.handler)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/players/events")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	name, msg := readSSEEvent(t, reader)
	assert.Equal(t, "snapshot", name)
	require.Len(t, msg.Players, 1)
	assert.Equal(t, existing.ID, msg.Players[0].ID)

	rr := ts.request(http.MethodPatch, "/api/v1/players/"+existing.ID+"/position", map[string]float64{"x": 7, "y": 8})
	require.Equal(t, http.StatusNoContent, rr.Code)

	name, msg = readSSEEvent(t, reader)
	assert.Equal(t, "update", name)
	require.NotNil(t, msg.Player)
	assert.Equal(t, 7.0, msg.Player.X)
}

func TestWebSocketFeed(t *testing.T) {
	ts := newTestServer(t)

	srv := httptest.NewServer(ts.handler)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/players/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	var msg response.FeedMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "snapshot", msg.Type)
	assert.Empty(t, msg.Players)

	created := ts.createPlayer(t, "Bob")

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "insert", msg.Type)
	require.NotNil(t, msg.Player)
	assert.Equal(t, created.ID, msg.Player.ID)

	ts.request(http.MethodDelete, "/api/v1/players", nil)
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "delete", msg.Type)
	assert.Equal(t, created.ID, msg.Player.ID)
}
