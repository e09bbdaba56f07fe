package realtime

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/multiplayer-demo/internal/api/apierr"
	"github.com/mcoot/multiplayer-demo/internal/api/response"
)

// Time allowed to read the next pong from the peer
const pongWait = 2 * pingPeriod

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ServeWS streams the player feed as JSON WebSocket frames. The first frame
// is a snapshot; each later frame carries one change.
func ServeWS(w http.ResponseWriter, r *http.Request, sub Subscriber, logger *slog.Logger) {
	snapshot, client, err := sub.Subscribe(r.Context(), TransportWebSocket)
	if err != nil {
		logger.Error("failed to subscribe", slog.Any("error", err))
		apierr.WriteError(w, err)
		return
	}
	defer sub.Unsubscribe(client)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error
		logger.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}
	defer conn.Close()

	// The feed is one-way; the read pump only services control frames and
	// notices when the peer goes away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(response.SnapshotMessage(snapshot, time.Now())); err != nil {
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-client.Events():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "feed closed"))
				return
			}
			if err := conn.WriteJSON(response.EventMessage(event)); err != nil {
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-closed:
			return

		case <-r.Context().Done():
			return
		}
	}
}
