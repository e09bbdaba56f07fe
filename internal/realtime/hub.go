package realtime

import (
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/multiplayer-demo/internal/model"
)

// Hub fans player change events out to every subscribed client
type Hub struct {
	clients map[*Client]bool
	mu      sync.RWMutex
	logger  *slog.Logger

	// Channels for managing clients
	register   chan *Client
	unregister chan *Client
	broadcast  chan model.PlayerEvent
	done       chan struct{}
	closeOnce  sync.Once
}

// NewHub creates a new Hub. Call Run on its own goroutine.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		logger:     logger.With(slog.String("component", "realtime")),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan model.PlayerEvent, 256),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	h.logger.Info("realtime hub started")
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			clientCount := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("feed client registered",
				slog.String("client_id", client.id),
				slog.String("transport", client.transport),
				slog.Int("total_clients", clientCount))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				clientCount := len(h.clients)
				h.mu.Unlock()
				h.logger.Info("feed client unregistered",
					slog.String("client_id", client.id),
					slog.Duration("connection_duration", time.Since(client.connectedAt)),
					slog.Int("total_clients", clientCount))
			} else {
				h.mu.Unlock()
			}

		case event := <-h.broadcast:
			// A full client is disconnected, never skipped; closing send ends
			// its transport and it resyncs from a snapshot on reconnect
			h.mu.Lock()
			sentCount := 0
			var evicted []*Client
			for client := range h.clients {
				select {
				case client.send <- event:
					sentCount++
				default:
					delete(h.clients, client)
					close(client.send)
					evicted = append(evicted, client)
				}
			}
			h.mu.Unlock()
			for _, client := range evicted {
				h.logger.Warn("feed client disconnected - buffer full",
					slog.String("client_id", client.id),
					slog.String("transport", client.transport))
			}
			if len(evicted) > 0 {
				h.logger.Warn("feed broadcast partial failure",
					slog.Int("sent", sentCount),
					slog.Int("disconnected", len(evicted)))
			}

		case <-h.done:
			h.mu.Lock()
			clientCount := len(h.clients)
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			h.logger.Info("realtime hub stopped", slog.Int("disconnected_clients", clientCount))
			return
		}
	}
}

// Register adds a client to the hub. Events published after Register
// returns are delivered to the client.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.send)
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Publish queues an event for every client
func (h *Hub) Publish(event model.PlayerEvent) {
	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn("feed broadcast dropped - hub buffer full",
			slog.String("event", string(event.Type)))
	}
}

// Close shuts down the hub
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
