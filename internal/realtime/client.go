package realtime

import (
	"time"

	"github.com/google/uuid"

	"github.com/mcoot/multiplayer-demo/internal/model"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time between keepalive pings
	pingPeriod = 30 * time.Second

	// Buffer size for outgoing events
	sendBufferSize = 256
)

// Transport labels used in logs
const (
	TransportSSE       = "sse"
	TransportWebSocket = "websocket"
)

// Client is one subscription to the change feed
type Client struct {
	id          string
	transport   string
	connectedAt time.Time
	send        chan model.PlayerEvent
}

// NewClient creates a new feed client
func NewClient(transport string) *Client {
	return &Client{
		id:          uuid.NewString(),
		transport:   transport,
		connectedAt: time.Now(),
		send:        make(chan model.PlayerEvent, sendBufferSize),
	}
}

// Events returns the channel of events for this client. It is closed when
// the client is unregistered or the hub shuts down.
func (c *Client) Events() <-chan model.PlayerEvent {
	return c.send
}

// ID returns the client's identifier
func (c *Client) ID() string {
	return c.id
}
