package notifications

import (
	"log/slog"
	"time"

	"plume/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const (
	// Outbound buffer per connection. When it fills, messages are dropped
	// rather than blocking the publisher.
	sendBufferSize = 256

	writeTimeout = 10 * time.Second

	// A connection that misses pongs for this long is considered dead.
	pongTimeout  = 60 * time.Second
	pingInterval = 54 * time.Second

	// Inbound frames are tiny control messages; anything larger is abuse.
	maxInboundBytes = 16384
)

// dropNotice tells the client that messages were lost so it can re-fetch
// instead of trusting its local state.
var dropNotice = []byte(`{"type":"messages_dropped","payload":{"reason":"buffer_full"}}`)

// RoomHub is the part of a hub a client needs: somewhere to report its own
// death.
type RoomHub interface {
	UnregisterClient(c *Client)
	Name() string
}

// Client owns one websocket connection inside a user's room. All writes go
// through the Send channel; the write pump is the only goroutine touching
// the connection for output.
type Client struct {
	Hub    RoomHub
	Conn   *websocket.Conn
	Send   chan []byte
	UserID uint

	// IncomingHandler, when set, receives every inbound frame.
	IncomingHandler func(*Client, []byte)

	logs *observability.WSLogger
}

// NewClient wraps an accepted connection for the given user.
func NewClient(hub RoomHub, conn *websocket.Conn, userID uint) *Client {
	return &Client{
		Hub:    hub,
		Conn:   conn,
		UserID: userID,
		Send:   make(chan []byte, sendBufferSize),
		logs:   observability.NewWSLogger(hub.Name()),
	}
}

// ReadPump consumes inbound frames until the connection dies, then removes
// the client from its room. Must run on the connection's handler goroutine.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.UnregisterClient(c)
		_ = c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxInboundBytes)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongTimeout))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongTimeout))
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logs.Error(c.UserID, "read", err)
			}
			return
		}
		if c.IncomingHandler != nil {
			c.IncomingHandler(c, message)
		}
	}
}

// WritePump drains the Send channel onto the wire and keeps the connection
// alive with periodic pings. Runs on its own goroutine.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case message, open := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !open {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// TrySend queues a message without ever blocking. A full buffer drops the
// message and queues a drop notice instead; a closed channel counts the drop
// and moves on.
func (c *Client) TrySend(message []byte) {
	defer func() {
		if r := recover(); r != nil {
			observability.WebSocketBackpressureDrops.WithLabelValues(c.Hub.Name(), "closed").Inc()
		}
	}()

	select {
	case c.Send <- message:
	default:
		observability.WebSocketBackpressureDrops.WithLabelValues(c.Hub.Name(), "full").Inc()
		c.logs.Warn("send buffer full, message dropped", slog.Uint64("user_id", uint64(c.UserID)))

		select {
		case c.Send <- dropNotice:
		default:
		}
	}
}
