// Package notifications provides real-time notification delivery and management.
package notifications

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"plume/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const (
	// A user may keep this many sockets open at once (tabs, devices).
	maxConnsPerUser = 12
	// Hard ceiling across all users; past it, new upgrades are refused.
	maxTotalConns = 10000
)

var (
	errTooManyConns     = errors.New("server connection limit reached")
	errTooManyUserConns = errors.New("user connection limit reached")
)

// Hub groups websocket connections into per-user rooms. Events addressed to
// a user reach every connection in that user's room and no one else's.
type Hub struct {
	mu       sync.RWMutex
	rooms    map[uint]map[*Client]struct{}
	total    int
	logs     *observability.WSLogger
	shutdown chan struct{}
	done     chan struct{}
}

func NewHub() *Hub {
	h := &Hub{
		rooms:    make(map[uint]map[*Client]struct{}),
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	h.logs = observability.NewWSLogger(h.Name())
	return h
}

// Name identifies this hub in metrics labels and logs.
func (h *Hub) Name() string { return "notification hub" }

// Register places a new connection in the user's room and returns its
// Client. Connection limits are enforced here, before any pumps start.
func (h *Hub) Register(userID uint, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.total >= maxTotalConns {
		return nil, errTooManyConns
	}

	room := h.rooms[userID]
	if room == nil {
		room = make(map[*Client]struct{})
		h.rooms[userID] = room
	}
	if len(room) >= maxConnsPerUser {
		return nil, errTooManyUserConns
	}

	client := NewClient(h, conn, userID)
	room[client] = struct{}{}
	h.total++
	observability.WebSocketConnectionsTotal.Inc()
	h.logs.Connect(userID)

	return client, nil
}

// UnregisterClient removes a client from its room. Safe to call more than
// once for the same client; empty rooms are reaped.
func (h *Hub) UnregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[client.UserID]
	if !ok {
		return
	}
	if _, present := room[client]; present {
		delete(room, client)
		h.total--
		observability.WebSocketConnectionsTotal.Dec()
		h.logs.Disconnect(client.UserID, "connection closed")
	}
	if len(room) == 0 {
		delete(h.rooms, client.UserID)
	}
}

// Broadcast delivers message to every connection in userID's room.
func (h *Hub) Broadcast(userID uint, message string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	data := []byte(message)
	for c := range h.rooms[userID] {
		c.TrySend(data)
	}
}

// BroadcastAll delivers message to every connection in every room.
func (h *Hub) BroadcastAll(message string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	data := []byte(message)
	for _, room := range h.rooms {
		for c := range room {
			c.TrySend(data)
		}
	}
}

// IsOnline reports whether the user has at least one open connection.
func (h *Hub) IsOnline(userID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[userID]) > 0
}

// ConnectionCount returns how many connections the user's room holds.
func (h *Hub) ConnectionCount(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[userID])
}

// StartWiring bridges the Redis subscription into local rooms: any instance
// may publish, and the instance holding the socket delivers.
func (h *Hub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartPatternSubscriber(ctx, func(channel, payload string) {
		if channel == BroadcastChannel {
			h.BroadcastAll(payload)
			return
		}

		idPart, ok := strings.CutPrefix(channel, userChannelPrefix)
		if !ok {
			h.logs.Warn("unroutable notification channel", slog.String("channel", channel))
			return
		}
		userID, err := strconv.ParseUint(idPart, 10, 64)
		if err != nil {
			h.logs.Warn("unroutable notification channel", slog.String("channel", channel))
			return
		}
		h.Broadcast(uint(userID), payload)
	})
}

// Shutdown sends a going-away close frame on every connection and empties
// the rooms.
func (h *Hub) Shutdown(_ context.Context) error {
	close(h.shutdown)

	h.mu.Lock()
	defer func() {
		h.mu.Unlock()
		close(h.done)
	}()

	closeFrame := websocket.FormatCloseMessage(websocket.CloseGoingAway, "Server shutting down")
	for userID, room := range h.rooms {
		for client := range room {
			if client.Conn == nil {
				continue
			}
			if err := client.Conn.WriteMessage(websocket.CloseMessage, closeFrame); err != nil {
				h.logs.Error(userID, "shutdown close message", err)
			}
			if err := client.Conn.Close(); err != nil {
				h.logs.Error(userID, "shutdown close", err)
			}
		}
	}
	h.rooms = make(map[uint]map[*Client]struct{})
	h.total = 0

	return nil
}
