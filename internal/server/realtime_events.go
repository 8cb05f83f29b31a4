package server

import (
	"context"
	"encoding/json"
	"fmt"

	"plume/internal/observability"
)

// Event types delivered over the websocket connection.
const (
	EventNewNotification = "new_notification"
	EventPostLiked       = "post_liked"
	EventPostUnliked     = "post_unliked"
	EventCommentCreated  = "comment_created"
)

// wsEvent is the wire envelope for every realtime event.
type wsEvent struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// publishUserEvent delivers an event to a single user's connections. When a
// Notifier is wired, the event goes through Redis pub/sub so every instance's
// hub sees it; otherwise it is broadcast to the local hub directly.
func (s *Server) publishUserEvent(ctx context.Context, userID uint, eventType string, payload interface{}) error {
	message, err := json.Marshal(wsEvent{Type: eventType, Payload: payload})
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", eventType, err)
	}

	observability.NotificationsFanoutTotal.WithLabelValues(eventType).Inc()

	if s.notifier != nil {
		return s.notifier.PublishUser(ctx, userID, string(message))
	}
	s.hub.Broadcast(userID, string(message))
	return nil
}

// publishBroadcastEvent delivers an event to every connected user.
func (s *Server) publishBroadcastEvent(ctx context.Context, eventType string, payload interface{}) error {
	message, err := json.Marshal(wsEvent{Type: eventType, Payload: payload})
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", eventType, err)
	}

	observability.NotificationsFanoutTotal.WithLabelValues(eventType).Inc()

	if s.notifier != nil {
		return s.notifier.PublishBroadcast(ctx, string(message))
	}
	s.hub.BroadcastAll(string(message))
	return nil
}
