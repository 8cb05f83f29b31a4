package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"plume/internal/middleware"
	"plume/internal/models"
	"plume/internal/notifications"
	"plume/internal/observability"
)

// wsTicketTTL bounds how long an issued ticket stays redeemable. Long enough
// for the client to open the socket, short enough that a leaked ticket is
// useless.
const wsTicketTTL = 30 * time.Second

// IssueWSTicket mints a single-use ticket the browser presents when opening
// the websocket. Browsers cannot set an Authorization header on the upgrade
// request, and a bearer token in the query string would land in proxy logs.
func (s *Server) IssueWSTicket(c *fiber.Ctx) error {
	if s.redis == nil {
		return models.RespondWithError(c, fiber.StatusServiceUnavailable,
			models.NewInternalError(errors.New("realtime service unavailable")))
	}

	userID := c.Locals("userID").(uint)
	ticket := uuid.New().String()

	key := middleware.WSTicketPrefix + ticket
	value := strconv.FormatUint(uint64(userID), 10)
	if err := s.redis.Set(c.Context(), key, value, wsTicketTTL).Err(); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"ticket":     ticket,
		"expires_in": int(wsTicketTTL.Seconds()),
	})
}

// WebsocketHandler upgrades the connection and registers it with the hub.
// Authentication already happened in AuthRequired; the user ID rides along
// in locals through the upgrade.
func (s *Server) WebsocketHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userID, ok := conn.Locals("userID").(uint)
		if !ok {
			_ = conn.Close()
			return
		}

		client, err := s.hub.Register(userID, conn)
		if err != nil {
			middleware.Logger.Warn("websocket register refused",
				slog.Uint64("user_id", uint64(userID)),
				slog.String("error", err.Error()))
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.ClosePolicyViolation, err.Error()))
			_ = conn.Close()
			return
		}
		defer s.hub.UnregisterClient(client)

		// Registration already placed the connection in its user room; a join
		// message just gets an idempotent confirmation.
		client.IncomingHandler = func(c *notifications.Client, message []byte) {
			var msg struct {
				Type string `json:"type"`
			}
			if err := json.Unmarshal(message, &msg); err != nil {
				return
			}
			observability.WebSocketEventsTotal.WithLabelValues(msg.Type).Inc()
			if msg.Type == "join" {
				confirm, _ := json.Marshal(wsEvent{
					Type:    "joined",
					Payload: fiber.Map{"user_id": c.UserID},
				})
				c.TrySend(confirm)
			}
		}

		go client.WritePump()
		client.ReadPump()
	})
}
