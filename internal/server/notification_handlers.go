package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetNotifications lists the authenticated user's notifications, newest
// first, along with the unread count.
func (s *Server) GetNotifications(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	list, err := s.notificationService.List(c.UserContext(), userID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":       true,
		"notifications": list.Notifications,
		"unreadCount":   list.UnreadCount,
	})
}

// MarkNotificationRead marks one of the user's notifications as read.
// Idempotent.
func (s *Server) MarkNotificationRead(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	userID := c.Locals("userID").(uint)

	if err := s.notificationService.MarkRead(c.UserContext(), id, userID); err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Notification marked as read",
	})
}

// MarkAllNotificationsRead marks every unread notification as read and
// reports how many were updated.
func (s *Server) MarkAllNotificationsRead(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	updated, err := s.notificationService.MarkAllRead(c.UserContext(), userID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"updated": updated,
	})
}

// DeleteNotification removes one of the user's notifications. Not currently
// reachable from the routing table; clients mark notifications read instead.
func (s *Server) DeleteNotification(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	userID := c.Locals("userID").(uint)

	if err := s.notificationService.Delete(c.UserContext(), id, userID); err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Notification deleted",
	})
}
