package server

import (
	"github.com/gofiber/fiber/v2"

	"plume/internal/models"
)

type supportChatRequest struct {
	Message string `json:"message"`
}

// SupportChat answers a single support question. Stateless; each request is
// answered on its own.
func (s *Server) SupportChat(c *fiber.Ctx) error {
	var req supportChatRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	reply, err := s.supportService.Chat(c.UserContext(), req.Message)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"reply":   reply,
	})
}
