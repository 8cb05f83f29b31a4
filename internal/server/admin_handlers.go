package server

import (
	"github.com/gofiber/fiber/v2"

	"plume/internal/models"
)

// GetAllUsers lists all accounts for the admin dashboard.
func (s *Server) GetAllUsers(c *fiber.Ctx) error {
	p := parsePagination(c, 20)

	users, total, err := s.userService.ListUsers(c.UserContext(), p.Limit, p.Offset)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"users":   users,
		"total":   total,
	})
}

// AdminDeleteUser removes an account. Admins cannot delete themselves.
func (s *Server) AdminDeleteUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if id == c.Locals("userID").(uint) {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("You cannot delete your own account"))
	}

	if err := s.userService.DeleteUser(c.UserContext(), id); err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "User deleted",
	})
}

// AdminDeletePost removes any post regardless of author. Moderation path;
// goes through the same service so the hosted image is cascaded too.
func (s *Server) AdminDeletePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.UserContext(), id, c.Locals("userID").(uint)); err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Post deleted",
	})
}

// GetContacts lists contact-form submissions for review.
func (s *Server) GetContacts(c *fiber.Ctx) error {
	p := parsePagination(c, 20)

	contacts, total, err := s.contactService.List(c.UserContext(), p.Limit, p.Offset)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"contacts": contacts,
		"total":    total,
	})
}

// UpdateContactStatus marks a contact submission as read. Idempotent.
func (s *Server) UpdateContactStatus(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	contact, err := s.contactService.MarkRead(c.UserContext(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"contact": contact,
	})
}

// DeleteContact removes a contact submission.
func (s *Server) DeleteContact(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.contactService.Delete(c.UserContext(), id); err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Contact submission deleted",
	})
}
