package server

import (
	"github.com/gofiber/fiber/v2"

	"plume/internal/models"
	"plume/internal/observability"
)

type commentRequest struct {
	Content string `json:"content"`
}

// GetComments lists a post's comments, oldest first.
func (s *Server) GetComments(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	comments, err := s.commentService.GetComments(c.UserContext(), postID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"comments": comments,
	})
}

// CreateComment appends a comment to a post. The post author gets a persisted
// notification; everyone watching the post gets a realtime event.
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	var req commentRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	userID := c.Locals("userID").(uint)
	comment, post, err := s.commentService.CreateComment(c.UserContext(), userID, postID, req.Content)
	if err != nil {
		return handleServiceError(c, err)
	}

	s.notifyPostEvent(c, models.NotificationComment, post)
	if err := s.publishBroadcastEvent(c.UserContext(), EventCommentCreated, fiber.Map{
		"post_id": postID,
		"comment": comment,
	}); err != nil {
		observability.LogAsyncOperationError(c.UserContext(), "publish_comment_created", err, nil)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"comment": comment,
	})
}

// DeleteComment removes a comment. Only its author or an admin may delete.
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	if _, err := parseID(c, "id"); err != nil {
		return nil
	}
	commentID, err := parseID(c, "commentId")
	if err != nil {
		return nil
	}

	if err := s.commentService.DeleteComment(c.UserContext(), commentID, c.Locals("userID").(uint)); err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Comment deleted",
	})
}
