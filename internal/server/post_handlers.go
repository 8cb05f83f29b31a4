package server

import (
	"github.com/gofiber/fiber/v2"

	"plume/internal/models"
	"plume/internal/observability"
	"plume/internal/service"
)

type postRequest struct {
	Title          string `json:"title"`
	Content        string `json:"content"`
	Category       string `json:"category"`
	ImageURL       string `json:"image_url"`
	ImageStorageID string `json:"image_storage_id"`
}

// GetPosts lists posts, newest first, optionally filtered by category.
func (s *Server) GetPosts(c *fiber.Ctx) error {
	p := parsePagination(c, 10)

	posts, total, err := s.postService.ListPosts(c.UserContext(), service.ListPostsInput{
		Limit:         p.Limit,
		Offset:        p.Offset,
		Category:      c.Query("category"),
		CurrentUserID: currentUserID(c),
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"posts":       posts,
		"total":       total,
		"currentPage": p.Page,
	})
}

// GetPost returns a single post with its author and counts.
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.UserContext(), id, currentUserID(c))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"post":    post,
	})
}

// GetUserPosts lists the posts written by a given user.
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	p := parsePagination(c, 10)

	posts, err := s.postService.GetUserPosts(c.UserContext(), id, p.Limit, p.Offset, currentUserID(c))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"posts":   posts,
	})
}

// CreatePost publishes a new post by the authenticated user.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req postRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		UserID:         c.Locals("userID").(uint),
		Title:          req.Title,
		Content:        req.Content,
		Category:       req.Category,
		ImageURL:       req.ImageURL,
		ImageStorageID: req.ImageStorageID,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"post":    post,
	})
}

// UpdatePost edits a post. Only the author or an admin may edit.
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	var req postRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.UpdatePost(c.UserContext(), service.UpdatePostInput{
		UserID:         c.Locals("userID").(uint),
		PostID:         id,
		Title:          req.Title,
		Content:        req.Content,
		Category:       req.Category,
		ImageURL:       req.ImageURL,
		ImageStorageID: req.ImageStorageID,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"post":    post,
	})
}

// DeletePost removes a post. Only the author or an admin may delete.
func (s *Server) DeletePost(c *fiber.Ctx) error {
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

// LikePost records a like. Liking an already-liked post is a no-op; a first
// like triggers a persisted notification and realtime fan-out.
func (s *Server) LikePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	userID := c.Locals("userID").(uint)

	result, err := s.postService.Like(c.UserContext(), userID, id)
	if err != nil {
		return handleServiceError(c, err)
	}

	if result.Changed {
		s.notifyPostEvent(c, models.NotificationLike, result.Post)
		if err := s.publishBroadcastEvent(c.UserContext(), EventPostLiked, fiber.Map{
			"post_id":     id,
			"likes_count": result.LikesCount,
		}); err != nil {
			observability.LogAsyncOperationError(c.UserContext(), "publish_post_liked", err, nil)
		}
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"liked":       true,
		"likes_count": result.LikesCount,
	})
}

// UnlikePost removes a like. No notification is produced; unliking never
// retracts the original like notification.
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	userID := c.Locals("userID").(uint)

	result, err := s.postService.Unlike(c.UserContext(), userID, id)
	if err != nil {
		return handleServiceError(c, err)
	}

	if result.Changed {
		if err := s.publishBroadcastEvent(c.UserContext(), EventPostUnliked, fiber.Map{
			"post_id":     id,
			"likes_count": result.LikesCount,
		}); err != nil {
			observability.LogAsyncOperationError(c.UserContext(), "publish_post_unliked", err, nil)
		}
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"liked":       false,
		"likes_count": result.LikesCount,
	})
}

// notifyPostEvent persists a notification for the post's author and fans it
// out to their live connections. Failures are logged and swallowed; the
// triggering write has already succeeded.
func (s *Server) notifyPostEvent(c *fiber.Ctx, notType models.NotificationType, post *models.Post) {
	actorID := c.Locals("userID").(uint)

	actor, err := s.userService.GetUserByID(c.UserContext(), actorID)
	if err != nil {
		observability.LogAsyncOperationError(c.UserContext(), "notify_load_actor", err, nil)
		return
	}

	notification, err := s.notificationService.Notify(c.UserContext(), notType, actor, post)
	if err != nil {
		observability.LogAsyncOperationError(c.UserContext(), "notify_persist", err, nil)
		return
	}
	if notification == nil {
		// Self-action; nothing to deliver.
		return
	}

	if err := s.publishUserEvent(c.UserContext(), post.UserID, EventNewNotification, notification); err != nil {
		observability.LogAsyncOperationError(c.UserContext(), "notify_fanout", err, nil)
	}
}

// UploadImage proxies a multipart image upload to the external host and
// returns the hosted URL plus the storage handle for later deletion.
func (s *Server) UploadImage(c *fiber.Ctx) error {
	header, err := c.FormFile("image")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("An image file is required"))
	}

	file, err := header.Open()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Could not read the uploaded file"))
	}
	defer func() { _ = file.Close() }()

	result, err := s.imageService.Upload(c.UserContext(), file, header)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"image":   result,
	})
}
