package service

import (
	"context"
	"errors"
	"strings"

	"plume/internal/models"
	"plume/internal/repository"
	"plume/internal/validation"

	"gorm.io/gorm"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	isAdmin     func(ctx context.Context, userID uint) (bool, error)
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		isAdmin:     isAdmin,
	}
}

// CreateComment appends a comment to the post's thread and returns it with
// the author preloaded, along with the post for notification fan-out.
func (s *CommentService) CreateComment(ctx context.Context, userID, postID uint, content string) (*models.Comment, *models.Post, error) {
	content = strings.TrimSpace(content)
	if err := validation.ValidateCommentContent(content); err != nil {
		return nil, nil, models.NewValidationError(err.Error())
	}

	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, models.NewNotFoundError("Post", postID)
		}
		return nil, nil, models.NewStorageError(err)
	}

	comment := &models.Comment{
		Content: content,
		UserID:  userID,
		PostID:  postID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, nil, models.NewStorageError(err)
	}

	created, err := s.commentRepo.GetByID(ctx, comment.ID)
	if err != nil {
		return nil, nil, models.NewStorageError(err)
	}
	return created, post, nil
}

// GetComments returns a post's full thread in chronological order.
func (s *CommentService) GetComments(ctx context.Context, postID uint) ([]*models.Comment, error) {
	if _, err := s.postRepo.GetByID(ctx, postID, 0); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", postID)
		}
		return nil, models.NewStorageError(err)
	}

	comments, err := s.commentRepo.GetByPostID(ctx, postID)
	if err != nil {
		return nil, models.NewStorageError(err)
	}
	return comments, nil
}

// DeleteComment removes a comment. Allowed for the comment's author and for
// admins moderating the thread.
func (s *CommentService) DeleteComment(ctx context.Context, commentID, userID uint) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Comment", commentID)
		}
		return models.NewStorageError(err)
	}

	if comment.UserID != userID {
		allowed := false
		if s.isAdmin != nil {
			admin, err := s.isAdmin(ctx, userID)
			if err == nil && admin {
				allowed = true
			}
		}
		if !allowed {
			return models.NewUnauthorizedError("Not authorized to delete this comment")
		}
	}

	if err := s.commentRepo.Delete(ctx, commentID); err != nil {
		return models.NewStorageError(err)
	}
	return nil
}
