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

const maxContentLen = 100000 // sanitized HTML from the editor

type PostService struct {
	postRepo repository.PostRepository
	isAdmin  func(ctx context.Context, userID uint) (bool, error)
	images   *ImageService
}

type CreatePostInput struct {
	UserID         uint
	Title          string
	Content        string
	Category       string
	ImageURL       string
	ImageStorageID string
}

type UpdatePostInput struct {
	UserID         uint
	PostID         uint
	Title          string
	Content        string
	Category       string
	ImageURL       string
	ImageStorageID string
}

type ListPostsInput struct {
	Limit         int
	Offset        int
	Category      string
	CurrentUserID uint
}

// LikeResult reports the outcome of a like or unlike operation.
type LikeResult struct {
	Post       *models.Post
	LikesCount int64
	Changed    bool
}

func NewPostService(
	postRepo repository.PostRepository,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
	images *ImageService,
) *PostService {
	return &PostService{
		postRepo: postRepo,
		isAdmin:  isAdmin,
		images:   images,
	}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if err := validation.ValidatePostTitle(strings.TrimSpace(in.Title)); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxContentLen {
		return nil, models.NewValidationError("Content too long")
	}

	category := models.PostCategory(in.Category)
	if in.Category == "" {
		category = models.CategoryOther
	}
	if !models.ValidCategory(category) {
		return nil, models.NewValidationError("Invalid category")
	}

	post := &models.Post{
		Title:          strings.TrimSpace(in.Title),
		Content:        in.Content,
		Category:       category,
		UserID:         in.UserID,
		ImageURL:       in.ImageURL,
		ImageStorageID: in.ImageStorageID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, models.NewStorageError(err)
	}

	return s.postRepo.GetByID(ctx, post.ID, in.UserID)
}

func (s *PostService) GetPost(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id, currentUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewStorageError(err)
	}
	return post, nil
}

func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) ([]*models.Post, int64, error) {
	if in.Category != "" && !models.ValidCategory(models.PostCategory(in.Category)) {
		return nil, 0, models.NewValidationError("Invalid category")
	}
	posts, total, err := s.postRepo.List(ctx, in.Limit, in.Offset, in.CurrentUserID, in.Category)
	if err != nil {
		return nil, 0, models.NewStorageError(err)
	}
	return posts, total, nil
}

func (s *PostService) GetUserPosts(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	posts, err := s.postRepo.GetByUserID(ctx, userID, limit, offset, currentUserID)
	if err != nil {
		return nil, models.NewStorageError(err)
	}
	return posts, nil
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID, in.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", in.PostID)
		}
		return nil, models.NewStorageError(err)
	}

	if err := s.requireOwnerOrAdmin(ctx, post.UserID, in.UserID); err != nil {
		return nil, err
	}

	if in.Title != "" {
		if err := validation.ValidatePostTitle(strings.TrimSpace(in.Title)); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		post.Title = strings.TrimSpace(in.Title)
	}
	if in.Content != "" {
		if len(in.Content) > maxContentLen {
			return nil, models.NewValidationError("Content too long")
		}
		post.Content = in.Content
	}
	if in.Category != "" {
		category := models.PostCategory(in.Category)
		if !models.ValidCategory(category) {
			return nil, models.NewValidationError("Invalid category")
		}
		post.Category = category
	}
	if in.ImageURL != "" && in.ImageURL != post.ImageURL {
		// Replacing the image orphans the old upload; drop it at the host.
		if post.ImageStorageID != "" && s.images != nil {
			s.images.DeleteAsync(ctx, post.ImageStorageID)
		}
		post.ImageURL = in.ImageURL
		post.ImageStorageID = in.ImageStorageID
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, models.NewStorageError(err)
	}
	return s.postRepo.GetByID(ctx, post.ID, in.UserID)
}

func (s *PostService) DeletePost(ctx context.Context, postID, userID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Post", postID)
		}
		return models.NewStorageError(err)
	}

	if err := s.requireOwnerOrAdmin(ctx, post.UserID, userID); err != nil {
		return err
	}

	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return models.NewStorageError(err)
	}

	if post.ImageStorageID != "" && s.images != nil {
		s.images.DeleteAsync(ctx, post.ImageStorageID)
	}
	return nil
}

// Like adds the user to the post's likes set. Liking an already-liked post
// is a no-op; Changed reports whether the set actually grew. Liking your own
// post is allowed.
func (s *PostService) Like(ctx context.Context, userID, postID uint) (*LikeResult, error) {
	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", postID)
		}
		return nil, models.NewStorageError(err)
	}

	alreadyLiked, err := s.postRepo.IsLiked(ctx, userID, postID)
	if err != nil {
		return nil, models.NewStorageError(err)
	}

	if !alreadyLiked {
		if err := s.postRepo.Like(ctx, userID, postID); err != nil {
			return nil, models.NewStorageError(err)
		}
	}

	count, err := s.postRepo.LikesCount(ctx, postID)
	if err != nil {
		return nil, models.NewStorageError(err)
	}

	return &LikeResult{Post: post, LikesCount: count, Changed: !alreadyLiked}, nil
}

// Unlike removes the user from the post's likes set; removing an absent like
// is a no-op.
func (s *PostService) Unlike(ctx context.Context, userID, postID uint) (*LikeResult, error) {
	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", postID)
		}
		return nil, models.NewStorageError(err)
	}

	liked, err := s.postRepo.IsLiked(ctx, userID, postID)
	if err != nil {
		return nil, models.NewStorageError(err)
	}

	if liked {
		if err := s.postRepo.Unlike(ctx, userID, postID); err != nil {
			return nil, models.NewStorageError(err)
		}
	}

	count, err := s.postRepo.LikesCount(ctx, postID)
	if err != nil {
		return nil, models.NewStorageError(err)
	}

	return &LikeResult{Post: post, LikesCount: count, Changed: liked}, nil
}

func (s *PostService) requireOwnerOrAdmin(ctx context.Context, ownerID, userID uint) error {
	if ownerID == userID {
		return nil
	}
	if s.isAdmin != nil {
		admin, err := s.isAdmin(ctx, userID)
		if err == nil && admin {
			return nil
		}
	}
	return models.NewUnauthorizedError("Not authorized to modify this post")
}
