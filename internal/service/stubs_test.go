package service

import (
	"context"

	"plume/internal/models"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn           func(context.Context, *models.Post) error
	getByIDFn          func(context.Context, uint, uint) (*models.Post, error)
	getByUserIDFn      func(context.Context, uint, int, int, uint) ([]*models.Post, error)
	listFn             func(context.Context, int, int, uint, string) ([]*models.Post, int64, error)
	updateFn           func(context.Context, *models.Post) error
	deleteFn           func(context.Context, uint) error
	isLikedFn          func(context.Context, uint, uint) (bool, error)
	likeFn             func(context.Context, uint, uint) error
	unlikeFn           func(context.Context, uint, uint) error
	likesCountFn       func(context.Context, uint) (int64, error)
	textSearchFn       func(context.Context, string, int, int, bool, uint) ([]*models.Post, error)
	fuzzySearchFn      func(context.Context, []string, int, uint) ([]*models.Post, error)
	suggestScatterFn   func(context.Context, string, int) ([]string, error)
	suggestSubstringFn func(context.Context, string, int) ([]string, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id, currentUserID uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id, currentUserID)
}
func (s *postRepoStub) GetByUserID(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	return s.getByUserIDFn(ctx, userID, limit, offset, currentUserID)
}
func (s *postRepoStub) List(ctx context.Context, limit, offset int, currentUserID uint, category string) ([]*models.Post, int64, error) {
	return s.listFn(ctx, limit, offset, currentUserID, category)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *postRepoStub) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	return s.isLikedFn(ctx, userID, postID)
}
func (s *postRepoStub) Like(ctx context.Context, userID, postID uint) error {
	return s.likeFn(ctx, userID, postID)
}
func (s *postRepoStub) Unlike(ctx context.Context, userID, postID uint) error {
	return s.unlikeFn(ctx, userID, postID)
}
func (s *postRepoStub) LikesCount(ctx context.Context, postID uint) (int64, error) {
	return s.likesCountFn(ctx, postID)
}
func (s *postRepoStub) TextSearch(ctx context.Context, query string, limit, offset int, orderByRank bool, currentUserID uint) ([]*models.Post, error) {
	return s.textSearchFn(ctx, query, limit, offset, orderByRank, currentUserID)
}
func (s *postRepoStub) FuzzySearch(ctx context.Context, tokens []string, limit int, currentUserID uint) ([]*models.Post, error) {
	return s.fuzzySearchFn(ctx, tokens, limit, currentUserID)
}
func (s *postRepoStub) SuggestScatter(ctx context.Context, pattern string, limit int) ([]string, error) {
	return s.suggestScatterFn(ctx, pattern, limit)
}
func (s *postRepoStub) SuggestSubstring(ctx context.Context, query string, limit int) ([]string, error) {
	return s.suggestSubstringFn(ctx, query, limit)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:      func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn:     func(_ context.Context, _, _ uint) (*models.Post, error) { return &models.Post{}, nil },
		getByUserIDFn: func(_ context.Context, _ uint, _, _ int, _ uint) ([]*models.Post, error) { return nil, nil },
		listFn: func(_ context.Context, _, _ int, _ uint, _ string) ([]*models.Post, int64, error) {
			return nil, 0, nil
		},
		updateFn:     func(_ context.Context, _ *models.Post) error { return nil },
		deleteFn:     func(_ context.Context, _ uint) error { return nil },
		isLikedFn:    func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
		likeFn:       func(_ context.Context, _, _ uint) error { return nil },
		unlikeFn:     func(_ context.Context, _, _ uint) error { return nil },
		likesCountFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		textSearchFn: func(_ context.Context, _ string, _, _ int, _ bool, _ uint) ([]*models.Post, error) {
			return nil, nil
		},
		fuzzySearchFn: func(_ context.Context, _ []string, _ int, _ uint) ([]*models.Post, error) {
			return nil, nil
		},
		suggestScatterFn:   func(_ context.Context, _ string, _ int) ([]string, error) { return nil, nil },
		suggestSubstringFn: func(_ context.Context, _ string, _ int) ([]string, error) { return nil, nil },
	}
}

// notificationRepoStub is a stub for repository.NotificationRepository.
type notificationRepoStub struct {
	createFn          func(context.Context, *models.Notification) error
	getByIDFn         func(context.Context, uint) (*models.Notification, error)
	listByRecipientFn func(context.Context, uint) ([]*models.Notification, error)
	countUnreadFn     func(context.Context, uint) (int64, error)
	markReadFn        func(context.Context, uint) error
	markAllReadFn     func(context.Context, uint) (int64, error)
	deleteFn          func(context.Context, uint) error
}

func (s *notificationRepoStub) Create(ctx context.Context, n *models.Notification) error {
	return s.createFn(ctx, n)
}
func (s *notificationRepoStub) GetByID(ctx context.Context, id uint) (*models.Notification, error) {
	return s.getByIDFn(ctx, id)
}
func (s *notificationRepoStub) ListByRecipient(ctx context.Context, recipientID uint) ([]*models.Notification, error) {
	return s.listByRecipientFn(ctx, recipientID)
}
func (s *notificationRepoStub) CountUnread(ctx context.Context, recipientID uint) (int64, error) {
	return s.countUnreadFn(ctx, recipientID)
}
func (s *notificationRepoStub) MarkRead(ctx context.Context, id uint) error {
	return s.markReadFn(ctx, id)
}
func (s *notificationRepoStub) MarkAllRead(ctx context.Context, recipientID uint) (int64, error) {
	return s.markAllReadFn(ctx, recipientID)
}
func (s *notificationRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopNotificationRepo() *notificationRepoStub {
	return &notificationRepoStub{
		createFn:  func(_ context.Context, _ *models.Notification) error { return nil },
		getByIDFn: func(_ context.Context, _ uint) (*models.Notification, error) { return &models.Notification{}, nil },
		listByRecipientFn: func(_ context.Context, _ uint) ([]*models.Notification, error) {
			return nil, nil
		},
		countUnreadFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		markReadFn:    func(_ context.Context, _ uint) error { return nil },
		markAllReadFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		deleteFn:      func(_ context.Context, _ uint) error { return nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn        func(context.Context, *models.Comment) error
	getByIDFn       func(context.Context, uint) (*models.Comment, error)
	getByPostIDFn   func(context.Context, uint) ([]*models.Comment, error)
	deleteFn        func(context.Context, uint) error
	countByPostIDFn func(context.Context, uint) (int64, error)
}

func (s *commentRepoStub) Create(ctx context.Context, c *models.Comment) error {
	return s.createFn(ctx, c)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) GetByPostID(ctx context.Context, postID uint) ([]*models.Comment, error) {
	return s.getByPostIDFn(ctx, postID)
}
func (s *commentRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *commentRepoStub) CountByPostID(ctx context.Context, postID uint) (int64, error) {
	return s.countByPostIDFn(ctx, postID)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn:        func(_ context.Context, _ *models.Comment) error { return nil },
		getByIDFn:       func(_ context.Context, _ uint) (*models.Comment, error) { return &models.Comment{}, nil },
		getByPostIDFn:   func(_ context.Context, _ uint) ([]*models.Comment, error) { return nil, nil },
		deleteFn:        func(_ context.Context, _ uint) error { return nil },
		countByPostIDFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
	}
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	createFn        func(context.Context, *models.User) error
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByEmailFn    func(context.Context, string) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	listFn          func(context.Context, int, int) ([]*models.User, int64, error)
	updateFn        func(context.Context, *models.User) error
	deleteFn        func(context.Context, uint) error
}

func (s *userRepoStub) Create(ctx context.Context, u *models.User) error {
	return s.createFn(ctx, u)
}
func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) List(ctx context.Context, limit, offset int) ([]*models.User, int64, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *userRepoStub) Update(ctx context.Context, u *models.User) error {
	return s.updateFn(ctx, u)
}
func (s *userRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

// contactRepoStub is a stub for repository.ContactRepository.
type contactRepoStub struct {
	createFn       func(context.Context, *models.Contact) error
	getByIDFn      func(context.Context, uint) (*models.Contact, error)
	listFn         func(context.Context, int, int) ([]*models.Contact, int64, error)
	updateStatusFn func(context.Context, uint, models.ContactStatus) error
	deleteFn       func(context.Context, uint) error
}

func (s *contactRepoStub) Create(ctx context.Context, c *models.Contact) error {
	return s.createFn(ctx, c)
}
func (s *contactRepoStub) GetByID(ctx context.Context, id uint) (*models.Contact, error) {
	return s.getByIDFn(ctx, id)
}
func (s *contactRepoStub) List(ctx context.Context, limit, offset int) ([]*models.Contact, int64, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *contactRepoStub) UpdateStatus(ctx context.Context, id uint, status models.ContactStatus) error {
	return s.updateStatusFn(ctx, id, status)
}
func (s *contactRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
