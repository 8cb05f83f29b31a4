package service

import (
	"context"
	"errors"
	"fmt"

	"plume/internal/cache"
	"plume/internal/models"
	"plume/internal/observability"
	"plume/internal/repository"

	"gorm.io/gorm"
)

// NotificationService persists activity notifications and answers the
// notification panel's queries. Real-time delivery happens a layer up, after
// persistence succeeds.
type NotificationService struct {
	notificationRepo repository.NotificationRepository
}

func NewNotificationService(notificationRepo repository.NotificationRepository) *NotificationService {
	return &NotificationService{notificationRepo: notificationRepo}
}

// NotificationList bundles the panel payload with the unread badge count.
type NotificationList struct {
	Notifications []*models.Notification
	UnreadCount   int64
}

// Notify records that sender acted on post. Acting on your own post never
// produces a notification; both return values are nil in that case.
func (s *NotificationService) Notify(ctx context.Context, notificationType models.NotificationType, sender *models.User, post *models.Post) (*models.Notification, error) {
	if post.UserID == sender.ID {
		return nil, nil
	}

	var message string
	switch notificationType {
	case models.NotificationLike:
		message = fmt.Sprintf("%s liked your post %q", sender.Username, post.Title)
	case models.NotificationComment:
		message = fmt.Sprintf("%s commented on your post %q", sender.Username, post.Title)
	default:
		return nil, models.NewValidationError("Unknown notification type")
	}

	notification := &models.Notification{
		RecipientID: post.UserID,
		SenderID:    sender.ID,
		PostID:      post.ID,
		Type:        notificationType,
		Message:     message,
	}
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		return nil, models.NewStorageError(err)
	}

	observability.NotificationsCreatedTotal.WithLabelValues(string(notificationType)).Inc()
	notification.Sender = *sender
	notification.Post = *post
	return notification, nil
}

// List returns the recipient's most recent notifications plus their unread
// count.
func (s *NotificationService) List(ctx context.Context, recipientID uint) (*NotificationList, error) {
	notifications, err := s.notificationRepo.ListByRecipient(ctx, recipientID)
	if err != nil {
		return nil, models.NewStorageError(err)
	}

	unread, err := s.notificationRepo.CountUnread(ctx, recipientID)
	if err != nil {
		return nil, models.NewStorageError(err)
	}

	return &NotificationList{Notifications: notifications, UnreadCount: unread}, nil
}

// UnreadCount returns how many of the recipient's notifications are unread.
func (s *NotificationService) UnreadCount(ctx context.Context, recipientID uint) (int64, error) {
	count, err := s.notificationRepo.CountUnread(ctx, recipientID)
	if err != nil {
		return 0, models.NewStorageError(err)
	}
	return count, nil
}

// MarkRead flips one notification to read. Only the recipient may do so.
func (s *NotificationService) MarkRead(ctx context.Context, id, recipientID uint) error {
	notification, err := s.notificationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Notification", id)
		}
		return models.NewStorageError(err)
	}

	if notification.RecipientID != recipientID {
		return models.NewUnauthorizedError("Not authorized to modify this notification")
	}

	if err := s.notificationRepo.MarkRead(ctx, id); err != nil {
		return models.NewStorageError(err)
	}
	cache.InvalidateUnreadCount(ctx, recipientID)
	return nil
}

// MarkAllRead flips all of the recipient's unread notifications and returns
// how many changed.
func (s *NotificationService) MarkAllRead(ctx context.Context, recipientID uint) (int64, error) {
	updated, err := s.notificationRepo.MarkAllRead(ctx, recipientID)
	if err != nil {
		return 0, models.NewStorageError(err)
	}
	return updated, nil
}

// Delete removes a notification. Only the recipient may do so.
func (s *NotificationService) Delete(ctx context.Context, id, recipientID uint) error {
	notification, err := s.notificationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Notification", id)
		}
		return models.NewStorageError(err)
	}

	if notification.RecipientID != recipientID {
		return models.NewUnauthorizedError("Not authorized to modify this notification")
	}

	if err := s.notificationRepo.Delete(ctx, id); err != nil {
		return models.NewStorageError(err)
	}
	cache.InvalidateUnreadCount(ctx, recipientID)
	return nil
}
