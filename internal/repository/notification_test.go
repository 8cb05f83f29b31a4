package repository

import (
	"context"
	"testing"

	"plume/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestNotificationRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	notification := &models.Notification{
		RecipientID: 1,
		SenderID:    2,
		PostID:      3,
		Type:        models.NotificationLike,
		Message:     "bob liked your post \"React Hooks Guide\"",
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "notifications"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	err := repo.Create(ctx, notification)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepository_ListByRecipient(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT .* FROM "notifications"`).
		WithArgs(uint(1), notificationListLimit).
		WillReturnRows(sqlmock.NewRows([]string{"id", "recipient_id", "sender_id", "post_id", "type", "read"}).
			AddRow(10, 1, 2, 3, "like", false).
			AddRow(9, 1, 4, 3, "comment", true))
	// Preloads for Sender and Post (GORM runs preloads in alphabetical order)
	mock.ExpectQuery(`SELECT .* FROM "posts"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).AddRow(3, "React Hooks Guide"))
	mock.ExpectQuery(`SELECT .* FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}).AddRow(2, "bob").AddRow(4, "carol"))

	notifications, err := repo.ListByRecipient(ctx, 1)
	assert.NoError(t, err)
	assert.Len(t, notifications, 2)
	assert.Equal(t, "bob", notifications[0].Sender.Username)
	assert.Equal(t, "React Hooks Guide", notifications[0].Post.Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepository_CountUnread(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "notifications"`).
		WithArgs(uint(1), false).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	count, err := repo.CountUnread(ctx, 1)
	assert.NoError(t, err)
	assert.Equal(t, int64(4), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepository_MarkRead(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "notifications"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.MarkRead(ctx, 10)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepository_MarkAllRead(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	t.Run("flips unread rows", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "notifications"`).
			WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectCommit()

		affected, err := repo.MarkAllRead(ctx, 1)
		assert.NoError(t, err)
		assert.Equal(t, int64(3), affected)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nothing unread", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "notifications"`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		affected, err := repo.MarkAllRead(ctx, 1)
		assert.NoError(t, err)
		assert.Equal(t, int64(0), affected)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
