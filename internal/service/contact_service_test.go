package service

import (
	"context"
	"strings"
	"testing"

	"plume/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func freshContactRepo() *contactRepoStub {
	return &contactRepoStub{
		createFn:       func(_ context.Context, c *models.Contact) error { c.ID = 1; return nil },
		getByIDFn:      func(_ context.Context, _ uint) (*models.Contact, error) { return nil, gorm.ErrRecordNotFound },
		listFn:         func(_ context.Context, _, _ int) ([]*models.Contact, int64, error) { return nil, 0, nil },
		updateStatusFn: func(_ context.Context, _ uint, _ models.ContactStatus) error { return nil },
		deleteFn:       func(_ context.Context, _ uint) error { return nil },
	}
}

func TestContactService_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("valid submission stored as new", func(t *testing.T) {
		repo := freshContactRepo()
		var stored *models.Contact
		repo.createFn = func(_ context.Context, c *models.Contact) error {
			c.ID = 1
			stored = c
			return nil
		}
		svc := NewContactService(repo, nil)

		contact, err := svc.Submit(ctx, ContactInput{
			Name: " Jane ", Email: "jane@example.com", Subject: "Hi", Message: " Help me out ",
		})
		require.NoError(t, err)
		assert.Equal(t, "Jane", contact.Name)
		assert.Equal(t, "Help me out", contact.Message)
		assert.Equal(t, models.ContactStatusNew, stored.Status)
	})

	tests := []struct {
		name string
		in   ContactInput
	}{
		{"missing name", ContactInput{Email: "a@b.co", Message: "hi"}},
		{"bad email", ContactInput{Name: "Jane", Email: "not-an-email", Message: "hi"}},
		{"missing message", ContactInput{Name: "Jane", Email: "a@b.co"}},
		{"oversized message", ContactInput{Name: "Jane", Email: "a@b.co", Message: strings.Repeat("x", 5001)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewContactService(freshContactRepo(), nil)
			_, err := svc.Submit(ctx, tt.in)
			require.Error(t, err)
			var appErr *models.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
		})
	}
}

func TestContactService_MarkRead(t *testing.T) {
	ctx := context.Background()

	repo := freshContactRepo()
	status := models.ContactStatusNew
	repo.getByIDFn = func(_ context.Context, id uint) (*models.Contact, error) {
		return &models.Contact{ID: id, Status: status}, nil
	}
	repo.updateStatusFn = func(_ context.Context, _ uint, s models.ContactStatus) error {
		status = s
		return nil
	}
	svc := NewContactService(repo, nil)

	contact, err := svc.MarkRead(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, models.ContactStatusRead, contact.Status)

	// Second call is idempotent.
	contact, err = svc.MarkRead(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, models.ContactStatusRead, contact.Status)
}

func TestContactService_Delete_NotFound(t *testing.T) {
	svc := NewContactService(freshContactRepo(), nil)
	err := svc.Delete(context.Background(), 42)
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}
