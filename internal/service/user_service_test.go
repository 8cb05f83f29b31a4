package service

import (
	"context"
	"testing"

	"plume/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func freshUserRepo() *userRepoStub {
	return &userRepoStub{
		createFn:        func(_ context.Context, u *models.User) error { u.ID = 1; return nil },
		getByIDFn:       func(_ context.Context, _ uint) (*models.User, error) { return nil, gorm.ErrRecordNotFound },
		getByEmailFn:    func(_ context.Context, _ string) (*models.User, error) { return nil, gorm.ErrRecordNotFound },
		getByUsernameFn: func(_ context.Context, _ string) (*models.User, error) { return nil, gorm.ErrRecordNotFound },
		listFn:          func(_ context.Context, _, _ int) ([]*models.User, int64, error) { return nil, 0, nil },
		updateFn:        func(_ context.Context, _ *models.User) error { return nil },
		deleteFn:        func(_ context.Context, _ uint) error { return nil },
	}
}

const validPassword = "Sup3r-secret-pw!"

func TestUserService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("success hashes the password", func(t *testing.T) {
		repo := freshUserRepo()
		var created *models.User
		repo.createFn = func(_ context.Context, u *models.User) error {
			u.ID = 1
			created = u
			return nil
		}
		svc := NewUserService(repo, nil, nil)

		user, err := svc.Register(ctx, RegisterInput{
			Username: "alice", Email: "Alice@Example.com", Password: validPassword,
		})
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", user.Email)
		assert.NotEqual(t, validPassword, created.Password)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.Password), []byte(validPassword)))
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		repo := freshUserRepo()
		repo.getByEmailFn = func(_ context.Context, _ string) (*models.User, error) {
			return &models.User{ID: 2}, nil
		}
		svc := NewUserService(repo, nil, nil)

		_, err := svc.Register(ctx, RegisterInput{
			Username: "alice", Email: "taken@example.com", Password: validPassword,
		})
		require.Error(t, err)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	})

	t.Run("weak password rejected", func(t *testing.T) {
		svc := NewUserService(freshUserRepo(), nil, nil)
		_, err := svc.Register(ctx, RegisterInput{
			Username: "alice", Email: "alice@example.com", Password: "short",
		})
		require.Error(t, err)
	})
}

func TestUserService_Authenticate(t *testing.T) {
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte(validPassword), bcrypt.MinCost)
	require.NoError(t, err)

	repo := freshUserRepo()
	repo.getByEmailFn = func(_ context.Context, email string) (*models.User, error) {
		if email == "alice@example.com" {
			return &models.User{ID: 1, Email: email, Password: string(hash)}, nil
		}
		return nil, gorm.ErrRecordNotFound
	}
	svc := NewUserService(repo, nil, nil)

	t.Run("valid credentials", func(t *testing.T) {
		user, err := svc.Authenticate(ctx, "alice@example.com", validPassword)
		require.NoError(t, err)
		assert.Equal(t, uint(1), user.ID)
	})

	t.Run("wrong password and unknown email fail identically", func(t *testing.T) {
		_, badPassErr := svc.Authenticate(ctx, "alice@example.com", "wrong-password")
		_, noUserErr := svc.Authenticate(ctx, "nobody@example.com", validPassword)

		var appErr1, appErr2 *models.AppError
		require.ErrorAs(t, badPassErr, &appErr1)
		require.ErrorAs(t, noUserErr, &appErr2)
		assert.Equal(t, appErr1.Code, appErr2.Code)
		assert.Equal(t, appErr1.Message, appErr2.Message)
	})
}

func TestUserService_UpdateProfile(t *testing.T) {
	ctx := context.Background()

	repo := freshUserRepo()
	repo.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
		return &models.User{ID: id, Username: "alice", Bio: "old"}, nil
	}
	svc := NewUserService(repo, nil, nil)

	t.Run("updates bio", func(t *testing.T) {
		user, err := svc.UpdateProfile(ctx, UpdateProfileInput{UserID: 1, Bio: "new bio"})
		require.NoError(t, err)
		assert.Equal(t, "new bio", user.Bio)
	})

	t.Run("username collision rejected", func(t *testing.T) {
		repo.getByUsernameFn = func(_ context.Context, _ string) (*models.User, error) {
			return &models.User{ID: 2}, nil
		}
		_, err := svc.UpdateProfile(ctx, UpdateProfileInput{UserID: 1, Username: "taken"})
		require.Error(t, err)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	})
}

func TestUserService_IsAdmin(t *testing.T) {
	repo := freshUserRepo()
	repo.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
		return &models.User{ID: id, IsAdmin: id == 99}, nil
	}
	svc := NewUserService(repo, nil, nil)

	admin, err := svc.IsAdmin(context.Background(), 99)
	require.NoError(t, err)
	assert.True(t, admin)

	admin, err = svc.IsAdmin(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, admin)
}
