package service

import (
	"context"
	"errors"
	"strings"

	"plume/internal/models"
	"plume/internal/repository"
	"plume/internal/validation"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserService struct {
	userRepo repository.UserRepository
	images   *ImageService
	mail     *MailService
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type UpdateProfileInput struct {
	UserID          uint
	Username        string
	Bio             string
	Avatar          string
	AvatarStorageID string
}

func NewUserService(userRepo repository.UserRepository, images *ImageService, mail *MailService) *UserService {
	return &UserService{userRepo: userRepo, images: images, mail: mail}
}

// Register creates an account after validating the credentials and checking
// that the username and email are free.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if err := validation.ValidateUsername(username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, models.NewValidationError("Email is already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewStorageError(err)
	}
	if _, err := s.userRepo.GetByUsername(ctx, username); err == nil {
		return nil, models.NewValidationError("Username is already taken")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewStorageError(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: string(hash),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, models.NewStorageError(err)
	}

	if s.mail != nil {
		s.mail.SendWelcomeEmail(user.Email, user.Username)
	}
	return user, nil
}

// Authenticate verifies an email/password pair. The same error comes back for
// an unknown email and a wrong password so callers cannot probe accounts.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewUnauthorizedError("Invalid email or password")
		}
		return nil, models.NewStorageError(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid email or password")
	}
	return user, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", id)
		}
		return nil, models.NewStorageError(err)
	}
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", in.UserID)
		}
		return nil, models.NewStorageError(err)
	}

	const maxBioLen = 500

	if in.Username != "" && in.Username != user.Username {
		if err := validation.ValidateUsername(in.Username); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		if _, err := s.userRepo.GetByUsername(ctx, in.Username); err == nil {
			return nil, models.NewValidationError("Username is already taken")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewStorageError(err)
		}
		user.Username = in.Username
	}
	if in.Bio != "" {
		if len(in.Bio) > maxBioLen {
			return nil, models.NewValidationError("Bio too long (max 500 characters)")
		}
		user.Bio = in.Bio
	}
	if in.Avatar != "" && in.Avatar != user.Avatar {
		if user.AvatarStorageID != "" && s.images != nil {
			s.images.DeleteAsync(ctx, user.AvatarStorageID)
		}
		user.Avatar = in.Avatar
		user.AvatarStorageID = in.AvatarStorageID
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, models.NewStorageError(err)
	}
	return user, nil
}

// ListUsers returns a page of accounts with the overall total. Admin only;
// the route enforces that.
func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, int64, error) {
	users, total, err := s.userRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, models.NewStorageError(err)
	}
	return users, total, nil
}

// SetAdmin grants or revokes the admin flag on an account.
func (s *UserService) SetAdmin(ctx context.Context, targetID uint, isAdmin bool) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", targetID)
		}
		return nil, models.NewStorageError(err)
	}

	user.IsAdmin = isAdmin
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, models.NewStorageError(err)
	}
	return user, nil
}

// DeleteUser removes an account and its hosted avatar.
func (s *UserService) DeleteUser(ctx context.Context, id uint) error {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("User", id)
		}
		return models.NewStorageError(err)
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		return models.NewStorageError(err)
	}

	if user.AvatarStorageID != "" && s.images != nil {
		s.images.DeleteAsync(ctx, user.AvatarStorageID)
	}
	return nil
}

// IsAdmin reports whether the user has the admin flag. Passed into other
// services as their authorization hook.
func (s *UserService) IsAdmin(ctx context.Context, userID uint) (bool, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return user.IsAdmin, nil
}
