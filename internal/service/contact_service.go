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

const (
	maxContactNameLen    = 100
	maxContactSubjectLen = 200
	maxContactMessageLen = 5000
)

// ContactService handles the public contact form and the admin inbox
// behind it.
type ContactService struct {
	contactRepo repository.ContactRepository
	mail        *MailService
}

type ContactInput struct {
	Name    string
	Email   string
	Subject string
	Message string
}

func NewContactService(contactRepo repository.ContactRepository, mail *MailService) *ContactService {
	return &ContactService{contactRepo: contactRepo, mail: mail}
}

// Submit validates and stores a contact message, then mails the admin
// without blocking the response.
func (s *ContactService) Submit(ctx context.Context, in ContactInput) (*models.Contact, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)
	message := strings.TrimSpace(in.Message)

	if name == "" {
		return nil, models.NewValidationError("Name is required")
	}
	if len(name) > maxContactNameLen {
		return nil, models.NewValidationError("Name too long (max 100 characters)")
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if len(in.Subject) > maxContactSubjectLen {
		return nil, models.NewValidationError("Subject too long (max 200 characters)")
	}
	if message == "" {
		return nil, models.NewValidationError("Message is required")
	}
	if len(message) > maxContactMessageLen {
		return nil, models.NewValidationError("Message too long (max 5000 characters)")
	}

	contact := &models.Contact{
		Name:    name,
		Email:   email,
		Subject: strings.TrimSpace(in.Subject),
		Message: message,
		Status:  models.ContactStatusNew,
	}
	if err := s.contactRepo.Create(ctx, contact); err != nil {
		return nil, models.NewStorageError(err)
	}

	if s.mail != nil {
		s.mail.SendContactNotification(contact)
	}
	return contact, nil
}

// List returns a page of contact messages, newest first.
func (s *ContactService) List(ctx context.Context, limit, offset int) ([]*models.Contact, int64, error) {
	contacts, total, err := s.contactRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, models.NewStorageError(err)
	}
	return contacts, total, nil
}

// MarkRead flags a contact message as handled.
func (s *ContactService) MarkRead(ctx context.Context, id uint) (*models.Contact, error) {
	contact, err := s.contactRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Contact message", id)
		}
		return nil, models.NewStorageError(err)
	}

	if contact.Status != models.ContactStatusRead {
		if err := s.contactRepo.UpdateStatus(ctx, id, models.ContactStatusRead); err != nil {
			return nil, models.NewStorageError(err)
		}
		contact.Status = models.ContactStatusRead
	}
	return contact, nil
}

// Delete removes a contact message from the inbox.
func (s *ContactService) Delete(ctx context.Context, id uint) error {
	if _, err := s.contactRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Contact message", id)
		}
		return models.NewStorageError(err)
	}

	if err := s.contactRepo.Delete(ctx, id); err != nil {
		return models.NewStorageError(err)
	}
	return nil
}
