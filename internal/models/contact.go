package models

import "time"

// ContactStatus tracks whether an admin has handled a contact message.
type ContactStatus string

const (
	ContactStatusNew  ContactStatus = "new"
	ContactStatusRead ContactStatus = "read"
)

// Contact is a message submitted through the public contact form and
// reviewed from the admin panel.
type Contact struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	Name      string        `gorm:"not null" json:"name"`
	Email     string        `gorm:"not null" json:"email"`
	Subject   string        `json:"subject"`
	Message   string        `gorm:"type:text;not null" json:"message"`
	Status    ContactStatus `gorm:"type:varchar(10);not null;default:'new'" json:"status"`
	CreatedAt time.Time     `json:"created_at"`
}
