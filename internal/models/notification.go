package models

import "time"

// NotificationType distinguishes what action produced a notification.
type NotificationType string

const (
	NotificationLike    NotificationType = "like"
	NotificationComment NotificationType = "comment"
)

// Notification is the persisted record behind the real-time fan-out. A
// notification is only ever created for two distinct users: the creating
// path guarantees RecipientID != SenderID. Records are mutated only to flip
// Read and are never deleted in-app.
type Notification struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	RecipientID uint             `gorm:"not null;index" json:"recipient_id"`
	SenderID    uint             `gorm:"not null" json:"sender_id"`
	Sender      User             `gorm:"foreignKey:SenderID" json:"sender"`
	PostID      uint             `gorm:"not null" json:"post_id"`
	Post        Post             `gorm:"foreignKey:PostID" json:"post"`
	Type        NotificationType `gorm:"type:varchar(10);not null" json:"type"`
	Message     string           `gorm:"not null" json:"message"`
	Read        bool             `gorm:"not null;default:false" json:"read"`
	CreatedAt   time.Time        `json:"created_at"`
}
