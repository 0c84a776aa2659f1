package models

import "time"

// NotificationType classifies what action produced a notification.
type NotificationType string

const (
	// NotificationLike is sent when someone likes the recipient's post.
	NotificationLike NotificationType = "LIKE"
	// NotificationComment is sent when someone comments on the recipient's post.
	NotificationComment NotificationType = "COMMENT"
	// NotificationFollow is sent when someone starts following the recipient.
	NotificationFollow NotificationType = "FOLLOW"
)

// Notification is a persisted message for a recipient, created as a side
// effect of a like, comment or follow. Never created when the actor is the
// recipient.
type Notification struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	RecipientID uint             `gorm:"not null;index" json:"recipient_id"`
	Recipient   User             `gorm:"foreignKey:RecipientID" json:"-"`
	Type        NotificationType `gorm:"type:varchar(20)" json:"type"`
	Message     string           `gorm:"not null" json:"message"`
	ActionURL   string           `json:"action_url"`
	// TargetID/TargetType reference the entity the notification points at
	// (post, comment or user) for client-side rendering.
	TargetID   uint      `json:"target_id"`
	TargetType string    `json:"target_type"`
	Read       bool      `gorm:"default:false" json:"read"`
	CreatedAt  time.Time `json:"created_at"`
}
